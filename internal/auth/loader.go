package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Resource is something the session must load once before it is usable,
// such as the OAuth client or the Drive API service
type Resource struct {
	Name string
	Load func(ctx context.Context) error
}

// Loader loads resources exactly once, keyed by name. Concurrent callers for
// the same resource share a single load; failed loads may be retried.
type Loader struct {
	group singleflight.Group

	mu     sync.RWMutex
	loaded map[string]bool
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{loaded: make(map[string]bool)}
}

// Loaded reports whether the named resource finished loading
func (l *Loader) Loaded(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded[name]
}

// Ensure loads r unless it is already loaded
func (l *Loader) Ensure(ctx context.Context, r Resource) error {
	if l.Loaded(r.Name) {
		return nil
	}

	_, err, shared := l.group.Do(r.Name, func() (interface{}, error) {
		// a concurrent Do for the same key may have completed just before us
		if l.Loaded(r.Name) {
			return nil, nil
		}

		logrus.Debugf("Loader: loading resource %s", r.Name)
		if err := r.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", r.Name, err)
		}

		l.mu.Lock()
		l.loaded[r.Name] = true
		l.mu.Unlock()
		return nil, nil
	})
	if shared {
		logrus.Tracef("Loader: shared load of resource %s", r.Name)
	}
	return err
}
