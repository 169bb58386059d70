package utils

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// retryLogger adapts logrus to the retryablehttp.LeveledLogger interface
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	logrus.WithFields(toFields(keysAndValues)).Error(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	logrus.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logrus.WithFields(toFields(keysAndValues)).Trace(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logrus.WithFields(toFields(keysAndValues)).Warn(msg)
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

// NewHTTPClient returns a standard *http.Client that retries transient
// failures (connection errors, 429 and 5xx responses)
func NewHTTPClient(timeout time.Duration, maxRetries int) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = maxRetries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = &retryLogger{}
	if timeout > 0 {
		retryClient.HTTPClient.Timeout = timeout
	}

	return retryClient.StandardClient()
}
