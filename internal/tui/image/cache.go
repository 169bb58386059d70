package image

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const indexFileName = ".cache_index.json"

// CacheManager keeps downloaded thumbnails on disk, bounded by size and
// evicted least recently used first
type CacheManager struct {
	cacheDir string
	maxSize  int64
	index    map[string]*CacheEntry
	mutex    sync.Mutex

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// CacheEntry 缓存条目
type CacheEntry struct {
	Key         string
	FilePath    string
	Size        int64
	AccessTime  time.Time
	CreateTime  time.Time
	ContentType string
	Checksum    string // 用于验证文件完整性
}

// cacheIndex 缓存索引
type cacheIndex struct {
	Entries     map[string]*CacheEntry
	TotalSize   int64
	LastCleanup time.Time
}

// NewCacheManager 创建新的缓存管理器
func NewCacheManager(cacheDir string, maxSize int64) *CacheManager {
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		logrus.Warnf("CacheManager: failed to create %s: %v", cacheDir, err)
	}

	cm := &CacheManager{
		cacheDir: cacheDir,
		maxSize:  maxSize,
		index:    make(map[string]*CacheEntry),
	}

	if err := cm.loadIndex(); err != nil {
		logrus.Warnf("CacheManager: ignoring unreadable index: %v", err)
	}

	cm.startAutoCleanup(time.Hour)
	return cm
}

// Get returns the cached file path for key and marks it recently used
func (c *CacheManager) Get(key string) (string, bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.index[key]
	if !exists {
		return "", false, nil
	}

	if _, err := os.Stat(entry.FilePath); os.IsNotExist(err) {
		delete(c.index, key)
		return "", false, nil
	}

	entry.AccessTime = time.Now()
	return entry.FilePath, true, nil
}

// Put stores the content read from r under key and evicts old entries if
// the cache grew past its limit
func (c *CacheManager) Put(key, contentType string, r io.Reader) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	hash := sha256.Sum256([]byte(key))
	cachePath := filepath.Join(c.cacheDir, fmt.Sprintf("%x%s", hash[:16], extensionFor(contentType)))

	cacheFile, err := os.OpenFile(cachePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return "", &CacheError{Operation: "create", Path: cachePath, Err: err}
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(cacheFile, hasher), r)
	closeErr := cacheFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(cachePath)
		return "", &CacheError{Operation: "write", Path: cachePath, Err: err}
	}

	now := time.Now()
	c.index[key] = &CacheEntry{
		Key:         key,
		FilePath:    cachePath,
		Size:        size,
		AccessTime:  now,
		CreateTime:  now,
		ContentType: contentType,
		Checksum:    fmt.Sprintf("%x", hasher.Sum(nil)),
	}

	if err := c.evict(c.maxSize); err != nil {
		logrus.Warnf("CacheManager: eviction failed: %v", err)
	}
	return cachePath, nil
}

// Delete 从缓存中删除文件
func (c *CacheManager) Delete(key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.index[key]
	if !exists {
		return nil
	}

	delete(c.index, key)
	if err := os.Remove(entry.FilePath); err != nil && !os.IsNotExist(err) {
		return &CacheError{Operation: "delete", Path: entry.FilePath, Err: err}
	}
	return c.saveIndex()
}

// GetSize 获取缓存总大小
func (c *CacheManager) GetSize() int64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.totalSize()
}

// Cleanup evicts least recently used entries until the cache fits
func (c *CacheManager) Cleanup() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.evict(c.maxSize)
}

// Clear removes every cached thumbnail
func (c *CacheManager) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.evict(0)
}

// evict removes entries, oldest access first, until the total is at most limit
func (c *CacheManager) evict(limit int64) error {
	current := c.totalSize()
	if current > limit {
		entries := make([]*CacheEntry, 0, len(c.index))
		for _, entry := range c.index {
			entries = append(entries, entry)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].AccessTime.Before(entries[j].AccessTime)
		})

		for _, entry := range entries {
			if current <= limit {
				break
			}
			if err := os.Remove(entry.FilePath); err != nil && !os.IsNotExist(err) {
				continue
			}
			current -= entry.Size
			delete(c.index, entry.Key)
		}
	}

	return c.saveIndex()
}

func (c *CacheManager) totalSize() int64 {
	var totalSize int64
	for _, entry := range c.index {
		totalSize += entry.Size
	}
	return totalSize
}

// VerifyChecksum 验证缓存文件的完整性
func (c *CacheManager) VerifyChecksum(key string) (bool, error) {
	c.mutex.Lock()
	entry, exists := c.index[key]
	c.mutex.Unlock()

	if !exists {
		return false, fmt.Errorf("cache entry not found for key: %s", key)
	}

	file, err := os.Open(entry.FilePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return false, err
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)) == entry.Checksum, nil
}

// GetCacheStats 获取缓存统计信息
func (c *CacheManager) GetCacheStats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	total := c.totalSize()
	stats := CacheStats{
		TotalFiles: len(c.index),
		TotalSize:  total,
		MaxSize:    c.maxSize,
	}
	if c.maxSize > 0 {
		stats.UsagePercent = float64(total) / float64(c.maxSize) * 100
	}
	return stats
}

func (c *CacheManager) saveIndex() error {
	data, err := json.MarshalIndent(&cacheIndex{
		Entries:     c.index,
		TotalSize:   c.totalSize(),
		LastCleanup: time.Now(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.cacheDir, indexFileName), data, 0600)
}

func (c *CacheManager) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.cacheDir, indexFileName))
	if err != nil {
		if os.IsNotExist(err) {
			// 首次使用
			return nil
		}
		return err
	}

	var idx cacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return err
	}
	if idx.Entries != nil {
		c.index = idx.Entries
	}

	for key, entry := range c.index {
		if _, err := os.Stat(entry.FilePath); os.IsNotExist(err) {
			delete(c.index, key)
		}
	}
	return nil
}

// startAutoCleanup 启动自动清理定时器
func (c *CacheManager) startAutoCleanup(interval time.Duration) {
	c.stopCleanup = make(chan struct{})
	c.cleanupTicker = time.NewTicker(interval)

	go func() {
		defer c.cleanupTicker.Stop()
		for {
			select {
			case <-c.cleanupTicker.C:
				if err := c.Cleanup(); err != nil {
					logrus.Warnf("CacheManager: periodic cleanup failed: %v", err)
				}
			case <-c.stopCleanup:
				return
			}
		}
	}()
}

// StopAutoCleanup 停止自动清理
func (c *CacheManager) StopAutoCleanup() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".img"
	}
}
