package image

import (
	"fmt"
	"time"
)

// ImageFormat 支持的缩略图格式
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatGIF  ImageFormat = "gif"
)

// ImageSize 图片尺寸信息
type ImageSize struct {
	Width  int
	Height int
}

// ThumbnailPreview is one rendered thumbnail
type ThumbnailPreview struct {
	FileID       string
	FilePath     string // 本地缓存路径
	OriginalSize ImageSize
	Format       ImageFormat
	RenderedData string
	CacheHit     bool
	LoadTime     time.Duration
	CreateTime   time.Time
}

// RenderError 渲染错误类型
type RenderError struct {
	Terminal string
	Protocol string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error on %s terminal with %s protocol: %v", e.Terminal, e.Protocol, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// CacheError 缓存错误类型
type CacheError struct {
	Operation string
	Path      string
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error during %s operation on %s: %v", e.Operation, e.Path, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// NetworkError 网络错误类型
type NetworkError struct {
	Op   string
	Err  error
	Code int
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s (code: %d): %v", e.Op, e.Code, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FormatError 文件格式错误类型
type FormatError struct {
	Format string
	Source string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error for %s thumbnail %s: %s", e.Format, e.Source, e.Reason)
}

// CacheStats 缓存统计信息
type CacheStats struct {
	TotalFiles   int
	TotalSize    int64
	MaxSize      int64
	UsagePercent float64
}

// ManagerStats 缩略图管理器统计信息
type ManagerStats struct {
	TotalPreviews int64
	CacheHits     int64
	CacheMisses   int64
	CacheHitRate  float64
	CacheStats    CacheStats
	Protocol      string
}
