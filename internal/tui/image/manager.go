package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/gdrive-picker/internal/drive"
)

// ThumbnailManager downloads, caches and renders Drive thumbnails
type ThumbnailManager struct {
	cache      *CacheManager
	downloader *ThumbnailDownloader
	renderer   *Renderer

	mutex          sync.Mutex
	current        *ThumbnailPreview
	previewCount   int64
	cacheHitCount  int64
	cacheMissCount int64
}

// NewThumbnailManager 创建新的缩略图管理器
func NewThumbnailManager(cacheDir string, maxCacheSize int64, method string, timeout time.Duration) *ThumbnailManager {
	return &ThumbnailManager{
		cache:      NewCacheManager(cacheDir, maxCacheSize),
		downloader: NewThumbnailDownloader(timeout),
		renderer:   NewRenderer(method),
	}
}

// SetHTTPClient sets the authorized client thumbnails are fetched with
func (m *ThumbnailManager) SetHTTPClient(client *http.Client) {
	m.downloader.SetHTTPClient(client)
}

// Enabled reports whether previews are rendered
func (m *ThumbnailManager) Enabled() bool {
	return m.renderer.Enabled()
}

// Protocol returns the graphics protocol in use
func (m *ThumbnailManager) Protocol() GraphicsProtocol {
	return m.renderer.Protocol
}

// CanPreview reports whether file has a thumbnail to show
func (m *ThumbnailManager) CanPreview(file drive.File) bool {
	return m.Enabled() && file.ThumbnailLink != ""
}

// Preview renders the thumbnail of file into cols x rows cells
func (m *ThumbnailManager) Preview(ctx context.Context, file drive.File, cols, rows int) (*ThumbnailPreview, error) {
	start := time.Now()

	if !m.Enabled() {
		return nil, &RenderError{Terminal: string(m.renderer.TerminalType), Protocol: string(m.renderer.Protocol), Err: fmt.Errorf("previews disabled")}
	}
	if file.ThumbnailLink == "" {
		return nil, &FormatError{Format: file.MimeType, Source: file.ID, Reason: "file has no thumbnail"}
	}

	m.mutex.Lock()
	m.previewCount++
	m.mutex.Unlock()

	path, hit, err := m.cache.Get(file.ID)
	if err != nil || !hit {
		m.countMiss()

		link := SizedThumbnailLink(file.ThumbnailLink, max(cols*cellPixelWidth, rows*cellPixelHeight))
		data, contentType, err := m.downloader.Download(ctx, link)
		if err != nil {
			return nil, err
		}

		path, err = m.cache.Put(file.ID, contentType, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	} else {
		m.countHit()
	}

	img, format, err := decodeFile(path)
	if err != nil {
		// 缓存文件可能已损坏
		_ = m.cache.Delete(file.ID)
		return nil, err
	}

	rendered, err := m.renderer.Render(img, cols, rows)
	if err != nil {
		return nil, err
	}

	preview := &ThumbnailPreview{
		FileID:       file.ID,
		FilePath:     path,
		OriginalSize: ImageSize{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()},
		Format:       ImageFormat(format),
		RenderedData: rendered,
		CacheHit:     hit,
		LoadTime:     time.Since(start),
		CreateTime:   time.Now(),
	}

	m.mutex.Lock()
	m.current = preview
	m.mutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"file_id":   file.ID,
		"cache_hit": hit,
		"load_ms":   preview.LoadTime.Milliseconds(),
	}).Debug("thumbnail preview generated")

	return preview, nil
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &CacheError{Operation: "open", Path: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", &FormatError{Format: "unknown", Source: path, Reason: err.Error()}
	}

	// JPEG 缩略图可能带有 EXIF 方向信息
	if format == "jpeg" {
		if _, err := f.Seek(0, 0); err == nil {
			if oriented, err := imaging.Decode(f, imaging.AutoOrientation(true)); err == nil {
				img = oriented
			}
		}
	}
	return img, format, nil
}

func (m *ThumbnailManager) countHit() {
	m.mutex.Lock()
	m.cacheHitCount++
	m.mutex.Unlock()
}

func (m *ThumbnailManager) countMiss() {
	m.mutex.Lock()
	m.cacheMissCount++
	m.mutex.Unlock()
}

// Current returns the last rendered preview
func (m *ThumbnailManager) Current() *ThumbnailPreview {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.current
}

// ClearPreview forgets the current preview
func (m *ThumbnailManager) ClearPreview() {
	m.mutex.Lock()
	m.current = nil
	m.mutex.Unlock()
}

// GetStats 获取管理器统计信息
func (m *ThumbnailManager) GetStats() ManagerStats {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats := ManagerStats{
		TotalPreviews: m.previewCount,
		CacheHits:     m.cacheHitCount,
		CacheMisses:   m.cacheMissCount,
		CacheStats:    m.cache.GetCacheStats(),
		Protocol:      string(m.renderer.Protocol),
	}
	if m.previewCount > 0 {
		stats.CacheHitRate = float64(m.cacheHitCount) / float64(m.previewCount) * 100
	}
	return stats
}

// Close 关闭管理器并停止后台清理
func (m *ThumbnailManager) Close() error {
	m.ClearPreview()
	m.cache.StopAutoCleanup()
	return nil
}
