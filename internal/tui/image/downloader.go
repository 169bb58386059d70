package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxThumbnailBytes caps a single thumbnail download
const MaxThumbnailBytes = 5 << 20

var thumbnailSizeSuffix = regexp.MustCompile(`=s\d+$`)

// SizedThumbnailLink asks Drive for a thumbnail whose longest side is px.
// Drive thumbnail links end in "=s<px>"; other links are returned unchanged.
func SizedThumbnailLink(link string, px int) string {
	if px <= 0 || !thumbnailSizeSuffix.MatchString(link) {
		return link
	}
	return thumbnailSizeSuffix.ReplaceAllString(link, fmt.Sprintf("=s%d", px))
}

// ThumbnailDownloader fetches thumbnail bytes through the authorized client
type ThumbnailDownloader struct {
	mutex      sync.RWMutex
	httpClient *http.Client
	timeout    time.Duration
}

// NewThumbnailDownloader 创建新的缩略图下载器
func NewThumbnailDownloader(timeout time.Duration) *ThumbnailDownloader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ThumbnailDownloader{timeout: timeout}
}

// SetHTTPClient sets the client used for downloads. The picker only has an
// authorized client once the session is initialized.
func (d *ThumbnailDownloader) SetHTTPClient(client *http.Client) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.httpClient = client
}

// Download returns the thumbnail bytes and their content type
func (d *ThumbnailDownloader) Download(ctx context.Context, link string) ([]byte, string, error) {
	d.mutex.RLock()
	client := d.httpClient
	d.mutex.RUnlock()

	if client == nil {
		return nil, "", &NetworkError{Op: "download", Err: fmt.Errorf("http client not configured")}
	}
	if link == "" {
		return nil, "", &NetworkError{Op: "download", Err: fmt.Errorf("empty thumbnail link")}
	}

	downloadCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, link, nil)
	if err != nil {
		return nil, "", &NetworkError{Op: "build request", Err: err}
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &NetworkError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &NetworkError{Op: "download", Err: fmt.Errorf("unexpected status %s", resp.Status), Code: resp.StatusCode}
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, MaxThumbnailBytes+1))
	if err != nil {
		return nil, "", &NetworkError{Op: "read body", Err: err, Code: resp.StatusCode}
	}
	if n > MaxThumbnailBytes {
		return nil, "", &FormatError{Format: "unknown", Source: link, Reason: "thumbnail too large"}
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(buf.Bytes())
	}

	logrus.WithFields(logrus.Fields{
		"bytes":   n,
		"type":    contentType,
		"load_ms": time.Since(start).Milliseconds(),
	}).Debug("thumbnail downloaded")

	return buf.Bytes(), contentType, nil
}
