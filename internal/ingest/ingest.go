// Package ingest turns uploaded files, remote templates and clipboard data
// into bounded background rasters.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
)

// DefaultMaxFileBytes is the upload cap applied when Limits leaves it unset.
const DefaultMaxFileBytes = 5 * 1024 * 1024

// DefaultMaxDimension bounds the longer side of an ingested image.
const DefaultMaxDimension = 400

// SupportedTypes lists the media types accepted for backgrounds.
var SupportedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// Limits bounds what the ingestor accepts and produces.
type Limits struct {
	MaxFileBytes int64
	MaxWidth     int
	MaxHeight    int
}

// DefaultLimits returns the stock 5 MiB / 400px limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFileBytes: DefaultMaxFileBytes,
		MaxWidth:     DefaultMaxDimension,
		MaxHeight:    DefaultMaxDimension,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = d.MaxFileBytes
	}
	if l.MaxWidth <= 0 {
		l.MaxWidth = d.MaxWidth
	}
	if l.MaxHeight <= 0 {
		l.MaxHeight = d.MaxHeight
	}
	return l
}

// Result is a decoded, downscaled background.
type Result struct {
	Image  *image.RGBA
	Width  int
	Height int
	// Source names where the image came from (path, URL or "clipboard").
	Source string
	// Format is the decoder name reported by image.Decode.
	Format string
}

// Ingestor validates and decodes background images.
type Ingestor struct {
	Limits Limits
	Client *http.Client
	log    *logrus.Entry
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLimits overrides the default limits.
func WithLimits(l Limits) Option { return func(i *Ingestor) { i.Limits = l } }

// WithHTTPClient sets the client used for remote templates.
func WithHTTPClient(c *http.Client) Option { return func(i *Ingestor) { i.Client = c } }

// WithLogger sets the logger entry.
func WithLogger(l *logrus.Entry) Option { return func(i *Ingestor) { i.log = l } }

// New creates an Ingestor.
func New(opts ...Option) *Ingestor {
	i := &Ingestor{Limits: DefaultLimits()}
	for _, o := range opts {
		o(i)
	}
	i.Limits = i.Limits.withDefaults()
	if i.Client == nil {
		i.Client = &http.Client{Timeout: 15 * time.Second}
	}
	if i.log == nil {
		i.log = logrus.WithField("component", "ingest")
	}
	return i
}

// Validate checks a declared media type and payload size against limits.
func Validate(mediaType string, size int64, limits Limits) error {
	limits = limits.withDefaults()
	if !Supported(mediaType) {
		if mediaType == "" {
			mediaType = "unknown"
		}
		return fmt.Errorf("%w: %s is not one of %s", ErrInvalidFormat, mediaType, strings.Join(SupportedTypes, ", "))
	}
	if size > limits.MaxFileBytes {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrTooLarge, size, limits.MaxFileBytes)
	}
	return nil
}

// Supported reports whether mediaType is an accepted background type.
func Supported(mediaType string) bool {
	mt := normalizeType(mediaType)
	for _, s := range SupportedTypes {
		if mt == s {
			return true
		}
	}
	return false
}

func normalizeType(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		return "image/jpeg"
	}
	return mt
}

// DetectType returns the media type for a payload. The file extension wins
// when it is known, otherwise the leading bytes are sniffed.
func DetectType(name string, head []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if mt := mime.TypeByExtension(strings.ToLower(ext)); mt != "" {
			return normalizeType(mt)
		}
	}
	if len(head) == 0 {
		return ""
	}
	return normalizeType(http.DetectContentType(head))
}

// Decode decodes data and downscales it to the ingestor's bounds.
func (i *Ingestor) Decode(source string, data []byte) (Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, source, err)
	}
	if img.Bounds().Empty() {
		return Result{}, fmt.Errorf("%w: %s has no pixels", ErrDecodeFailure, source)
	}
	return i.fit(source, format, img), nil
}

// FromImage downscales an already decoded image, used for clipboard pastes.
func (i *Ingestor) FromImage(source string, img image.Image) (Result, error) {
	if img == nil || img.Bounds().Empty() {
		return Result{}, fmt.Errorf("%w: %s has no pixels", ErrDecodeFailure, source)
	}
	return i.fit(source, "image", img), nil
}

func (i *Ingestor) fit(source, format string, img image.Image) Result {
	rgba, w, h := ResizeToFit(img, i.Limits.MaxWidth, i.Limits.MaxHeight)
	i.log.WithFields(logrus.Fields{
		"source": source,
		"format": format,
		"from":   fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"to":     fmt.Sprintf("%dx%d", w, h),
	}).Debug("background ingested")
	return Result{Image: rgba, Width: w, Height: h, Source: source, Format: format}
}

// LoadBytes validates and decodes an in-memory upload.
func (i *Ingestor) LoadBytes(name string, data []byte) (Result, error) {
	if err := Validate(DetectType(name, data), int64(len(data)), i.Limits); err != nil {
		return Result{}, err
	}
	return i.Decode(name, data)
}

// LoadFile validates and decodes a local file. The size check happens before
// the file is read.
func (i *Ingestor) LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: open %s: %w", ErrDecodeFailure, path, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("%w: stat %s: %w", ErrDecodeFailure, path, err)
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if err := Validate(DetectType(path, head[:n]), st.Size(), i.Limits); err != nil {
		return Result{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("%w: seek %s: %w", ErrDecodeFailure, path, err)
	}
	data, err := io.ReadAll(io.LimitReader(f, i.Limits.MaxFileBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read %s: %w", ErrDecodeFailure, path, err)
	}
	return i.Decode(path, data)
}

// LoadURL fetches and decodes a remote template image.
func (i *Ingestor) LoadURL(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, url, err)
	}
	req.Header.Set("Accept", strings.Join(SupportedTypes, ", "))
	resp, err := i.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: fetch %s: %w", ErrDecodeFailure, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("%w: fetch %s: %s", ErrDecodeFailure, url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, i.Limits.MaxFileBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read %s: %w", ErrDecodeFailure, url, err)
	}
	mediaType := normalizeType(resp.Header.Get("Content-Type"))
	if !Supported(mediaType) {
		mediaType = DetectType("", data)
	}
	if err := Validate(mediaType, int64(len(data)), i.Limits); err != nil {
		return Result{}, err
	}
	return i.Decode(url, data)
}
