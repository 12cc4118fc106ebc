package media

import (
	"context"
	"github.com/myrjola/casefile/internal/errors"
	"image"
	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // Register WebP decoder.
)

// ProbeResult tells whether a URL resolves to a renderable image and its intrinsic size.
type ProbeResult struct {
	OK     bool
	Width  int
	Height int
}

// Prober checks whether an image URL is renderable.
type Prober interface {
	Probe(ctx context.Context, url string) ProbeResult
}

// maxProbeBytes bounds how much of a response is read to decode the image header.
const maxProbeBytes = 1 << 20

var errNotImage = errors.NewSentinel("not an image")

// HTTPProber fetches images over HTTP and decodes only their header.
type HTTPProber struct {
	client *http.Client
	logger *slog.Logger
}

func NewHTTPProber(timeout time.Duration, logger *slog.Logger) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{Timeout: timeout}, //nolint:exhaustruct // defaults are fine
		logger: logger,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, url string) ProbeResult {
	result, err := p.probe(ctx, url)
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelDebug, "image probe failed", slog.String("url", url), errors.SlogError(err))
		return ProbeResult{OK: false, Width: 0, Height: 0}
	}
	return result
}

func (p *HTTPProber) probe(ctx context.Context, url string) (ProbeResult, error) {
	if !IsProbeable(url) {
		return ProbeResult{}, errors.Wrap(errNotImage, "unsupported url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProbeResult{}, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", "casefile/1.0 (media validator)")

	resp, err := p.client.Do(req)
	if err != nil {
		return ProbeResult{}, errors.Wrap(err, "get image")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxProbeBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ProbeResult{}, errors.Wrap(errNotImage, "unexpected status", slog.Int("status", resp.StatusCode))
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "" && !strings.HasPrefix(mediaType, "image/") {
		return ProbeResult{}, errors.Wrap(errNotImage, "unexpected content type", slog.String("content_type", mediaType))
	}

	config, _, err := image.DecodeConfig(io.LimitReader(resp.Body, maxProbeBytes))
	if err != nil {
		return ProbeResult{}, errors.Wrap(err, "decode image config")
	}
	return ProbeResult{OK: true, Width: config.Width, Height: config.Height}, nil
}
