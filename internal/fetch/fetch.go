// Package fetch opens dataset sources from local files or http(s) URLs and
// transparently decodes gzip and zstd payloads.
package fetch

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	globe "github.com/phanxgames/anomalyglobe"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Fetcher opens dataset sources.
type Fetcher struct {
	Client *http.Client
	Logger *slog.Logger
}

// New returns a Fetcher using http.DefaultClient.
func New(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{Client: http.DefaultClient, Logger: logger}
}

// IsURL reports whether src is an http(s) URL rather than a file path.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Open returns a reader over the decoded contents of src. The caller must
// close it.
func (f *Fetcher) Open(ctx context.Context, src string) (io.ReadCloser, error) {
	var raw io.ReadCloser
	if IsURL(src) {
		body, err := f.get(ctx, src)
		if err != nil {
			return nil, err
		}
		raw = body
	} else {
		file, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		raw = file
	}

	rc, codec, err := decode(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}
	f.logger().Debug("dataset source opened", slog.String("source", src), slog.String("codec", codec))
	return rc, nil
}

// Dataset opens src and parses it as a climate dataset.
func (f *Fetcher) Dataset(ctx context.Context, src string) (*globe.ClimateDataset, error) {
	rc, err := f.Open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	d, err := globe.ParseDataset(rc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src, err)
	}
	f.logger().Info("dataset loaded", slog.String("source", src), slog.Int("years", d.Len()))
	return d, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// decode sniffs the leading bytes of raw and wraps it in the matching
// decompressor. Plain payloads pass through.
func decode(raw io.ReadCloser) (io.ReadCloser, string, error) {
	br := bufio.NewReader(raw)
	head, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, "", fmt.Errorf("gzip header: %w", err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, raw}}, "gzip", nil

	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, "", fmt.Errorf("zstd decoder: %w", err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zstdCloser{zr}, raw}}, "zstd", nil
	}
	return &stackedCloser{Reader: br, closers: []io.Closer{raw}}, "none", nil
}

// stackedCloser closes a decoder and its source in order.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// zstdCloser adapts zstd.Decoder, whose Close returns nothing.
type zstdCloser struct{ d *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.d.Close()
	return nil
}
