// Package source implements ports.DatasetSource for the places a dataset can
// live: a local file, an HTTP URL, or the corpus bundled into the binary.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/chatmon/internal/adapters/corpus"
	"github.com/corey/chatmon/internal/ports"
)

// maxDatasetBytes caps what file and HTTP sources will read.
const maxDatasetBytes = 8 << 20

// ErrTooLarge is returned when a dataset exceeds the size cap.
var ErrTooLarge = errors.New("dataset exceeds size limit")

// readCapped reads r to the end, failing once more than limit bytes arrive.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}

// FileSource reads a dataset from disk.
type FileSource struct {
	path  string
	limit int64
}

// NewFile returns a source for the file at path.
func NewFile(path string) *FileSource {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &FileSource{path: path, limit: maxDatasetBytes}
}

// Fetch reads the whole file, up to the size cap.
func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("read dataset: %w", err)
	}
	defer f.Close()

	data, err := readCapped(f, s.limit)
	if err != nil {
		return "", fmt.Errorf("read dataset: %w", err)
	}
	return string(data), nil
}

// Name returns the absolute path.
func (s *FileSource) Name() string { return s.path }

// Path returns the absolute path, for watching.
func (s *FileSource) Path() string { return s.path }

// HTTPSource downloads a dataset with GET. Any non-2xx status is an error.
type HTTPSource struct {
	url        string
	httpClient *http.Client
	limit      int64
}

// NewHTTP returns a source for url with the given request timeout.
func NewHTTP(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limit: maxDatasetBytes,
	}
}

// Fetch downloads the dataset body.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create dataset request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("dataset download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("dataset download failed: %s", resp.Status)
	}

	body, err := readCapped(resp.Body, s.limit)
	if err != nil {
		return "", fmt.Errorf("failed to read dataset body: %w", err)
	}
	return string(body), nil
}

// Name returns the URL.
func (s *HTTPSource) Name() string { return s.url }

// EmbeddedSource serves a dataset compiled into the binary.
type EmbeddedSource struct {
	fsys fs.FS
	path string
}

// NewEmbedded returns a source for the bundled default dataset.
func NewEmbedded() *EmbeddedSource {
	return &EmbeddedSource{fsys: corpus.FS, path: corpus.Default}
}

// Fetch reads the embedded file.
func (s *EmbeddedSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(s.fsys, s.path)
	if err != nil {
		return "", fmt.Errorf("read embedded dataset: %w", err)
	}
	return string(data), nil
}

// Name returns "embedded:" plus the file path inside the bundle.
func (s *EmbeddedSource) Name() string { return "embedded:" + s.path }

// New picks a source for location: "" selects the embedded dataset, http(s)
// URLs select HTTPSource, anything else is a file path.
func New(location string, timeout time.Duration) ports.DatasetSource {
	switch {
	case location == "":
		return NewEmbedded()
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTP(location, timeout)
	default:
		return NewFile(location)
	}
}
