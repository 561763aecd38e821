package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const fetchTimeout = 30 * time.Second

// Fetcher retrieves raw source bytes from local paths or HTTP URLs.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileFetcher resolves paths against the local filesystem, falling back
// to HTTP for http:// and https:// URLs.
type FileFetcher struct {
	client *http.Client
}

// NewFetcher creates the default fetcher.
func NewFetcher() *FileFetcher {
	return &FileFetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch opens the source. Any failure is an ErrFetch; the caller treats
// it as a user-facing load failure for that year.
func (f *FileFetcher) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s returned %d", ErrFetch, path, resp.StatusCode)
		}
		return resp.Body, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return file, nil
}
