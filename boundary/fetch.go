package boundary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrFetch marks any failure to obtain the boundary dataset.
var ErrFetch = errors.New("boundary fetch failed")

// Fetcher downloads the boundary dataset. Sources without an http(s)
// scheme are read from the local filesystem, with an optional file://
// prefix.
type Fetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{Client: http.DefaultClient, Timeout: timeout}
}

func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if !isRemote(source) {
		data, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return data, nil
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, source, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	return body, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
