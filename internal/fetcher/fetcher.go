// Package fetcher retrieves registry payloads over HTTP and FTP with retry
// and per-host rate limiting.
package fetcher

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options configures fetcher construction.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// ForURL returns a fetcher appropriate for the URL scheme: FTP for ftp://,
// HTTP for everything else.
func ForURL(rawURL string, opts Options) (Fetcher, error) {
	switch {
	case strings.HasPrefix(rawURL, "ftp://"):
		return NewFTP(FTPOptions{Timeout: opts.Timeout}), nil
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return NewHTTP(HTTPOptions{
			UserAgent:  opts.UserAgent,
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
		}), nil
	default:
		return nil, eris.Errorf("fetcher: unsupported url scheme in %q", rawURL)
	}
}
