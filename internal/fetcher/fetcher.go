// Package fetcher downloads roster documents and visitor lists over HTTP(S),
// FTP, or the local filesystem, and streams CSV rows.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher downloads a single resource.
type Fetcher interface {
	// Download returns the resource body. The caller closes it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options configures the scheme dispatcher.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RatePerSecond throttles HTTP requests; 0 uses the HTTP default.
	RatePerSecond float64
	MaxRetries    int
}

// Dispatcher routes a source to the HTTP, FTP, or file fetcher by scheme.
type Dispatcher struct {
	HTTP Fetcher
	FTP  Fetcher
}

// New returns a Dispatcher with real HTTP and FTP fetchers.
func New(opts Options) *Dispatcher {
	return &Dispatcher{
		HTTP: NewHTTPFetcher(HTTPOptions{
			UserAgent:     opts.UserAgent,
			Timeout:       opts.Timeout,
			MaxRetries:    opts.MaxRetries,
			RatePerSecond: opts.RatePerSecond,
		}),
		FTP: NewFTPFetcher(FTPOptions{Timeout: opts.Timeout}),
	}
}

// Download fetches source. Strings without a scheme, and file:// URLs, are
// read from disk.
func (d *Dispatcher) Download(ctx context.Context, source string) (io.ReadCloser, error) {
	scheme := ""
	if i := strings.Index(source, "://"); i > 0 {
		scheme = strings.ToLower(source[:i])
	}

	switch scheme {
	case "http", "https":
		return d.HTTP.Download(ctx, source)
	case "ftp":
		return d.FTP.Download(ctx, source)
	case "file":
		u, err := url.Parse(source)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: parse %s", source)
		}
		return openFile(u.Path)
	case "":
		return openFile(source)
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", scheme)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	return f, nil
}
