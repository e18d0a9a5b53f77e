// Package httpsource reads datasets over HTTP(S).
package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/citylookup/citycache/internal/codec"
	"github.com/citylookup/citycache/internal/source"
)

// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// Compile-time check that Source implements source.Source.
var _ source.Source = (*Source)(nil)

// Source fetches datasets relative to a base URL.
type Source struct {
	client  *http.Client
	baseURL string
	codec   codec.Codec
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithTimeout sets an overall timeout for each request, body included.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Source) {
		s.client = &http.Client{
			Timeout: timeout,
		}
	}
}

// New creates a source reading from baseURL, e.g. "https://host/datasets".
func New(baseURL string, c codec.Codec, opts ...Option) *Source {
	s := &Source{
		client: &http.Client{
			Timeout: 0, // Bodies may be large; only headers are bounded.
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		codec:   c,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open fetches and decompresses the named dataset.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.do(ctx, http.MethodGet, name)
	if err != nil {
		return nil, err
	}

	rc, err := codec.Open(s.codec, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return rc, nil
}

// objectURL returns the full URL of the named dataset.
func (s *Source) objectURL(name string) string {
	return s.baseURL + "/" + source.ObjectName("", name, s.codec)
}

// Close releases idle connections.
func (s *Source) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Source) do(ctx context.Context, method, name string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.objectURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, s.objectURL(name))
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
}
