// Package gcssource reads and writes datasets in Google Cloud Storage.
package gcssource

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/citylookup/citycache/internal/codec"
	"github.com/citylookup/citycache/internal/source"
)

// Compile-time checks that Source implements source.Source and source.Sink.
var (
	_ source.Source = (*Source)(nil)
	_ source.Sink   = (*Source)(nil)
)

// Source is a GCS bucket, optionally restricted to an object prefix.
type Source struct {
	client     *storage.Client
	ownsClient bool
	bucket     *storage.BucketHandle
	bucketName string
	prefix     string
	codec      codec.Codec
}

type settings struct {
	prefix     string
	client     *storage.Client
	clientOpts []option.ClientOption
}

// Option configures a Source.
type Option func(*settings)

// WithPrefix sets an object prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = source.NormalizePrefix(prefix) }
}

// WithClient reuses an existing client. The source will not close it.
func WithClient(c *storage.Client) Option {
	return func(s *settings) { s.client = c }
}

// WithEndpoint points the client at a custom endpoint, such as a local
// emulator, without authentication.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.clientOpts = append(s.clientOpts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
}

// New creates a new GCS source. The bucket must already exist.
// The codec handles decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Source, error) {
	var st settings
	for _, opt := range opts {
		opt(&st)
	}

	client, owns := st.client, false
	if client == nil {
		var err error
		client, err = storage.NewClient(ctx, st.clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating GCS client: %w", err)
		}
		owns = true
	}

	return &Source{
		client:     client,
		ownsClient: owns,
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		prefix:     st.prefix,
		codec:      c,
	}, nil
}

// Open streams and decompresses the named dataset.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := s.objectName(name)
	reader, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: gs://%s/%s", source.ErrNotFound, s.bucketName, key)
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}

	rc, err := codec.Open(s.codec, reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return rc, nil
}

// Create returns a writer that compresses into the named object. The
// upload completes when the writer is closed; canceling ctx before then
// abandons it.
func (s *Source) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := s.bucket.Object(s.objectName(name)).NewWriter(ctx)
	if s.codec.Extension() == "" {
		w.ContentType = "text/csv"
	}

	wc, err := codec.Create(s.codec, w)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	return wc, nil
}

// Close releases the client if the source created it.
func (s *Source) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Close()
}

// objectName returns the full object name for a dataset.
func (s *Source) objectName(name string) string {
	return source.ObjectName(s.prefix, name, s.codec)
}
