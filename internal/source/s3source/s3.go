// Package s3source reads and writes datasets in AWS S3 or an S3-compatible service.
package s3source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/citylookup/citycache/internal/codec"
	"github.com/citylookup/citycache/internal/source"
)

// Compile-time checks that Source implements source.Source and source.Sink.
var (
	_ source.Source = (*Source)(nil)
	_ source.Sink   = (*Source)(nil)
)

// Source is an S3 bucket, optionally restricted to a key prefix.
type Source struct {
	client *s3.Client
	bucket string
	prefix string
	codec  codec.Codec
}

type settings struct {
	prefix     string
	loadOpts   []func(*config.LoadOptions) error
	clientOpts []func(*s3.Options)
}

// Option configures a Source.
type Option func(*settings)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *settings) { s.prefix = source.NormalizePrefix(prefix) }
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *settings) {
		s.loadOpts = append(s.loadOpts, config.WithRegion(region))
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like
// MinIO). Path-style addressing is enabled and request checksums are only
// sent where the API requires them.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.clientOpts = append(s.clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		})
	}
}

// WithStaticCredentials uses a fixed access key instead of the default
// credential chain.
func WithStaticCredentials(accessKey, secretKey string) Option {
	return func(s *settings) {
		s.loadOpts = append(s.loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
}

// New creates a new S3 source. The bucket must already exist.
// The codec handles decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Source, error) {
	var st settings
	for _, opt := range opts {
		opt(&st)
	}

	cfg, err := config.LoadDefaultConfig(ctx, st.loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &Source{
		client: s3.NewFromConfig(cfg, st.clientOpts...),
		bucket: bucketName,
		prefix: st.prefix,
		codec:  c,
	}, nil
}

// Open streams and decompresses the named dataset.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := s.objectKey(name)
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: s3://%s/%s", source.ErrNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	rc, err := codec.Open(s.codec, result.Body)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return rc, nil
}

// Create returns a writer that compresses into the named dataset. The
// object is uploaded in one PutObject call when the writer is closed.
func (s *Source) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	up := &upload{ctx: ctx, src: s, key: s.objectKey(name)}
	wc, err := codec.Create(s.codec, up)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	return wc, nil
}

// upload buffers an object until Close.
type upload struct {
	bytes.Buffer
	ctx context.Context
	src *Source
	key string
}

func (u *upload) Close() error {
	_, err := u.src.client.PutObject(u.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.src.bucket),
		Key:           aws.String(u.key),
		Body:          bytes.NewReader(u.Bytes()),
		ContentLength: aws.Int64(int64(u.Len())),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", u.src.bucket, u.key, err)
	}
	return nil
}

// Close releases resources.
func (s *Source) Close() error {
	// S3 client doesn't need explicit closing.
	return nil
}

// objectKey returns the full object key for a dataset.
func (s *Source) objectKey(name string) string {
	return source.ObjectName(s.prefix, name, s.codec)
}
