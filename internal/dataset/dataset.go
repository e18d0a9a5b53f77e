// Package dataset resolves a dataset URI to a source and a dataset name,
// for reading with Open or writing with Create.
//
// Supported forms:
//
//	./data/cities.csv            local file (also file:///abs/path)
//	s3://bucket/prefix/cities.csv.zst
//	gs://bucket/prefix/cities.csv.gz
//	https://host/path/cities.csv
//
// A trailing .zst or .gz selects the matching codec.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/citylookup/citycache/internal/codec"
	"github.com/citylookup/citycache/internal/source"
	"github.com/citylookup/citycache/internal/source/filesource"
	"github.com/citylookup/citycache/internal/source/gcssource"
	"github.com/citylookup/citycache/internal/source/httpsource"
	"github.com/citylookup/citycache/internal/source/s3source"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrUnsupportedScheme indicates a URI scheme with no source.
	ErrUnsupportedScheme = errors.New("dataset: unsupported URI scheme")

	// ErrInvalidURI indicates a URI that names no dataset.
	ErrInvalidURI = errors.New("dataset: invalid URI")
)

// Location is a parsed dataset URI.
type Location struct {
	Scheme string // "file", "s3", "gs", "http" or "https"
	Host   string // bucket or host; empty for files
	Dir    string // directory, key prefix or URL path, without the file name
	Name   string // file name without the codec extension
	Codec  codec.Codec
}

// Parse splits uri into a Location without touching the network or disk.
func Parse(uri string) (Location, error) {
	if strings.TrimSpace(uri) == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidURI)
	}

	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return fileLocation(uri)
	}

	switch scheme = strings.ToLower(scheme); scheme {
	case "file":
		return fileLocation(rest)
	case "s3", "gs":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
			return Location{}, fmt.Errorf("%w: %s needs a bucket and an object key", ErrInvalidURI, uri)
		}
		dir, file := path.Split(key)
		name, c := codec.ForPath(file)
		return Location{Scheme: scheme, Host: bucket, Dir: dir, Name: name, Codec: c}, nil
	case "http", "https":
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
		}
		dir, file := path.Split(u.Path)
		if u.Host == "" || file == "" {
			return Location{}, fmt.Errorf("%w: %s needs a host and a file", ErrInvalidURI, uri)
		}
		name, c := codec.ForPath(file)
		return Location{Scheme: scheme, Host: u.Host, Dir: dir, Name: name, Codec: c}, nil
	default:
		return Location{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

func fileLocation(p string) (Location, error) {
	dir, file := filepath.Split(filepath.Clean(p))
	if file == "" || file == "." || file == string(filepath.Separator) {
		return Location{}, fmt.Errorf("%w: %s names no file", ErrInvalidURI, p)
	}
	if dir == "" {
		dir = "."
	}
	name, c := codec.ForPath(file)
	return Location{Scheme: "file", Dir: dir, Name: name, Codec: c}, nil
}

// options collects per-backend settings.
type options struct {
	s3   []s3source.Option
	gcs  []gcssource.Option
	http []httpsource.Option
}

// Option configures Open.
type Option func(*options)

// WithS3Options passes extra options to S3 sources.
func WithS3Options(opts ...s3source.Option) Option {
	return func(o *options) { o.s3 = append(o.s3, opts...) }
}

// WithGCSOptions passes extra options to GCS sources.
func WithGCSOptions(opts ...gcssource.Option) Option {
	return func(o *options) { o.gcs = append(o.gcs, opts...) }
}

// WithHTTPOptions passes extra options to HTTP sources.
func WithHTTPOptions(opts ...httpsource.Option) Option {
	return func(o *options) { o.http = append(o.http, opts...) }
}

// Open returns a source able to open the dataset named by uri, and the
// name to pass to its Open method. The caller must close the source.
func Open(ctx context.Context, uri string, opts ...Option) (source.Source, string, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, "", err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var src source.Source
	switch loc.Scheme {
	case "file":
		src, err = filesource.New(loc.Dir, loc.Codec)
	case "s3":
		src, err = s3source.New(ctx, loc.Host, loc.Codec,
			append([]s3source.Option{s3source.WithPrefix(loc.Dir)}, o.s3...)...)
	case "gs":
		src, err = gcssource.New(ctx, loc.Host, loc.Codec,
			append([]gcssource.Option{gcssource.WithPrefix(loc.Dir)}, o.gcs...)...)
	default:
		src = httpsource.New(loc.Scheme+"://"+loc.Host+loc.Dir, loc.Codec, o.http...)
	}
	if err != nil {
		return nil, "", fmt.Errorf("opening %s source: %w", loc.Scheme, err)
	}
	return src, loc.Name, nil
}

// ErrReadOnly indicates a URI scheme that can only be read.
var ErrReadOnly = errors.New("dataset: scheme is read-only")

// Create returns a writer that stores a dataset at uri, compressed
// according to its extension. Local parent directories are created as
// needed. The dataset is committed when the writer is closed.
func Create(ctx context.Context, uri string, opts ...Option) (io.WriteCloser, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var sink interface {
		source.Source
		source.Sink
	}
	switch loc.Scheme {
	case "file":
		if err := os.MkdirAll(loc.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory: %w", err)
		}
		sink, err = filesource.New(loc.Dir, loc.Codec)
	case "s3":
		sink, err = s3source.New(ctx, loc.Host, loc.Codec,
			append([]s3source.Option{s3source.WithPrefix(loc.Dir)}, o.s3...)...)
	case "gs":
		sink, err = gcssource.New(ctx, loc.Host, loc.Codec,
			append([]gcssource.Option{gcssource.WithPrefix(loc.Dir)}, o.gcs...)...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrReadOnly, loc.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s sink: %w", loc.Scheme, err)
	}

	w, err := sink.Create(ctx, loc.Name)
	if err != nil {
		sink.Close()
		return nil, err
	}
	return &codec.WriteCloser{WriteCloser: w, Underlying: sink}, nil
}
