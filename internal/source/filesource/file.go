// Package filesource reads and writes datasets in a local directory.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/citylookup/citycache/internal/codec"
	"github.com/citylookup/citycache/internal/source"
)

// Compile-time checks that Source implements source.Source and source.Sink.
var (
	_ source.Source = (*Source)(nil)
	_ source.Sink   = (*Source)(nil)
)

// Source is a directory on disk.
type Source struct {
	root  string
	codec codec.Codec
}

// New creates a source rooted at the given directory.
// The directory must exist. The codec handles decompression.
func New(root string, c codec.Codec) (*Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return &Source{root: root, codec: c}, nil
}

// Open opens and decompresses the named dataset.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.filePath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", source.ErrNotFound, s.filePath(name))
		}
		return nil, fmt.Errorf("opening dataset: %w", err)
	}

	rc, err := codec.Open(s.codec, f)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	return rc, nil
}

// Create creates or truncates the named dataset and compresses into it.
func (s *Source) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Create(s.filePath(name))
	if err != nil {
		return nil, fmt.Errorf("creating dataset: %w", err)
	}

	wc, err := codec.Create(s.codec, f)
	if err != nil {
		return nil, fmt.Errorf("creating compressor: %w", err)
	}
	return wc, nil
}

// filePath returns the filesystem path of the named dataset.
func (s *Source) filePath(name string) string {
	return filepath.Join(s.root, source.ObjectName("", name, s.codec))
}

// Close releases any resources held by the source.
func (s *Source) Close() error {
	return nil
}
