// Package source defines where datasets are read from and written to.
package source

import (
	"context"
	"errors"
	"io"

	"github.com/citylookup/citycache/internal/codec"
)

// ErrNotFound is returned when a dataset does not exist in the source.
var ErrNotFound = errors.New("source: dataset not found")

// Source opens named datasets for reading.
// Implementations handle path formats and storage details internally.
type Source interface {
	// Open returns a reader over the decompressed content of the named
	// dataset. The caller must close it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Close releases any resources held by the source.
	Close() error
}

// Sink creates named datasets. Written data is committed when the
// returned writer is closed.
type Sink interface {
	// Create returns a writer that compresses into the named dataset,
	// replacing any existing one.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}

// ObjectName returns the stored name for a dataset: prefix, then name,
// then the codec extension if there is one.
func ObjectName(prefix, name string, c codec.Codec) string {
	if ext := c.Extension(); ext != "" {
		name += "." + ext
	}
	return prefix + name
}

// NormalizePrefix strips a trailing slash and adds exactly one back, so
// "a/b", "a/b/" and "a/b//" all become "a/b/". An empty prefix stays empty.
func NormalizePrefix(prefix string) string {
	for len(prefix) > 0 && prefix[len(prefix)-1] == '/' {
		prefix = prefix[:len(prefix)-1]
	}
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
