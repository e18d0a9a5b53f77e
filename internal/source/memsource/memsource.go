// Package memsource provides an in-memory source for testing.
package memsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/citylookup/citycache/internal/source"
)

// Compile-time checks that Source implements source.Source and source.Sink.
var (
	_ source.Source = (*Source)(nil)
	_ source.Sink   = (*Source)(nil)
)

// Source holds uncompressed datasets in memory.
type Source struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an empty in-memory source.
func New() *Source {
	return &Source{data: make(map[string][]byte)}
}

// Set stores the content of a dataset (for test setup).
// The data is copied to prevent caller mutations from affecting the source.
func (s *Source) Set(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = bytes.Clone(data)
}

// Open returns a reader over the named dataset.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Create returns a writer whose content replaces the named dataset when it
// is closed.
func (s *Source) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &pendingWrite{src: s, name: name}, nil
}

type pendingWrite struct {
	bytes.Buffer
	src  *Source
	name string
}

func (w *pendingWrite) Close() error {
	w.src.Set(w.name, w.Bytes())
	return nil
}

// Close is a no-op for the memory source.
func (s *Source) Close() error {
	return nil
}
