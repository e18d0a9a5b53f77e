// Package codec provides the compression formats a dataset may be stored in.
package codec

import (
	"compress/gzip"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it. Closing the result
	// does not close r.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it. Closing the result
	// flushes but does not close w.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
	// Name returns a short identifier, e.g. "zstd".
	Name() string
}

// Compile-time checks.
var (
	_ Codec = Zstd{}
	_ Codec = Gzip{}
	_ Codec = None{}
)

// All lists every known codec.
func All() []Codec {
	return []Codec{Zstd{}, Gzip{}, None{}}
}

// ForPath picks a codec from the extension of p and returns p without that
// extension. Unknown or missing extensions select None and leave p as is.
func ForPath(p string) (string, Codec) {
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" {
		return p, None{}
	}
	for _, c := range All() {
		if c.Extension() == ext {
			return strings.TrimSuffix(p, "."+ext), c
		}
	}
	return p, None{}
}

// Zstd implements zstd compression.
type Zstd struct{}

// Reader wraps r to decompress zstd data.
func (Zstd) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// Writer wraps w to compress data with zstd.
func (Zstd) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

// Extension returns "zst".
func (Zstd) Extension() string { return "zst" }

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// Gzip implements gzip compression.
type Gzip struct{}

// Reader wraps r to decompress gzip data.
func (Gzip) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Writer wraps w to compress data with gzip.
func (Gzip) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

// Extension returns "gz".
func (Gzip) Extension() string { return "gz" }

// Name returns "gzip".
func (Gzip) Name() string { return "gzip" }

// None passes data through unchanged.
type None struct{}

// Reader returns r with a no-op Close.
func (None) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w with a no-op Close.
func (None) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// Extension returns empty string.
func (None) Extension() string { return "" }

// Name returns "none".
func (None) Name() string { return "none" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// ReadCloser pairs a decompressing reader with the stream beneath it so
// closing one closes both.
type ReadCloser struct {
	io.ReadCloser
	Underlying io.Closer
}

// Close closes the decompressor, then the underlying stream.
func (r *ReadCloser) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.Underlying.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open wraps rc with c's decompressor. On failure rc is closed.
func Open(c Codec, rc io.ReadCloser) (io.ReadCloser, error) {
	dec, err := c.Reader(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return &ReadCloser{ReadCloser: dec, Underlying: rc}, nil
}

// WriteCloser pairs a compressing writer with the stream beneath it so
// closing one flushes the encoder and closes the stream.
type WriteCloser struct {
	io.WriteCloser
	Underlying io.Closer
}

// Close flushes the compressor, then closes the underlying stream.
func (w *WriteCloser) Close() error {
	err := w.WriteCloser.Close()
	if cerr := w.Underlying.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create wraps wc with c's compressor. On failure wc is closed.
func Create(c Codec, wc io.WriteCloser) (io.WriteCloser, error) {
	enc, err := c.Writer(wc)
	if err != nil {
		wc.Close()
		return nil, err
	}
	return &WriteCloser{WriteCloser: enc, Underlying: wc}, nil
}
