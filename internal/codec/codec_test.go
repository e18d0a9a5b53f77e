package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func roundTrip(t *testing.T, c Codec, original []byte) []byte {
	t.Helper()

	var compressed bytes.Buffer
	w, err := c.Writer(&compressed)
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := w.Write(original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	r, err := c.Reader(&compressed)
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return got
}

func TestCodec_RoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":  {},
		"small":  []byte("country code,city name,population\njp,Tokyo,13960000\n"),
		"large":  bytes.Repeat([]byte("us,Springfield,167000\n"), 5000),
		"binary": {0, 1, 2, 0xff, 0xfe},
	}
	for _, c := range All() {
		for name, in := range inputs {
			t.Run(c.Name()+"/"+name, func(t *testing.T) {
				if got := roundTrip(t, c, in); !bytes.Equal(got, in) {
					t.Errorf("round trip returned %d bytes, want %d", len(got), len(in))
				}
			})
		}
	}
}

func TestCodec_Compresses(t *testing.T) {
	in := bytes.Repeat([]byte("ABCDEFGHIJ"), 10000)
	for _, c := range []Codec{Zstd{}, Gzip{}} {
		var buf bytes.Buffer
		w, _ := c.Writer(&buf)
		w.Write(in)
		w.Close()
		if buf.Len() >= len(in) {
			t.Errorf("%s: %d bytes from %d, expected compression", c.Name(), buf.Len(), len(in))
		}
	}
}

func TestCodec_Reader_InvalidData(t *testing.T) {
	for _, c := range []Codec{Zstd{}, Gzip{}} {
		r, err := c.Reader(strings.NewReader("definitely not compressed"))
		if err == nil {
			// zstd defers header validation to the first read.
			_, err = io.ReadAll(r)
		}
		if err == nil {
			t.Errorf("%s: expected error for invalid data", c.Name())
		}
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path     string
		wantName string
		wantExt  string
	}{
		{"data/cities.csv.zst", "data/cities.csv", "zst"},
		{"data/cities.csv.gz", "data/cities.csv", "gz"},
		{"data/cities.csv", "data/cities.csv", ""},
		{"cities", "cities", ""},
		{"cities.tar.bz2", "cities.tar.bz2", ""},
	}
	for _, tt := range tests {
		name, c := ForPath(tt.path)
		if name != tt.wantName || c.Extension() != tt.wantExt {
			t.Errorf("ForPath(%q) = %q, %q; want %q, %q", tt.path, name, c.Extension(), tt.wantName, tt.wantExt)
		}
	}
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestOpen_ClosesUnderlying(t *testing.T) {
	var buf bytes.Buffer
	w, _ := Gzip{}.Writer(&buf)
	io.WriteString(w, "hello")
	w.Close()

	under := &closeRecorder{Reader: &buf}
	rc, err := Open(Gzip{}, under)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got, _ := io.ReadAll(rc); string(got) != "hello" {
		t.Errorf("read %q, want hello", got)
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !under.closed {
		t.Error("underlying stream not closed")
	}
}

func TestOpen_ClosesOnError(t *testing.T) {
	under := &closeRecorder{Reader: strings.NewReader("junk")}
	_, err := Open(Gzip{}, under)
	if err == nil {
		t.Fatal("Open() expected error")
	}
	if !under.closed {
		t.Error("underlying stream left open after error")
	}
}

type writeCloseRecorder struct {
	bytes.Buffer
	closed bool
}

func (w *writeCloseRecorder) Close() error {
	w.closed = true
	return nil
}

func TestCreate_RoundTrip(t *testing.T) {
	for _, c := range All() {
		t.Run(c.Name(), func(t *testing.T) {
			under := &writeCloseRecorder{}
			wc, err := Create(c, under)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			io.WriteString(wc, "jp,Tokyo,37400068\n")
			if err := wc.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if !under.closed {
				t.Error("underlying stream not closed")
			}

			r, err := c.Reader(&under.Buffer)
			if err != nil {
				t.Fatalf("Reader() error = %v", err)
			}
			defer r.Close()
			if got, _ := io.ReadAll(r); string(got) != "jp,Tokyo,37400068\n" {
				t.Errorf("round trip = %q", got)
			}
		})
	}
}
