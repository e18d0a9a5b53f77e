package filesource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/citylookup/citycache/internal/codec"
	"github.com/citylookup/citycache/internal/source"
)

func writeCompressed(t *testing.T, path string, c codec.Codec, data string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	w, err := c.Writer(f)
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestSource_Open(t *testing.T) {
	const data = "jp,Tokyo,13960000\n"
	for _, c := range codec.All() {
		t.Run(c.Name(), func(t *testing.T) {
			dir := t.TempDir()
			writeCompressed(t, filepath.Join(dir, source.ObjectName("", "cities.csv", c)), c, data)

			s, err := New(dir, c)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer s.Close()

			rc, err := s.Open(context.Background(), "cities.csv")
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer rc.Close()

			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != data {
				t.Errorf("Open() read %q, want %q", got, data)
			}
		})
	}
}

func TestSource_OpenNotFound(t *testing.T) {
	s, err := New(t.TempDir(), codec.None{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = s.Open(context.Background(), "missing.csv")
	if !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestSource_OpenCancelled(t *testing.T) {
	s, err := New(t.TempDir(), codec.None{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Open(ctx, "cities.csv"); !errors.Is(err, context.Canceled) {
		t.Errorf("Open() error = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope"), codec.None{}); err == nil {
		t.Error("New() expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(file, codec.None{}); err == nil {
		t.Error("New() expected error for non-directory root")
	}
}

func TestSource_CreateThenOpen(t *testing.T) {
	for _, c := range codec.All() {
		t.Run(c.Name(), func(t *testing.T) {
			s, err := New(t.TempDir(), c)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			ctx := context.Background()

			w, err := s.Create(ctx, "cities.csv")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			io.WriteString(w, "fr,Paris,2148000\n")
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			if _, err := os.Stat(s.filePath("cities.csv")); err != nil {
				t.Errorf("dataset not at %s: %v", s.filePath("cities.csv"), err)
			}

			rc, err := s.Open(ctx, "cities.csv")
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer rc.Close()
			if got, _ := io.ReadAll(rc); string(got) != "fr,Paris,2148000\n" {
				t.Errorf("read %q", got)
			}
		})
	}
}
