package dataset

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/citylookup/citycache/internal/source/filesource"
	"github.com/citylookup/citycache/internal/source/httpsource"
)

func TestParse(t *testing.T) {
	tests := []struct {
		uri    string
		scheme string
		host   string
		dir    string
		name   string
		codec  string
	}{
		{"./data/cities.csv", "file", "", "data/", "cities.csv", "none"},
		{"cities.csv.gz", "file", "", ".", "cities.csv", "gzip"},
		{"file:///srv/data/cities.csv.zst", "file", "", "/srv/data/", "cities.csv", "zstd"},
		{"s3://bucket/v1/cities.csv.zst", "s3", "bucket", "v1/", "cities.csv", "zstd"},
		{"s3://bucket/cities.csv", "s3", "bucket", "", "cities.csv", "none"},
		{"gs://bucket/a/b/cities.csv.gz", "gs", "bucket", "a/b/", "cities.csv", "gzip"},
		{"https://example.com/data/cities.csv", "https", "example.com", "/data/", "cities.csv", "none"},
		{"HTTP://example.com:8080/cities.csv.gz", "http", "example.com:8080", "/", "cities.csv", "gzip"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			loc, err := Parse(tt.uri)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if loc.Scheme != tt.scheme || loc.Host != tt.host || filepath.ToSlash(loc.Dir) != tt.dir || loc.Name != tt.name || loc.Codec.Name() != tt.codec {
				t.Errorf("Parse() = {%s %s %s %s %s}, want {%s %s %s %s %s}",
					loc.Scheme, loc.Host, loc.Dir, loc.Name, loc.Codec.Name(),
					tt.scheme, tt.host, tt.dir, tt.name, tt.codec)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		uri  string
		want error
	}{
		{"", ErrInvalidURI},
		{"ftp://host/cities.csv", ErrUnsupportedScheme},
		{"s3://bucket", ErrInvalidURI},
		{"s3://bucket/dir/", ErrInvalidURI},
		{"gs:///cities.csv", ErrInvalidURI},
		{"https://example.com/", ErrInvalidURI},
	}
	for _, tt := range tests {
		if _, err := Parse(tt.uri); !errors.Is(err, tt.want) {
			t.Errorf("Parse(%q) error = %v, want %v", tt.uri, err, tt.want)
		}
	}
}

func TestOpen_File(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cities.csv"), []byte("jp,Tokyo,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	src, name, err := Open(ctx, filepath.Join(dir, "cities.csv"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	if _, ok := src.(*filesource.Source); !ok {
		t.Errorf("Open() source = %T, want *filesource.Source", src)
	}
	rc, err := src.Open(ctx, name)
	if err != nil {
		t.Fatalf("source Open(%q) error = %v", name, err)
	}
	defer rc.Close()
	if got, _ := io.ReadAll(rc); string(got) != "jp,Tokyo,1\n" {
		t.Errorf("read %q", got)
	}
}

func TestOpen_FileMissingDir(t *testing.T) {
	_, _, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope", "cities.csv"))
	if err == nil {
		t.Error("Open() expected error for missing directory")
	}
}

func TestOpen_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/cities.csv" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "us,Springfield,167000\n")
	}))
	defer srv.Close()

	ctx := context.Background()
	src, name, err := Open(ctx, srv.URL+"/data/cities.csv", WithHTTPOptions(httpsource.WithHTTPClient(srv.Client())))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	rc, err := src.Open(ctx, name)
	if err != nil {
		t.Fatalf("source Open() error = %v", err)
	}
	defer rc.Close()
	if got, _ := io.ReadAll(rc); string(got) != "us,Springfield,167000\n" {
		t.Errorf("read %q", got)
	}
}

func TestCreate_FileRoundTrip(t *testing.T) {
	uri := filepath.Join(t.TempDir(), "nested", "dir", "cities.csv.gz")
	ctx := context.Background()

	w, err := Create(ctx, uri)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	io.WriteString(w, "jp,Tokyo,37400068\n")
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, name, err := Open(ctx, uri)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()
	rc, err := src.Open(ctx, name)
	if err != nil {
		t.Fatalf("src.Open() error = %v", err)
	}
	defer rc.Close()
	if got, _ := io.ReadAll(rc); string(got) != "jp,Tokyo,37400068\n" {
		t.Errorf("round trip = %q", got)
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		uri  string
		want error
	}{
		{"https://example.com/cities.csv", ErrReadOnly},
		{"ftp://host/cities.csv", ErrUnsupportedScheme},
		{"", ErrInvalidURI},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if _, err := Create(context.Background(), tt.uri); !errors.Is(err, tt.want) {
				t.Errorf("Create(%q) error = %v, want %v", tt.uri, err, tt.want)
			}
		})
	}
}
