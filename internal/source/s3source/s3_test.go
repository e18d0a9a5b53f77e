package s3source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/citylookup/citycache/internal/codec"
	"github.com/citylookup/citycache/internal/source"
)

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var st settings
			WithPrefix(tt.input)(&st)
			if st.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", st.prefix, tt.want)
			}
		})
	}
}

func TestSource_objectKey(t *testing.T) {
	tests := []struct {
		prefix string
		c      codec.Codec
		want   string
	}{
		{"", codec.Zstd{}, "cities.csv.zst"},
		{"data/v1/", codec.Zstd{}, "data/v1/cities.csv.zst"},
		{"data/", codec.None{}, "data/cities.csv"},
	}

	for _, tt := range tests {
		s := &Source{prefix: tt.prefix, codec: tt.c}
		if got := s.objectKey("cities.csv"); got != tt.want {
			t.Errorf("objectKey() = %q, want %q", got, tt.want)
		}
	}
}

func TestSource_Close(t *testing.T) {
	s := &Source{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// compressData compresses data using zstd for testing.
func compressData(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter() error = %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

// newFakeS3 serves path-style GetObject requests from objects, keyed by
// "/bucket/key".
func newFakeS3(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		if r.Method == http.MethodPut {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			objects[r.URL.Path] = body
			w.Header().Set("ETag", `"fake"`)
			w.WriteHeader(http.StatusOK)
			return
		}

		data, ok := objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSource_Open(t *testing.T) {
	const data = "jp,Tokyo,13960000\n"
	srv := newFakeS3(t, map[string][]byte{
		"/datasets/v1/cities.csv.zst": compressData(t, []byte(data)),
	})

	ctx := context.Background()
	s, err := New(ctx, "datasets", codec.Zstd{},
		WithPrefix("v1"),
		WithRegion("us-east-1"),
		WithEndpoint(srv.URL),
		WithStaticCredentials("test", "test"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	rc, err := s.Open(ctx, "cities.csv")
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

	if _, err := s.Open(ctx, "missing.csv"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSource_CreateThenOpen(t *testing.T) {
	objects := map[string][]byte{}
	srv := newFakeS3(t, objects)

	ctx := context.Background()
	s, err := New(ctx, "datasets", codec.Zstd{},
		WithPrefix("v2"),
		WithRegion("us-east-1"),
		WithEndpoint(srv.URL),
		WithStaticCredentials("test", "test"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	const data = "th,Bangkok,10539000\n"
	w, err := s.Create(ctx, "cities.csv")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	io.WriteString(w, data)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, ok := objects["/datasets/v2/cities.csv.zst"]; !ok {
		t.Fatalf("object not uploaded; have %d objects", len(objects))
	}

	rc, err := s.Open(ctx, "cities.csv")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	if got, _ := io.ReadAll(rc); string(got) != data {
		t.Errorf("round trip = %q, want %q", got, data)
	}
}
