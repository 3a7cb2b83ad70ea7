package storage

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ioann7/api-yatube/config"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"posts/a.jpg", "posts/a.jpg", false},
		{"/posts/a.jpg", "posts/a.jpg", false},
		{"posts/../posts/a.jpg", "posts/a.jpg", false},
		{"../etc/passwd", "", true},
		{"posts/../../x", "", true},
		{"", "", true},
		{"/", "", true},
	}
	for _, tt := range tests {
		got, err := CleanPath(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("CleanPath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("CleanPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDiskStorage(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStorage(dir)

	n, err := s.Save("posts/one.jpg", strings.NewReader("jpeg bytes"))
	if err != nil || n != int64(len("jpeg bytes")) {
		t.Fatalf("Save() = %d, %v", n, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "posts", "one.jpg")); err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if entries, _ := os.ReadDir(filepath.Join(dir, "posts")); len(entries) != 1 {
		t.Errorf("posts/ holds %d entries, temporary files left behind", len(entries))
	}

	buf := bytes.Buffer{}
	if _, err := s.Load("posts/one.jpg", &buf); err != nil || buf.String() != "jpeg bytes" {
		t.Fatalf("Load() = %q, %v", buf.String(), err)
	}

	w := httptest.NewRecorder()
	s.Serve("posts/one.jpg", httptest.NewRequest(http.MethodGet, "/media/posts/one.jpg", nil), w)
	if w.Code != http.StatusOK || w.Body.String() != "jpeg bytes" {
		t.Errorf("Serve() = %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	s.Serve("../secret", httptest.NewRequest(http.MethodGet, "/media/../secret", nil), w)
	if w.Code != http.StatusNotFound {
		t.Errorf("Serve(../secret) = %d, want 404", w.Code)
	}

	if _, err := s.Save("../escape.jpg", strings.NewReader("x")); err != ErrInvalidPath {
		t.Errorf("Save(../escape.jpg) error = %v, want ErrInvalidPath", err)
	}

	if err := s.Delete("posts/one.jpg"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("posts/one.jpg", &buf); !os.IsNotExist(err) {
		t.Errorf("Load() after Delete error = %v", err)
	}
}

func TestBucketGetRemotePath(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "posts/a.jpg", "posts/a.jpg"},
		{"yatube", "posts/a.jpg", "yatube/posts/a.jpg"},
		{"yatube/", "/posts/a.jpg", "yatube/posts/a.jpg"},
	}
	for _, tt := range tests {
		b := Bucket{Prefix: tt.prefix}
		if got := b.GetRemotePath(tt.path); got != tt.want {
			t.Errorf("GetRemotePath(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestURL(t *testing.T) {
	original := config.MEDIA_URL
	defer func() { config.MEDIA_URL = original }()

	config.MEDIA_URL = "/media/"
	if got := URL("posts/a.jpg"); got != "/media/posts/a.jpg" {
		t.Errorf("URL() = %q", got)
	}
	config.MEDIA_URL = "https://cdn.example.com/m"
	if got := URL("/posts/a.jpg"); got != "https://cdn.example.com/m/posts/a.jpg" {
		t.Errorf("URL() = %q", got)
	}
}
