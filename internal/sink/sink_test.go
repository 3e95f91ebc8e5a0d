package sink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/John-Robertt/clip2pdf/internal/config"
)

func TestKey(t *testing.T) {
	if got := Key("", "a.pdf"); got != "a.pdf" {
		t.Fatalf("期望 a.pdf，实际=%q", got)
	}
	if got := Key("/clips/2024/", "a.pdf"); got != "clips/2024/a.pdf" {
		t.Fatalf("期望 clips/2024/a.pdf，实际=%q", got)
	}
}

func TestNew_NoneReturnsNil(t *testing.T) {
	for _, typ := range []string{"", "none", " NONE "} {
		s, err := New(context.Background(), config.SinkSettings{Type: typ})
		if err != nil || s != nil {
			t.Fatalf("%q 期望 (nil, nil)，实际 (%v, %v)", typ, s, err)
		}
	}
}

func TestNew_Unsupported(t *testing.T) {
	if _, err := New(context.Background(), config.SinkSettings{Type: "ftp"}); err == nil {
		t.Fatalf("期望错误")
	}
}

// fakeObjectStore 接受所有请求并记录 method + path。
type fakeObjectStore struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]byte
}

func newFakeObjectStore(t *testing.T) (*fakeObjectStore, *httptest.Server) {
	t.Helper()
	f := &fakeObjectStore{bodies: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPut {
			f.bodies[r.URL.Path] = body
		}
		f.mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeObjectStore) has(req string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r == req {
			return true
		}
	}
	return false
}

func writePDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "movie.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.3\n%%EOF\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestS3_Put(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))
	store, srv := newFakeObjectStore(t)

	s, err := New(context.Background(), config.SinkSettings{
		Type:      config.SinkS3,
		Bucket:    "pdfs",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "ak",
		SecretKey: "sk",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if s.Name() != "s3" {
		t.Fatalf("期望 s3，实际=%q", s.Name())
	}

	remote, err := s.Put(context.Background(), Key("clips", "movie.pdf"), writePDF(t))
	if err != nil {
		t.Fatalf("上传不期望错误：%v", err)
	}
	if remote != "s3://pdfs/clips/movie.pdf" {
		t.Fatalf("remote 不符合预期：%q", remote)
	}
	if !store.has("PUT /pdfs/clips/movie.pdf") {
		t.Fatalf("期望 path-style PUT，实际请求=%v", store.requests)
	}
}

func TestS3_PutMissingFile(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))
	s, err := NewS3(context.Background(), config.SinkSettings{
		Type: config.SinkS3, Bucket: "b", Region: "us-east-1", AccessKey: "ak", SecretKey: "sk",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if _, err := s.Put(context.Background(), "x.pdf", filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatalf("期望本地文件不存在时报错")
	}
}

func TestMinIO_PutEnsuresBucketOnce(t *testing.T) {
	store, srv := newFakeObjectStore(t)

	s, err := New(context.Background(), config.SinkSettings{
		Type:      config.SinkMinIO,
		Bucket:    "pdfs",
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "ak",
		SecretKey: "sk",
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	pdf := writePDF(t)
	for i := 0; i < 2; i++ {
		remote, err := s.Put(context.Background(), "movie.pdf", pdf)
		if err != nil {
			t.Fatalf("上传不期望错误：%v", err)
		}
		if remote != "minio://pdfs/movie.pdf" {
			t.Fatalf("remote 不符合预期：%q", remote)
		}
	}

	heads := 0
	store.mu.Lock()
	for _, r := range store.requests {
		if r == "HEAD /pdfs/" || r == "HEAD /pdfs" {
			heads++
		}
	}
	store.mu.Unlock()
	if heads != 1 {
		t.Fatalf("期望只检查一次 bucket，实际请求=%v", store.requests)
	}
	if !store.has("PUT /pdfs/movie.pdf") {
		t.Fatalf("期望上传对象，实际请求=%v", store.requests)
	}
}

func TestNew_InvalidProxy(t *testing.T) {
	_, err := New(context.Background(), config.SinkSettings{
		Type: config.SinkMinIO, Bucket: "b", Endpoint: "127.0.0.1:9000", ProxyURL: "not a url",
	})
	if err == nil {
		t.Fatalf("期望代理地址无效时报错")
	}
}
