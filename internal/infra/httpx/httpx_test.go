package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

type countingRT struct {
	calls int
	err   error
}

func (c *countingRT) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func TestNewTransport_Proxy(t *testing.T) {
	tr, err := NewTransport("http://127.0.0.1:8080")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	base, ok := tr.Base.(*http.Transport)
	if !ok {
		t.Fatalf("期望 *http.Transport，实际 %T", tr.Base)
	}
	if base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
}

func TestNewTransport_NoProxy(t *testing.T) {
	tr, err := NewTransport("")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if tr.Base.(*http.Transport).Proxy != nil {
		t.Fatalf("不期望启用代理，但 Proxy!=nil")
	}
	if tr.RetryMax != defaultRetryMax {
		t.Fatalf("期望默认重试 %d 次，实际 %d", defaultRetryMax, tr.RetryMax)
	}
}

func TestNewTransport_InvalidProxy(t *testing.T) {
	for _, raw := range []string{"127.0.0.1:8080", "://x", "http://"} {
		if _, err := NewTransport(raw); err == nil {
			t.Fatalf("%q 期望报错", raw)
		}
	}
}

func TestTransport_RetriesIdempotentRequests(t *testing.T) {
	rt := &countingRT{err: errors.New("connection reset")}
	tr := &Transport{Base: rt, RetryMax: 2}

	req, _ := http.NewRequest(http.MethodHead, "http://minio.test/bucket", nil)
	if _, err := tr.RoundTrip(req); err == nil {
		t.Fatalf("期望错误")
	}
	if rt.calls != 3 {
		t.Fatalf("HEAD 期望尝试 3 次，实际 %d", rt.calls)
	}
}

func TestTransport_NoRetryWithBody(t *testing.T) {
	rt := &countingRT{err: errors.New("connection reset")}
	tr := &Transport{Base: rt, RetryMax: 2}

	req, _ := http.NewRequest(http.MethodPut, "http://minio.test/bucket/a.pdf", strings.NewReader("pdf"))
	if _, err := tr.RoundTrip(req); err == nil {
		t.Fatalf("期望错误")
	}
	if rt.calls != 1 {
		t.Fatalf("PUT 不应重试，实际尝试 %d 次", rt.calls)
	}
}

func TestTransport_StopsOnCanceledContext(t *testing.T) {
	rt := &countingRT{err: errors.New("canceled")}
	tr := &Transport{Base: rt, RetryMax: 5}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://minio.test/", nil)
	_, _ = tr.RoundTrip(req)
	if rt.calls != 1 {
		t.Fatalf("ctx 已取消时不应重试，实际尝试 %d 次", rt.calls)
	}
}

func TestTransport_Success(t *testing.T) {
	rt := &countingRT{}
	c := &http.Client{Transport: &Transport{Base: rt, RetryMax: 2}}

	resp, err := c.Get("http://minio.test/")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	_ = resp.Body.Close()
	if rt.calls != 1 {
		t.Fatalf("成功时只应请求 1 次，实际 %d", rt.calls)
	}
}
