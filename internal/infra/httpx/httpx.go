package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultRetryMax = 2

// Transport 把"代理 + 超时 + 有界重试"固化为上传客户端的统一网络策略。
//
// 只对可重放的请求重试（GET/HEAD 且无 body）；上传本身由 SDK 自己的重试负责。
type Transport struct {
	Base http.RoundTripper

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) &&
		(req.Body == nil || req.Body == http.NoBody)
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		// Clone 会复制 Header 等，避免在 RoundTripper 内部"污染"调用方的 request。
		resp, err := t.Base.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// NewTransport 构造上传用的 RoundTripper。
//
// 规则：
// - proxyURL 为空：不走代理（也不读 HTTP_PROXY 等环境变量，行为只由配置决定）
// - proxyURL 非空：必须是带 scheme 与 host 的 URL
// - 不设置整体超时（大文件上传耗时不可预估），只限制握手与响应头等待
func NewTransport(proxyURL string) (*Transport, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   4,
	}

	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL != "" {
		u, err := ParseProxyURL(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
	}

	return &Transport{Base: base, RetryMax: defaultRetryMax}, nil
}

// NewClient = NewTransport 包一层 http.Client。
func NewClient(proxyURL string) (*http.Client, error) {
	tr, err := NewTransport(proxyURL)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: tr}, nil
}

// ParseProxyURL 要求 scheme 与 host 都存在（例如 http://127.0.0.1:7890）。
func ParseProxyURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("代理地址必须包含 scheme 与 host，例如 http://127.0.0.1:7890")
	}
	return u, nil
}
