// Package sink 把生成好的 PDF 上传到远端对象存储（可选）。
package sink

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/John-Robertt/clip2pdf/internal/config"
)

const contentTypePDF = "application/pdf"

// Sink 接收一个本地文件并返回远端位置（例如 s3://bucket/key）。
type Sink interface {
	Name() string
	Put(ctx context.Context, key, localPath string) (string, error)
}

// New 按 settings 构造 Sink；type=none 时返回 (nil, nil)，调用方据此跳过上传。
func New(ctx context.Context, s config.SinkSettings) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(s.Type)) {
	case "", config.SinkNone:
		return nil, nil
	case config.SinkS3:
		snk, err := NewS3(ctx, s)
		if err != nil {
			return nil, err
		}
		return snk, nil
	case config.SinkMinIO:
		snk, err := NewMinIO(s)
		if err != nil {
			return nil, err
		}
		return snk, nil
	default:
		return nil, fmt.Errorf("不支持的上传类型：%s", s.Type)
	}
}

// Key 组合对象 key：prefix/name（prefix 为空时只有 name）。
func Key(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
