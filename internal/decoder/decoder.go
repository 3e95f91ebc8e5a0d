package decoder

import (
	"context"
	"errors"
)

// ErrNoFrame 表示在给定时间戳上没有解出任何画面（例如浮点误差让最后一段越过了结尾）。
var ErrNoFrame = errors.New("该时间点没有可用的视频帧")

// Decoder 把"视频容器/编解码"限制在具体实现内部；核心流程只依赖 Open + Source。
type Decoder interface {
	Name() string
	Open(ctx context.Context, path string) (Source, error)
}

// Source 是一个已打开的视频。
//
// 约束：
// - Duration 返回总时长（秒，浮点）
// - CaptureFrame 把时间戳 t（秒）处的画面编码为 JPEG 写入 dst；已存在的 dst 直接覆盖
// - Close 之后不得再调用其他方法
type Source interface {
	Duration() float64
	CaptureFrame(ctx context.Context, t float64, dst string) error
	Close() error
}
