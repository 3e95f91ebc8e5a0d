package mpegx

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gen2brain/mpeg"
	"go.uber.org/zap"

	"github.com/John-Robertt/clip2pdf/internal/decoder"
	"github.com/John-Robertt/clip2pdf/internal/infra/imgx"
)

// Name 是该 decoder 在注册表中的名字。
const Name = "mpeg"

var _ decoder.Decoder = (*Decoder)(nil)

// Decoder 是纯 Go 的 MPEG-1 解码实现（不依赖外部进程）。
// 只支持 MPEG-1 视频的 PS 流；其他编码的文件在 Open 阶段失败。
type Decoder struct {
	quality int
	logger  *zap.Logger
}

func New(jpegQuality int, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{quality: jpegQuality, logger: logger}
}

func (d *Decoder) Name() string { return Name }

func (d *Decoder) Open(ctx context.Context, path string) (src decoder.Source, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// 损坏的流可能让解码库 panic；这里统一转成错误，不越过 Open 的边界。
	defer func() {
		if r := recover(); r != nil {
			_ = f.Close()
			src, err = nil, fmt.Errorf("mpeg 解码失败：%v", r)
		}
	}()

	m, err := mpeg.New(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mpeg 打开失败：%w", err)
	}

	dur := m.Duration().Seconds()
	if dur <= 0 || math.IsNaN(dur) || math.IsInf(dur, 0) {
		_ = f.Close()
		return nil, fmt.Errorf("视频时长无效：%v", dur)
	}

	d.logger.Debug("video opened", zap.String("video", path), zap.Float64("duration", dur))
	return &source{f: f, m: m, duration: dur, quality: d.quality}, nil
}

type source struct {
	f        *os.File
	m        *mpeg.MPEG
	duration float64
	quality  int
}

func (s *source) Duration() float64 { return s.duration }

func (s *source) CaptureFrame(ctx context.Context, t float64, dst string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mpeg 解码失败：t=%.3f：%v", t, r)
		}
	}()

	frame := s.m.SeekFrame(time.Duration(t*float64(time.Second)), true)
	if frame == nil {
		return fmt.Errorf("%w：t=%.3f", decoder.ErrNoFrame, t)
	}
	return imgx.WriteJPEG(dst, frame.YCbCr(), s.quality)
}

func (s *source) Close() error { return s.f.Close() }
