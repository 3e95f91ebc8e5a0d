package imgx

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // 注册 PNG 解码器（外部解码器不一定总输出 jpeg）
	"io"
	"os"
	"path/filepath"

	"github.com/John-Robertt/clip2pdf/internal/infra/fsx"
)

// DefaultQuality 是抽帧 JPEG 的默认质量。
const DefaultQuality = 90

// FrameSize 只读取图片头部，返回像素宽高（不解码整张图）。
func FrameSize(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("读取图片尺寸失败 %q：%w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("图片尺寸无效 %q：%dx%d", path, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// WriteJPEG 把 img 以 JPEG 编码原子写入 path（覆盖同名文件）。
// quality 超出 [1,100] 时回落到 DefaultQuality。
func WriteJPEG(path string, img image.Image, quality int) error {
	if img == nil {
		return errors.New("图片为空")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return errors.New("图片尺寸无效")
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return fsx.WriteAtomicReplace(filepath.Dir(path), filepath.Base(path), func(w io.Writer) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	})
}
