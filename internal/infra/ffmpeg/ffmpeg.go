package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/clip2pdf/internal/decoder"
)

// Name 是该 decoder 在注册表中的名字。
const Name = "ffmpeg"

var _ decoder.Decoder = (*Decoder)(nil)

// Decoder 通过外部 ffprobe/ffmpeg 进程读取时长与抽帧。
type Decoder struct {
	ffmpegPath  string
	ffprobePath string
	quality     int
	logger      *zap.Logger
}

// New 创建 Decoder；路径为空时使用 PATH 中的 ffmpeg/ffprobe。
// jpegQuality 取值 1..100，越大质量越高。
func New(ffmpegPath, ffprobePath string, jpegQuality int, logger *zap.Logger) *Decoder {
	if strings.TrimSpace(ffmpegPath) == "" {
		ffmpegPath = "ffmpeg"
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		quality:     jpegQuality,
		logger:      logger,
	}
}

func (d *Decoder) Name() string { return Name }

func (d *Decoder) Open(ctx context.Context, path string) (decoder.Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	duration, err := d.probeDuration(ctx, path)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("video probed", zap.String("video", path), zap.Float64("duration", duration))
	return &source{d: d, path: path, duration: duration}, nil
}

func (d *Decoder) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, d.ffprobePath, probeArgs(path)...)
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return 0, fmt.Errorf("ffprobe: %w, output: %s", err, strings.TrimSpace(string(ee.Stderr)))
		}
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return parseDuration(string(out))
}

type source struct {
	d        *Decoder
	path     string
	duration float64
}

func (s *source) Duration() float64 { return s.duration }

func (s *source) CaptureFrame(ctx context.Context, t float64, dst string) error {
	// 先删掉旧文件：ffmpeg 在越界时间戳上可能"成功退出但不写文件"，
	// 残留的旧帧会把这种情况伪装成成功。
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}

	cmd := exec.CommandContext(ctx, s.d.ffmpegPath, captureArgs(s.path, t, dst, s.d.quality)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, strings.TrimSpace(string(out)))
	}

	fi, err := os.Stat(dst)
	if err != nil || fi.Size() == 0 {
		return fmt.Errorf("%w：t=%s", decoder.ErrNoFrame, formatSeconds(t))
	}
	return nil
}

func (s *source) Close() error { return nil }

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
}

// captureArgs 把 -ss 放在 -i 之前（输入端快速定位），只取 1 帧。
func captureArgs(path string, t float64, dst string, quality int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(t),
		"-i", path,
		"-frames:v", "1",
		"-q:v", strconv.Itoa(qscale(quality)),
		"-y",
		dst,
	}
}

// qscale 把 1..100 的质量映射为 ffmpeg mjpeg 的 -q:v（2 最好，31 最差）。
func qscale(quality int) int {
	if quality < 1 || quality > 100 {
		quality = 90
	}
	return 2 + (100-quality)*29/99
}

func parseDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	// 部分容器会输出多行（每个 program 一行），取第一行。
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("无法读取视频时长：%q", raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("视频时长无效：%v", v)
	}
	return v, nil
}

func formatSeconds(t float64) string {
	return strconv.FormatFloat(t, 'f', 3, 64)
}
