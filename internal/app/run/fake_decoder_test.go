package run

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/John-Robertt/clip2pdf/internal/decoder"
	"github.com/John-Robertt/clip2pdf/internal/infra/imgx"
)

// fakeDecoder 把"视频文件内容"解释为时长（秒）；内容不是数字则视为损坏文件。
// 抽帧时生成一张 width x height 的真实 JPEG，颜色随时间戳变化。
type fakeDecoder struct {
	width, height int
	// sizeAt 可选：按时间戳返回不同尺寸（测试 page_size=each）。
	sizeAt func(t float64) (int, int)
	// failAt 可选：第 n 次抽帧（1-based）返回错误。
	failAt int
	// failOnly 可选：非空时 failAt 只对该文件名（含扩展名）生效。
	failOnly string

	mu       sync.Mutex
	captured map[string][]float64 // video path -> timestamps
	closed   int
}

func newFakeDecoder(w, h int) *fakeDecoder {
	return &fakeDecoder{width: w, height: h, captured: map[string][]float64{}}
}

func (d *fakeDecoder) Name() string { return "fake" }

func (d *fakeDecoder) Open(ctx context.Context, path string) (decoder.Source, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return nil, fmt.Errorf("无法识别的视频容器：%s", filepath.Base(path))
	}
	return &fakeSource{d: d, path: path, duration: dur}, nil
}

func (d *fakeDecoder) timestamps(path string) []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]float64(nil), d.captured[path]...)
}

type fakeSource struct {
	d        *fakeDecoder
	path     string
	duration float64
	n        int
}

func (s *fakeSource) Duration() float64 { return s.duration }

func (s *fakeSource) CaptureFrame(ctx context.Context, t float64, dst string) error {
	s.n++
	if s.d.failAt > 0 && s.n == s.d.failAt && (s.d.failOnly == "" || s.d.failOnly == filepath.Base(s.path)) {
		return errors.New("解码失败")
	}
	if t >= s.duration {
		return decoder.ErrNoFrame
	}

	w, h := s.d.width, s.d.height
	if s.d.sizeAt != nil {
		w, h = s.d.sizeAt(t)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{uint8(int(t) % 256), 80, 160, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	if err := imgx.WriteJPEG(dst, img, 80); err != nil {
		return err
	}

	s.d.mu.Lock()
	s.d.captured[s.path] = append(s.d.captured[s.path], t)
	s.d.mu.Unlock()
	return nil
}

func (s *fakeSource) Close() error {
	s.d.mu.Lock()
	s.d.closed++
	s.d.mu.Unlock()
	return nil
}

func writeVideo(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入视频失败：%v", err)
	}
}

func readPDF(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取 PDF 失败：%v", err)
	}
	return b
}

// countPages 统计页面对象个数（"/Type /Page" 后紧跟换行，排除 "/Type /Pages"）。
func countPages(b []byte) int {
	return strings.Count(string(b), "/Type /Page\n")
}

func assertNotExist(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("期望 %s 不存在，Stat err=%v", path, err)
	}
}
