package imgx

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteJPEG_ThenFrameSize(t *testing.T) {
	const (
		w = 160
		h = 90
	)
	src := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	path := filepath.Join(t.TempDir(), "ClipTemp", "segment_1.jpg")
	if err := WriteJPEG(path, src, 0); err != nil {
		t.Fatalf("WriteJPEG 失败：%v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("打开失败：%v", err)
	}
	defer f.Close()
	if _, err := jpeg.Decode(f); err != nil {
		t.Fatalf("输出不是合法 JPEG：%v", err)
	}

	gw, gh, err := FrameSize(path)
	if err != nil {
		t.Fatalf("FrameSize 失败：%v", err)
	}
	if gw != w || gh != h {
		t.Fatalf("尺寸不符合预期：got=%dx%d want=%dx%d", gw, gh, w, h)
	}
}

func TestFrameSize_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jpg")
	if err := os.WriteFile(path, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if _, _, err := FrameSize(path); err == nil {
		t.Fatalf("期望错误")
	}
}

func TestWriteJPEG_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jpg")
	if err := WriteJPEG(path, nil, 90); err == nil {
		t.Fatalf("期望空输入返回错误")
	}
	if err := WriteJPEG(path, image.NewRGBA(image.Rect(0, 0, 0, 0)), 90); err == nil {
		t.Fatalf("期望零尺寸返回错误")
	}
}
