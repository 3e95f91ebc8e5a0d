package pdfx

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/John-Robertt/clip2pdf/internal/domain"
	"github.com/John-Robertt/clip2pdf/internal/infra/fsx"
)

// 页面尺寸策略。
const (
	// SizeFirst：整份文档都用第一帧的像素尺寸（后续帧被拉伸到该尺寸）。
	SizeFirst = "first"
	// SizeEach：每页用各自帧的尺寸。
	SizeEach = "each"
)

// ValidSizing 判断页面尺寸策略是否合法。
func ValidSizing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case SizeFirst, SizeEach:
		return true
	default:
		return false
	}
}

// Document 是已排版、尚未落盘的 PDF。
type Document struct {
	pdf    *fpdf.Fpdf
	width  float64
	height float64
}

// Pages 返回页数。
func (d *Document) Pages() int { return d.pdf.PageCount() }

// Compose 把 frames 按顺序排成一页一帧的 PDF（只在内存中排版，不写文件）。
//
// 约束：
// - 单位 pt，1 像素 = 1 pt（不做 DPI 换算）
// - 每帧铺满整页，左上角对齐 (0,0)
// - SizeFirst 只要求 frames[0] 带尺寸；SizeEach 要求每帧都带尺寸
func Compose(frames []domain.FrameFile, sizing string) (*Document, error) {
	if len(frames) == 0 {
		return nil, errors.New("没有可用的帧")
	}
	sizing = strings.ToLower(strings.TrimSpace(sizing))
	if sizing == "" {
		sizing = SizeFirst
	}
	if !ValidSizing(sizing) {
		return nil, fmt.Errorf("page_size 只能是 first 或 each，实际是 %q", sizing)
	}

	first := frames[0]
	if first.Width <= 0 || first.Height <= 0 {
		return nil, fmt.Errorf("第一帧尺寸无效：%dx%d", first.Width, first.Height)
	}
	w, h := float64(first.Width), float64(first.Height)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for i, fr := range frames {
		pw, ph := w, h
		if sizing == SizeEach {
			if fr.Width <= 0 || fr.Height <= 0 {
				return nil, fmt.Errorf("第 %d 帧尺寸无效：%dx%d", i+1, fr.Width, fr.Height)
			}
			pw, ph = float64(fr.Width), float64(fr.Height)
		}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: pw, Ht: ph})
		pdf.ImageOptions(fr.Path, 0, 0, pw, ph, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("写入第 %d 页失败：%w", i+1, err)
		}
	}
	return &Document{pdf: pdf, width: w, height: h}, nil
}

// WriteFile 原子写入 outPath（同名文件直接覆盖）。
func (d *Document) WriteFile(outPath string) (domain.PdfArtifact, error) {
	dir, name := filepath.Split(outPath)
	if err := fsx.WriteAtomicReplace(filepath.Clean(dir), name, func(w io.Writer) error {
		return d.pdf.Output(w)
	}); err != nil {
		return domain.PdfArtifact{}, err
	}
	return domain.PdfArtifact{
		Path:       outPath,
		Pages:      d.Pages(),
		PageWidth:  d.width,
		PageHeight: d.height,
	}, nil
}
