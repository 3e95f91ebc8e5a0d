package planner

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/John-Robertt/clip2pdf/internal/domain"
)

// PlanSegments 把 duration 秒等分成 count 段，并为每段的起点分配帧文件路径。
// 只做计算，不做任何写入。
func PlanSegments(duration float64, count int, tempDir string) (domain.SegmentPlan, error) {
	if count < 1 {
		return domain.SegmentPlan{}, fmt.Errorf("片段数量必须为正数：%d", count)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return domain.SegmentPlan{}, fmt.Errorf("视频时长无效：%v", duration)
	}
	if tempDir == "" {
		return domain.SegmentPlan{}, fmt.Errorf("临时目录为空")
	}

	segs := make([]domain.Segment, 0, count)
	for i := 0; i < count; i++ {
		segs = append(segs, domain.Segment{
			Index:     i,
			Start:     StartTime(duration, count, i),
			FramePath: filepath.Join(tempDir, FrameName(i)),
		})
	}
	return domain.SegmentPlan{
		Count:           count,
		SegmentDuration: duration / float64(count),
		Segments:        segs,
	}, nil
}

// StartTime 返回第 i 段（0-based）的起点：i * (duration / count)。
// 对 i < count 恒有 StartTime < duration。
func StartTime(duration float64, count, i int) float64 {
	return float64(i) * (duration / float64(count))
}

// FrameName 返回第 i 段（0-based）的帧文件名：segment_<i+1>.jpg。
func FrameName(i int) string {
	return "segment_" + strconv.Itoa(i+1) + ".jpg"
}

// TempDir 是某个视频的抽帧目录：<视频所在目录>/<name>。
// 同一目录下的多个视频共享它，但处理是串行的，每个视频结束后都会整体删除。
func TempDir(f domain.VideoFile, name string) string {
	return filepath.Join(f.Dir, name)
}

// PdfPath 是成品路径：<outputDir 或视频所在目录>/<视频文件名去扩展名>.pdf。
func PdfPath(outputDir string, f domain.VideoFile) string {
	dir := outputDir
	if dir == "" {
		dir = f.Dir
	}
	return filepath.Join(dir, f.Base+".pdf")
}
