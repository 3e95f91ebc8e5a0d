package run

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/John-Robertt/clip2pdf/internal/app/planner"
	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/decoder"
	"github.com/John-Robertt/clip2pdf/internal/domain"
	"github.com/John-Robertt/clip2pdf/internal/infra/fsx"
	"github.com/John-Robertt/clip2pdf/internal/infra/imgx"
	"github.com/John-Robertt/clip2pdf/internal/pdfx"
	"github.com/John-Robertt/clip2pdf/internal/sink"
)

// Processor 把单个视频变成一份 PDF。
//
// 约束：
// - 同一时刻只能处理一个视频（同目录的视频共享临时目录名）
// - 任何失败都以 *domain.ProcessingError 返回，不会把 panic 抛出边界
type Processor struct {
	dec         decoder.Decoder
	segments    int
	outputDir   string
	tempDirName string
	pageSize    string
	sink        sink.Sink
	sinkPrefix  string
	logger      *zap.Logger
}

// NewProcessor 装配一个 Processor；snk 与 logger 可为 nil。
func NewProcessor(eff config.EffectiveConfig, dec decoder.Decoder, snk sink.Sink, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	tempDirName := eff.TempDirName
	if tempDirName == "" {
		tempDirName = config.DefaultSettings().TempDirName
	}
	return &Processor{
		dec:         dec,
		segments:    eff.Segments,
		outputDir:   eff.OutputDir,
		tempDirName: tempDirName,
		pageSize:    eff.PageSize,
		sink:        snk,
		sinkPrefix:  eff.Sink.Prefix,
		logger:      logger,
	}
}

// Process 依次执行：打开/探测 → 规划 → 抽帧 → 量尺寸 → 排版 → 写 PDF → 删除临时目录 → 上传（可选）。
func (p *Processor) Process(ctx context.Context, f domain.VideoFile) (art domain.PdfArtifact, err error) {
	stage := domain.StageProbe
	log := p.logger.With(zap.String("video", f.AbsPath))

	fail := func(e error) error {
		return &domain.ProcessingError{Stage: stage, Video: f.AbsPath, Err: e}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fail(fmt.Errorf("panic: %v", r))
		}
	}()

	src, err := p.dec.Open(ctx, f.AbsPath)
	if err != nil {
		return domain.PdfArtifact{}, fail(err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn("关闭视频失败", zap.Error(cerr))
		}
	}()

	job, err := probe(f, src)
	if err != nil {
		return domain.PdfArtifact{}, fail(err)
	}
	log.Debug("视频时长", zap.Float64("duration", job.Duration))

	stage = domain.StagePlan
	tempDir := planner.TempDir(job.File, p.tempDirName)
	plan, err := planner.PlanSegments(job.Duration, p.segments, tempDir)
	if err != nil {
		return domain.PdfArtifact{}, fail(err)
	}

	stage = domain.StageCapture
	if err := fsx.EnsureDir(tempDir); err != nil {
		if fsx.IsPathTypeConflict(err) {
			return domain.PdfArtifact{}, fail(fmt.Errorf("临时目录 %s 被同名文件占用：%w", tempDir, err))
		}
		return domain.PdfArtifact{}, fail(err)
	}
	cleaned := false
	defer func() {
		if cleaned {
			return
		}
		// 失败路径：best-effort 删除，不覆盖原始错误。
		if rerr := fsx.RemoveTree(tempDir); rerr != nil {
			log.Warn("删除临时目录失败", zap.String("dir", tempDir), zap.Error(rerr))
		}
	}()

	for _, seg := range plan.Segments {
		if err := ctx.Err(); err != nil {
			return domain.PdfArtifact{}, fail(err)
		}
		if err := src.CaptureFrame(ctx, seg.Start, seg.FramePath); err != nil {
			return domain.PdfArtifact{}, fail(fmt.Errorf("第 %d 段（%.3fs）：%w", seg.Index+1, seg.Start, err))
		}
		log.Debug("抽帧完成", zap.Int("segment", seg.Index+1), zap.Float64("t", seg.Start))
	}

	stage = domain.StageMeasure
	frames, err := p.measure(plan)
	if err != nil {
		return domain.PdfArtifact{}, fail(err)
	}

	stage = domain.StageCompose
	doc, err := pdfx.Compose(frames, p.pageSize)
	if err != nil {
		return domain.PdfArtifact{}, fail(err)
	}

	stage = domain.StageWrite
	art, err = doc.WriteFile(planner.PdfPath(p.outputDir, job.File))
	if err != nil {
		return domain.PdfArtifact{}, fail(err)
	}
	art.Duration = job.Duration

	stage = domain.StageCleanup
	cleaned = true
	if err := fsx.RemoveTree(tempDir); err != nil {
		return art, fail(err)
	}

	if p.sink != nil {
		stage = domain.StageUpload
		key := sink.Key(p.sinkPrefix, filepath.Base(art.Path))
		remote, err := p.sink.Put(ctx, key, art.Path)
		if err != nil {
			return art, fail(err)
		}
		art.Remote = remote
	}

	log.Info("PDF 已生成",
		zap.String("pdf", art.Path),
		zap.Int("pages", art.Pages),
		zap.Float64("page_width", art.PageWidth),
		zap.Float64("page_height", art.PageHeight),
	)
	return art, nil
}

// probe 把扫描结果与解码器报告的时长合成 VideoJob；时长必须是有限正数。
func probe(f domain.VideoFile, src decoder.Source) (domain.VideoJob, error) {
	d := src.Duration()
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return domain.VideoJob{}, fmt.Errorf("视频时长无效：%v", d)
	}
	return domain.VideoJob{File: f, Duration: d}, nil
}

// measure 只量第一帧；page_size=each 时每帧都量。
func (p *Processor) measure(plan domain.SegmentPlan) ([]domain.FrameFile, error) {
	frames := make([]domain.FrameFile, 0, len(plan.Segments))
	for i, path := range plan.FramePaths() {
		fr := domain.FrameFile{Path: path}
		if i == 0 || p.pageSize == pdfx.SizeEach {
			w, h, err := imgx.FrameSize(path)
			if err != nil {
				return nil, err
			}
			fr.Width, fr.Height = w, h
		}
		frames = append(frames, fr)
	}
	if len(frames) == 0 {
		return nil, errors.New("没有抽到任何帧")
	}
	return frames, nil
}
