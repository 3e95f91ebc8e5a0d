package run

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/decoder"
	"github.com/John-Robertt/clip2pdf/internal/domain"
	"github.com/John-Robertt/clip2pdf/internal/scan"
	"github.com/John-Robertt/clip2pdf/internal/sink"
)

// Deps 是 run 依赖的外部组件（由 cmd 层装配）。
type Deps struct {
	Decoders decoder.Registry
	Sink     sink.Sink   // 可为 nil：不上传
	Logger   *zap.Logger // 可为 nil
}

// Execute 执行一次 run，并返回对外稳定的 RunReport。
// 单个视频失败只记录为一条 failed item，不影响后续视频。
func Execute(ctx context.Context, eff config.EffectiveConfig, deps Deps) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, deps, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, deps Deps, obs Observer) domain.RunReport {
	return execute(ctx, eff, deps, nil, obs)
}

// ExecuteFiles 处理调用方已经扫描好的 files（例如交互模式先统计再询问），不再重新扫描 root。
func ExecuteFiles(ctx context.Context, eff config.EffectiveConfig, deps Deps, files []domain.VideoFile, obs Observer) domain.RunReport {
	if files == nil {
		files = []domain.VideoFile{}
	}
	return execute(ctx, eff, deps, files, obs)
}

// execute：files 为 nil 时先扫描 eff.Root。
func execute(ctx context.Context, eff config.EffectiveConfig, deps Deps, files []domain.VideoFile, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		RunID:     uuid.NewString(),
		Root:      eff.Root,
		OutputDir: eff.OutputDir,
		Segments:  eff.Segments,
		Decoder:   eff.Decoder,
		StartedAt: started,
		Items:     make([]domain.ItemResult, 0, 16),
	}
	logger = logger.With(zap.String("run_id", rr.RunID))

	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	if err := eff.Config.Validate(); err != nil {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeConfigInvalid, err.Error()))
		return finish()
	}

	dec, ok := deps.Decoders.Get(eff.Decoder)
	if !ok {
		rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeConfigInvalid,
			fmt.Sprintf("未知的 decoder %q（可选：%s）", eff.Decoder, strings.Join(deps.Decoders.Names(), ", "))))
		return finish()
	}

	if files == nil {
		scanStarted := time.Now()
		scanned, err := scan.ScanVideos(eff.Root, []string{eff.TempDirName}, logger)
		if err != nil {
			rr.Items = append(rr.Items, syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("扫描失败：%v", err)))
			return finish()
		}
		files = scanned
		if obs != nil {
			obs.OnPhaseDone("scan", map[string]any{"files": len(files)}, time.Since(scanStarted))
		}
		logger.Debug("扫描完成", zap.String("root", eff.Root), zap.Int("files", len(files)))
	}

	proc := NewProcessor(eff, dec, deps.Sink, logger)

	total := len(files)
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("运行被取消，剩余视频不再处理", zap.Int("remaining", total-i), zap.Error(err))
			break
		}

		if obs != nil {
			obs.OnItemStart(i+1, total, f)
		}
		oneStarted := time.Now()
		art, err := proc.Process(ctx, f)
		res := itemResult(f, art, err)
		if err != nil {
			logger.Error("处理视频失败",
				zap.String("video", f.AbsPath),
				zap.String("stage", stageOf(err)),
				zap.Error(err),
			)
		}
		rr.Items = append(rr.Items, res)
		if obs != nil {
			obs.OnItemDone(i+1, total, f, res, time.Since(oneStarted))
		}
	}

	return finish()
}

func itemResult(f domain.VideoFile, art domain.PdfArtifact, err error) domain.ItemResult {
	res := domain.ItemResult{
		Video:      f.RelPath,
		Status:     domain.StatusProcessed,
		PDF:        art.Path,
		Remote:     art.Remote,
		Pages:      art.Pages,
		PageWidth:  art.PageWidth,
		PageHeight: art.PageHeight,
		Duration:   art.Duration,
	}
	if res.Video == "" {
		res.Video = f.AbsPath
	}
	if err != nil {
		res.Status = domain.StatusFailed
		res.ErrorCode = domain.ErrorCode(err)
		res.ErrorMsg = err.Error()
	}
	return res
}

func stageOf(err error) string {
	var pe *domain.ProcessingError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Video:     "",
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}
