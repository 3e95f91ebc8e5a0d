package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/clip2pdf/internal/app/run"
	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/decoder"
	"github.com/John-Robertt/clip2pdf/internal/infra/ffmpeg"
	"github.com/John-Robertt/clip2pdf/internal/infra/mpegx"
	"github.com/John-Robertt/clip2pdf/internal/logx"
	"github.com/John-Robertt/clip2pdf/internal/sink"
)

// runtimeEnv 是一次进程内共享的装配结果：settings + logger + 外部依赖。
type runtimeEnv struct {
	settings     config.Settings
	settingsPath string
	logger       *zap.Logger
	deps         run.Deps
}

func newRuntimeEnv(ctx context.Context, cwd, configPath string) (*runtimeEnv, error) {
	s, used, err := config.LoadSettings(cwd, configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logx.New(s.LogLevel, s.LogFormat)
	if err != nil {
		return nil, &config.Error{Code: config.ErrCodeSettingsInvalid, Field: "log_level", Path: used, Err: err}
	}

	reg, err := decoder.NewRegistry(
		ffmpeg.New(s.FFmpegPath, s.FFprobePath, s.JPEGQuality, logger.Named("ffmpeg")),
		mpegx.New(s.JPEGQuality, logger.Named("mpeg")),
	)
	if err != nil {
		return nil, fmt.Errorf("初始化 decoder registry 失败：%w", err)
	}
	if _, ok := reg.Get(s.Decoder); !ok {
		return nil, &config.Error{
			Code:  config.ErrCodeSettingsInvalid,
			Field: "decoder",
			Path:  used,
			Err:   fmt.Errorf("只能是 %s，实际是 %q", strings.Join(reg.Names(), " 或 "), s.Decoder),
		}
	}

	snk, err := sink.New(ctx, s.Sink)
	if err != nil {
		return nil, &config.Error{Code: config.ErrCodeSettingsInvalid, Field: "sink", Path: used, Err: err}
	}

	if used != "" {
		logger.Debug("已加载配置文件", zap.String("file", used))
	}
	return &runtimeEnv{
		settings:     s,
		settingsPath: used,
		logger:       logger,
		deps:         run.Deps{Decoders: reg, Sink: snk, Logger: logger},
	}, nil
}

func (e *runtimeEnv) effective(cfg config.Config) config.EffectiveConfig {
	return config.EffectiveConfig{Config: cfg, Settings: e.settings}
}

func (e *runtimeEnv) close() {
	_ = e.logger.Sync()
}
