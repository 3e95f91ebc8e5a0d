package run

import (
	"time"

	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/domain"
)

// Observer 用于把"运行进度/阶段/条目结果"从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 事件按顺序从同一个 goroutine 发出（视频是串行处理的）。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（目前只有 scan）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemStart 在开始处理第 idx 个视频（1-based）之前调用。
	OnItemStart(idx, total int, f domain.VideoFile)
	// OnItemDone 在第 idx 个视频处理结束时调用（成功或失败）。
	OnItemDone(idx, total int, f domain.VideoFile, res domain.ItemResult, dur time.Duration)
}
