package domain

import (
	"errors"
	"fmt"
)

// 单个视频处理阶段。
const (
	StageProbe   = "probe"
	StagePlan    = "plan"
	StageCapture = "capture"
	StageMeasure = "measure"
	StageCompose = "compose"
	StageWrite   = "write"
	StageUpload  = "upload"
	StageCleanup = "cleanup"
)

// ProcessingError 是单个视频处理失败的结构化错误：失败阶段 + 视频路径 + 原因。
type ProcessingError struct {
	Stage string
	Video string
	Err   error
}

func (e *ProcessingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s 阶段失败", e.Stage)
	}
	return fmt.Sprintf("%s 阶段失败：%v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// ErrorCode 把 ProcessingError 的阶段映射为 report 中的 error_code。
// 非 ProcessingError 一律视为 io_failed。
func ErrorCode(err error) string {
	var pe *ProcessingError
	if !errors.As(err, &pe) {
		return ErrCodeIOFailed
	}
	switch pe.Stage {
	case StageProbe:
		return ErrCodeProbeFailed
	case StagePlan:
		return ErrCodePlanFailed
	case StageCapture:
		return ErrCodeCaptureFailed
	case StageMeasure:
		return ErrCodeMeasureFailed
	case StageCompose:
		return ErrCodeComposeFailed
	case StageWrite:
		return ErrCodeWriteFailed
	case StageUpload:
		return ErrCodeUploadFailed
	case StageCleanup:
		return ErrCodeCleanupFailed
	default:
		return ErrCodeIOFailed
	}
}
