package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusFailed    = "failed"
)

const (
	ErrCodeProbeFailed   = "probe_failed"
	ErrCodePlanFailed    = "plan_failed"
	ErrCodeCaptureFailed = "capture_failed"
	ErrCodeMeasureFailed = "measure_failed"
	ErrCodeComposeFailed = "compose_failed"
	ErrCodeWriteFailed   = "write_failed"
	ErrCodeUploadFailed  = "upload_failed"
	ErrCodeCleanupFailed = "cleanup_failed"
	ErrCodeIOFailed      = "io_failed"
	ErrCodeConfigInvalid = "config_invalid"
)

// RunReport 是一次 run 的汇总（report.json / 非 TTY stdout JSON）。
type RunReport struct {
	RunID     string `json:"run_id"`
	Root      string `json:"root"`
	OutputDir string `json:"output_dir"`
	Segments  int    `json:"segments"`
	Decoder   string `json:"decoder"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// ItemResult 对应一个视频（或一条 run 级合成失败，此时 Video 为空）。
type ItemResult struct {
	Video  string `json:"video"`
	Status string `json:"status"`

	PDF        string  `json:"pdf"`
	Remote     string  `json:"remote,omitempty"`
	Pages      int     `json:"pages"`
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
	Duration   float64 `json:"duration"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 video 字典序；video=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Video
		b := r.Items[j].Video
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 保证 items 为 [] 而不是 null。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Items == nil {
		a.Items = []ItemResult{}
	}
	return json.Marshal(a)
}
