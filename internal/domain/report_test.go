package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		Root:       "/abs/path",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Video: "b/2.mp4", Status: StatusFailed},
			{Video: "", Status: StatusFailed}, // 扫描失败等合成项
			{Video: "a/1.mkv", Status: StatusProcessed},
		},
	}

	r.Finalize()

	if r.Items[0].Video != "a/1.mkv" || r.Items[1].Video != "b/2.mp4" || r.Items[2].Video != "" {
		t.Fatalf("items 排序不符合契约：%v", []string{r.Items[0].Video, r.Items[1].Video, r.Items[2].Video})
	}
	if r.Summary.Processed != 1 || r.Summary.Failed != 2 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestRunReport_MarshalJSON_EmptyItems(t *testing.T) {
	b, err := json.Marshal(RunReport{})
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte("\"items\":[]")) {
		t.Fatalf("items 应输出为 []：%s", string(b))
	}
}

func TestErrorCode_ByStage(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("wrap: %w", &ProcessingError{Stage: StageCapture, Video: "/v.mp4", Err: cause})

	if got := ErrorCode(err); got != ErrCodeCaptureFailed {
		t.Fatalf("期望 %q，实际 %q", ErrCodeCaptureFailed, got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("ProcessingError 应可 Unwrap 到原因")
	}
	if got := ErrorCode(cause); got != ErrCodeIOFailed {
		t.Fatalf("非 ProcessingError 应映射为 %q，实际 %q", ErrCodeIOFailed, got)
	}
}

func TestSegmentPlan_FramePaths(t *testing.T) {
	p := SegmentPlan{Count: 2, Segments: []Segment{
		{Index: 0, FramePath: "/t/segment_1.jpg"},
		{Index: 1, FramePath: "/t/segment_2.jpg"},
	}}
	got := p.FramePaths()
	if len(got) != 2 || got[0] != "/t/segment_1.jpg" || got[1] != "/t/segment_2.jpg" {
		t.Fatalf("FramePaths 不符合预期：%v", got)
	}
}
