package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/domain"
)

func TestParseRunArgs(t *testing.T) {
	ra, err := parseRunArgs([]string{"videos", "--out", "pdfs", "--segments=25", "--config", "c.yaml"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	want := runArgs{Root: "videos", OutputDir: "pdfs", Segments: "25", ConfigPath: "c.yaml"}
	if ra != want {
		t.Fatalf("期望 %+v，实际 %+v", want, ra)
	}
}

func TestParseRunArgs_DefaultSegments(t *testing.T) {
	ra, err := parseRunArgs([]string{"videos"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ra.Segments != "10" || ra.OutputDir != "" {
		t.Fatalf("默认值不符合预期：%+v", ra)
	}
}

func TestParseRunArgs_Errors(t *testing.T) {
	cases := [][]string{
		{},
		{"a", "b"},
		{"a", "--out"},
		{"a", "--segments"},
		{"a", "--config="},
		{"a", "--apply"},
	}
	for _, args := range cases {
		if _, err := parseRunArgs(args); err == nil {
			t.Fatalf("%v 期望参数错误", args)
		}
	}
}

func TestReportForConfigError(t *testing.T) {
	_, err := config.New(filepath.Join(t.TempDir(), "missing"), "", "10")
	rr := reportForConfigError(runArgs{Root: "missing"}, err)

	if rr.Summary.Failed != 1 || len(rr.Items) != 1 {
		t.Fatalf("期望一条失败：%+v", rr)
	}
	if rr.Items[0].ErrorCode != config.ErrCodeInvalidRoot || rr.Items[0].Video != "" {
		t.Fatalf("item 不符合预期：%+v", rr.Items[0])
	}

	rr = reportForConfigError(runArgs{}, errors.New("boom"))
	if rr.Items[0].ErrorCode != domain.ErrCodeConfigInvalid {
		t.Fatalf("非结构化错误应归为 config_invalid：%+v", rr.Items[0])
	}
}

func TestWriteReportFile(t *testing.T) {
	if err := writeReportFile("", domain.RunReport{}); err != nil {
		t.Fatalf("report_path 为空时应跳过：%v", err)
	}

	p := filepath.Join(t.TempDir(), "reports", "run.json")
	rr := domain.RunReport{RunID: "r1", Segments: 10}
	rr.Finalize()
	if err := writeReportFile(p, rr); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("读取报告失败：%v", err)
	}
	var got domain.RunReport
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("报告不是合法 JSON：%v", err)
	}
	if got.RunID != "r1" || got.Items == nil {
		t.Fatalf("报告内容不符合预期：%s", b)
	}
}
