package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/John-Robertt/clip2pdf/internal/infra/fsx"
)

const (
	// ErrCodeInvalidRoot 表示视频根目录不存在或不是目录。
	ErrCodeInvalidRoot = "invalid_root"
	// ErrCodeInvalidOutputDir 表示给出了输出目录但它不是一个已存在的目录。
	ErrCodeInvalidOutputDir = "invalid_output_dir"
	// ErrCodeInvalidSegments 表示片段数量不是整数或不在 [MinSegments, MaxSegments]。
	ErrCodeInvalidSegments = "invalid_segments"
	// ErrCodeSettingsInvalid 表示配置文件/环境变量无法读取、解析，或字段不合法。
	ErrCodeSettingsInvalid = "settings_invalid"
)

const (
	MinSegments = 10
	MaxSegments = 1000

	// DefaultSegments 只用于非交互模式（run 子命令未给 --segments 时）。
	DefaultSegments = 10
)

// Config 是一次 run 的输入（来自交互问答或命令行），构造时已完成校验。
type Config struct {
	Root      string // clean + absolute
	OutputDir string // 空表示与视频同目录
	Segments  int
}

// Error 是配置阶段的结构化错误：哪个字段、为什么。
type Error struct {
	Code  string
	Field string
	Value string
	Path  string // 配置文件路径（仅 settings_invalid）
	Err   error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInvalidRoot, ErrCodeInvalidOutputDir:
		return fmt.Sprintf("%s 不是一个有效的目录.", e.Value)
	case ErrCodeInvalidSegments:
		if e.Err != nil {
			return fmt.Sprintf("片段数量必须是 %d 到 %d 之间的整数，实际输入 %q.", MinSegments, MaxSegments, e.Value)
		}
		return fmt.Sprintf("片段数量必须在%d到%d之间.", MinSegments, MaxSegments)
	case ErrCodeSettingsInvalid:
		where := "配置"
		if e.Path != "" {
			where = fmt.Sprintf("配置文件 %q", e.Path)
		}
		if e.Field != "" {
			return fmt.Sprintf("%s 无效：%s：%v", where, e.Field, e.Err)
		}
		return fmt.Sprintf("%s 无效：%v", where, e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Field 从 error 中提取出错字段；若不是 *Error 则返回空串。
func Field(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// New 依次校验 root、outputDir、segments，并返回规范化后的 Config。
// 任何一项不合法都直接返回（不做重试、不做回退）。
func New(root, outputDir, segmentsRaw string) (Config, error) {
	r, err := ValidateRoot(root)
	if err != nil {
		return Config{}, err
	}
	out, err := ValidateOutputDir(outputDir)
	if err != nil {
		return Config{}, err
	}
	n, err := ParseSegments(segmentsRaw)
	if err != nil {
		return Config{}, err
	}
	return Config{Root: r, OutputDir: out, Segments: n}, nil
}

// Validate 校验已构造的 Config（用于程序化构造的场景）。
func (c Config) Validate() error {
	if _, err := ValidateRoot(c.Root); err != nil {
		return err
	}
	if _, err := ValidateOutputDir(c.OutputDir); err != nil {
		return err
	}
	if c.Segments < MinSegments || c.Segments > MaxSegments {
		return &Error{Code: ErrCodeInvalidSegments, Field: "segments", Value: strconv.Itoa(c.Segments)}
	}
	return nil
}

// ValidateRoot 要求 root 是已存在的目录，返回 clean + absolute 路径。
func ValidateRoot(root string) (string, error) {
	raw := strings.TrimSpace(root)
	if raw == "" || !fsx.IsDir(raw) {
		return "", &Error{Code: ErrCodeInvalidRoot, Field: "root", Value: raw}
	}
	return absClean(raw), nil
}

// ValidateOutputDir 允许空串（表示与视频同目录）；非空时必须是已存在的目录。
func ValidateOutputDir(dir string) (string, error) {
	raw := strings.TrimSpace(dir)
	if raw == "" {
		return "", nil
	}
	if !fsx.IsDir(raw) {
		return "", &Error{Code: ErrCodeInvalidOutputDir, Field: "output_dir", Value: raw}
	}
	return absClean(raw), nil
}

// ParseSegments 解析片段数量，要求 MinSegments <= n <= MaxSegments。
func ParseSegments(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &Error{Code: ErrCodeInvalidSegments, Field: "segments", Value: s, Err: err}
	}
	if n < MinSegments || n > MaxSegments {
		return 0, &Error{Code: ErrCodeInvalidSegments, Field: "segments", Value: s}
	}
	return n, nil
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
