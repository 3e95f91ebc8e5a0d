package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/John-Robertt/clip2pdf/internal/infra/httpx"
	"github.com/John-Robertt/clip2pdf/internal/pdfx"
)

// DefaultSettingsFile 是工作目录下可选的配置文件名。
const DefaultSettingsFile = "clip2pdf.yaml"

// EnvPrefix 是环境变量前缀：CLIP2PDF_DECODER、CLIP2PDF_SINK_BUCKET ……
const EnvPrefix = "CLIP2PDF"

const (
	SinkNone  = "none"
	SinkS3    = "s3"
	SinkMinIO = "minio"
)

// Settings 是不通过问答暴露的"高级"配置：解码后端、临时目录名、日志、上传等。
type Settings struct {
	Decoder     string       `mapstructure:"decoder" json:"decoder"`
	FFmpegPath  string       `mapstructure:"ffmpeg_path" json:"ffmpeg_path"`
	FFprobePath string       `mapstructure:"ffprobe_path" json:"ffprobe_path"`
	JPEGQuality int          `mapstructure:"jpeg_quality" json:"jpeg_quality"`
	TempDirName string       `mapstructure:"temp_dir_name" json:"temp_dir_name"`
	PageSize    string       `mapstructure:"page_size" json:"page_size"`
	LogLevel    string       `mapstructure:"log_level" json:"log_level"`
	LogFormat   string       `mapstructure:"log_format" json:"log_format"`
	ReportPath  string       `mapstructure:"report_path" json:"report_path"`
	Sink        SinkSettings `mapstructure:"sink" json:"sink"`
}

// SinkSettings 描述成品 PDF 的远端上传目标（可选）。
type SinkSettings struct {
	Type      string `mapstructure:"type" json:"type"`
	Bucket    string `mapstructure:"bucket" json:"bucket"`
	Prefix    string `mapstructure:"prefix" json:"prefix"`
	Region    string `mapstructure:"region" json:"region"`
	Endpoint  string `mapstructure:"endpoint" json:"endpoint"`
	AccessKey string `mapstructure:"access_key" json:"-"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	UseSSL    bool   `mapstructure:"use_ssl" json:"use_ssl"`
	ProxyURL  string `mapstructure:"proxy_url" json:"proxy_url"`
}

// EffectiveConfig 是问答/命令行输入与 Settings 合并后的最终配置（流水线只消费它）。
type EffectiveConfig struct {
	Config
	Settings
}

// DefaultSettings 返回内置默认值（与原始行为一致：ffmpeg 抽帧、ClipTemp、页面取第一帧尺寸）。
func DefaultSettings() Settings {
	return Settings{
		Decoder:     "ffmpeg",
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		JPEGQuality: 90,
		TempDirName: "ClipTemp",
		PageSize:    pdfx.SizeFirst,
		LogLevel:    "warn",
		LogFormat:   "console",
		Sink:        SinkSettings{Type: SinkNone},
	}
}

// LoadSettings 读取配置：默认值 < 配置文件 < 环境变量。
//
// - path 非空：必须存在且可解析
// - path 为空：尝试 <cwd>/clip2pdf.yaml（可选，不存在不报错）
//
// 返回值 used 是实际读取的配置文件路径（没有读取则为空）。
func LoadSettings(cwd, path string) (s Settings, used string, err error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case strings.TrimSpace(path) != "":
		used = absCleanFrom(cwd, path)
		if _, err := os.Stat(used); err != nil {
			return Settings{}, "", &Error{Code: ErrCodeSettingsInvalid, Path: used, Err: err}
		}
	default:
		candidate := filepath.Join(cwd, DefaultSettingsFile)
		if _, err := os.Stat(candidate); err == nil {
			used = candidate
		} else if !errors.Is(err, os.ErrNotExist) {
			return Settings{}, "", &Error{Code: ErrCodeSettingsInvalid, Path: candidate, Err: err}
		}
	}

	if used != "" {
		v.SetConfigFile(used)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, "", &Error{Code: ErrCodeSettingsInvalid, Path: used, Err: err}
		}
	}

	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, "", &Error{Code: ErrCodeSettingsInvalid, Path: used, Err: err}
	}
	normalize(&s)
	if err := s.Validate(); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = used
		}
		return Settings{}, "", err
	}
	return s, used, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultSettings()
	v.SetDefault("decoder", d.Decoder)
	v.SetDefault("ffmpeg_path", d.FFmpegPath)
	v.SetDefault("ffprobe_path", d.FFprobePath)
	v.SetDefault("jpeg_quality", d.JPEGQuality)
	v.SetDefault("temp_dir_name", d.TempDirName)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("report_path", d.ReportPath)
	// sink.* 也必须有默认值，AutomaticEnv 才能在 Unmarshal 时覆盖到嵌套字段。
	v.SetDefault("sink.type", d.Sink.Type)
	v.SetDefault("sink.bucket", "")
	v.SetDefault("sink.prefix", "")
	v.SetDefault("sink.region", "")
	v.SetDefault("sink.endpoint", "")
	v.SetDefault("sink.access_key", "")
	v.SetDefault("sink.secret_key", "")
	v.SetDefault("sink.use_ssl", false)
	v.SetDefault("sink.proxy_url", "")
}

func normalize(s *Settings) {
	s.Decoder = strings.ToLower(strings.TrimSpace(s.Decoder))
	s.TempDirName = strings.TrimSpace(s.TempDirName)
	s.PageSize = strings.ToLower(strings.TrimSpace(s.PageSize))
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))
	s.ReportPath = strings.TrimSpace(s.ReportPath)
	s.Sink.Type = strings.ToLower(strings.TrimSpace(s.Sink.Type))
	if s.Sink.Type == "" {
		s.Sink.Type = SinkNone
	}
	s.Sink.Prefix = strings.Trim(strings.TrimSpace(s.Sink.Prefix), "/")
}

// Validate 校验 Settings 的每个字段；Field 使用配置文件中的 key。
func (s Settings) Validate() error {
	invalid := func(field string, format string, args ...any) error {
		return &Error{Code: ErrCodeSettingsInvalid, Field: field, Err: fmt.Errorf(format, args...)}
	}

	if s.Decoder == "" {
		return invalid("decoder", "不能为空")
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return invalid("jpeg_quality", "必须在 1 到 100 之间，实际是 %d", s.JPEGQuality)
	}
	if s.TempDirName == "" || s.TempDirName == "." || s.TempDirName == ".." ||
		strings.ContainsAny(s.TempDirName, `/\`) {
		return invalid("temp_dir_name", "必须是单层目录名，实际是 %q", s.TempDirName)
	}
	if !pdfx.ValidSizing(s.PageSize) {
		return invalid("page_size", "只能是 first 或 each，实际是 %q", s.PageSize)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level", "只能是 debug/info/warn/error，实际是 %q", s.LogLevel)
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return invalid("log_format", "只能是 console 或 json，实际是 %q", s.LogFormat)
	}

	switch s.Sink.Type {
	case SinkNone:
	case SinkS3:
		if strings.TrimSpace(s.Sink.Bucket) == "" {
			return invalid("sink.bucket", "s3 需要 bucket")
		}
		if strings.TrimSpace(s.Sink.Region) == "" {
			return invalid("sink.region", "s3 需要 region")
		}
	case SinkMinIO:
		if strings.TrimSpace(s.Sink.Bucket) == "" {
			return invalid("sink.bucket", "minio 需要 bucket")
		}
		if strings.TrimSpace(s.Sink.Endpoint) == "" {
			return invalid("sink.endpoint", "minio 需要 endpoint")
		}
	default:
		return invalid("sink.type", "只能是 none/s3/minio，实际是 %q", s.Sink.Type)
	}
	if s.Sink.Type != SinkNone && (s.Sink.AccessKey == "") != (s.Sink.SecretKey == "") {
		return invalid("sink.access_key", "access_key 与 secret_key 必须同时提供")
	}
	if strings.TrimSpace(s.Sink.ProxyURL) != "" {
		if _, err := httpx.ParseProxyURL(s.Sink.ProxyURL); err != nil {
			return invalid("sink.proxy_url", "%v", err)
		}
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}
