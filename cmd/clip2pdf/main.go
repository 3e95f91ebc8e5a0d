package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/John-Robertt/clip2pdf/internal/app/run"
	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/domain"
	"github.com/John-Robertt/clip2pdf/internal/infra/fsx"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && isHelp(args[0]) {
		printUsage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := dispatch(ctx, args)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

func dispatch(ctx context.Context, args []string) int {
	if len(args) == 0 {
		return interactiveCmd(ctx)
	}
	switch args[0] {
	case "run":
		return runCmd(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		return 2
	}
}

func interactiveCmd(ctx context.Context) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	env, err := newRuntimeEnv(ctx, cwd, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误：%v\n", err)
		return 1
	}
	defer env.close()

	return interactive(ctx, os.Stdin, os.Stdout, env)
}

func runCmd(ctx context.Context, args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	env, err := newRuntimeEnv(ctx, cwd, ra.ConfigPath)
	if err != nil {
		emitReport(reportForConfigError(ra, err))
		return 1
	}
	defer env.close()

	cfg, err := config.New(ra.Root, ra.OutputDir, ra.Segments)
	if err != nil {
		emitReport(reportForConfigError(ra, err))
		return 1
	}
	eff := env.effective(cfg)

	progressW, tty := pickProgressWriter()
	var obs run.Observer
	var ui *progressUI
	if tty {
		ui = newProgressUI(progressW, true)
		obs = ui
	}

	rr := run.ExecuteWithObserver(ctx, eff, env.deps, obs)
	if ui != nil {
		ui.stop()
	}

	if err := writeReportFile(eff.ReportPath, rr); err != nil {
		fmt.Fprintf(os.Stderr, "写入报告失败：%v\n", err)
		emitReport(rr)
		return 1
	}

	emitReport(rr)
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

type runArgs struct {
	Root       string
	OutputDir  string
	Segments   string
	ConfigPath string
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{Segments: fmt.Sprint(config.DefaultSegments)}
	rootSet := false

	// value 读取 "--flag v" 或 "--flag=v" 的值。
	value := func(i *int, a, name string) (string, bool, error) {
		switch {
		case a == name:
			if *i+1 >= len(args) {
				return "", true, fmt.Errorf("%s 需要一个值", name)
			}
			*i++
			return args[*i], true, nil
		case strings.HasPrefix(a, name+"="):
			return strings.TrimPrefix(a, name+"="), true, nil
		default:
			return "", false, nil
		}
	}

	for i := 0; i < len(args); i++ {
		a := args[i]

		if v, ok, err := value(&i, a, "--out"); ok {
			if err != nil {
				return runArgs{}, err
			}
			ra.OutputDir = v
			continue
		}
		if v, ok, err := value(&i, a, "--segments"); ok {
			if err != nil {
				return runArgs{}, err
			}
			ra.Segments = v
			continue
		}
		if v, ok, err := value(&i, a, "--config"); ok {
			if err != nil {
				return runArgs{}, err
			}
			if strings.TrimSpace(v) == "" {
				return runArgs{}, fmt.Errorf("--config 不能为空")
			}
			ra.ConfigPath = v
			continue
		}

		if strings.HasPrefix(a, "-") {
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		}
		if rootSet {
			return runArgs{}, fmt.Errorf("重复的目录：%q 与 %q", ra.Root, a)
		}
		ra.Root = a
		rootSet = true
	}

	if !rootSet {
		return runArgs{}, fmt.Errorf("缺少视频目录")
	}
	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  clip2pdf                    交互模式（依次询问视频目录、PDF 保存目录、片段数量）
  clip2pdf run <dir> [--out DIR] [--segments N] [--config FILE]

命令：
  run    非交互运行，结束时输出 RunReport

使用 "clip2pdf run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  clip2pdf run <dir> [--out DIR] [--segments N] [--config FILE]

参数：
  --out       PDF 保存目录（默认保存到视频所在目录）
  --segments  每个视频分割的片段数量，10-1000（默认 10）
  --config    配置文件路径（默认读取当前目录下的 clip2pdf.yaml，不存在则使用默认值）
  -h, --help  显示帮助
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：processed=%d failed=%d\n", rr.Summary.Processed, rr.Summary.Failed)
		printFailures(os.Stderr, rr)
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：processed=%d failed=%d\n", rr.Summary.Processed, rr.Summary.Failed)
}

func printFailures(w io.Writer, rr domain.RunReport) {
	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		key := it.Video
		if key == "" {
			key = "<run>"
		}
		fmt.Fprintf(w, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
	}
}

func reportForConfigError(ra runArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rr := domain.RunReport{
		Root:       ra.Root,
		OutputDir:  ra.OutputDir,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

// writeReportFile 在 report_path 非空时原子写入 RunReport（缩进 JSON）。
func writeReportFile(path string, rr domain.RunReport) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(abs), filepath.Base(abs), b)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
