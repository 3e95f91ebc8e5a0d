package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/John-Robertt/clip2pdf/internal/app/run"
	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/scan"
)

const (
	promptRoot      = "输入包含视频文件的目录路径: "
	promptOutputDir = "输入需要保存PDF的目录（默认保存到视频所在目录，直接按回车跳过）: "
	promptSegments  = "输入要将视频分割成的片段数量 (10-1000): "
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask 打印问题并读取一行（去掉行尾换行）；EOF 视为空回答。
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) {
		// 用户没有回车：补一个换行，后续输出不会接在问题后面。
		fmt.Fprintln(p.out)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// interactive 按"目录 → 统计 → 输出目录 → 片段数量"的顺序问答，然后处理所有视频。
// 任何一个回答不合法都直接结束（不重试）；返回值始终是进程退出码 0。
func interactive(ctx context.Context, in io.Reader, out io.Writer, env *runtimeEnv) int {
	p := newPrompter(in, out)

	rootRaw, err := p.ask(promptRoot)
	if err != nil {
		fmt.Fprintf(out, "错误：读取输入失败：%v\n", err)
		return 0
	}
	root, err := config.ValidateRoot(rootRaw)
	if err != nil {
		printConfigError(out, err)
		return 0
	}

	files, err := scan.ScanVideos(root, []string{env.settings.TempDirName}, env.logger)
	if err != nil {
		fmt.Fprintf(out, "错误：%v\n", err)
		return 0
	}
	fmt.Fprintf(out, "共找到 %d 个视频文件待处理.\n", len(files))
	if len(files) == 0 {
		fmt.Fprintf(out, "（支持的扩展名：%s）\n", strings.Join(scan.VideoExts(), ", "))
	}

	outRaw, err := p.ask(promptOutputDir)
	if err != nil {
		fmt.Fprintf(out, "错误：读取输入失败：%v\n", err)
		return 0
	}
	outputDir, err := config.ValidateOutputDir(outRaw)
	if err != nil {
		printConfigError(out, err)
		return 0
	}

	segRaw, err := p.ask(promptSegments)
	if err != nil {
		fmt.Fprintf(out, "错误：读取输入失败：%v\n", err)
		return 0
	}
	segments, err := config.ParseSegments(segRaw)
	if err != nil {
		printConfigError(out, err)
		return 0
	}

	eff := env.effective(config.Config{Root: root, OutputDir: outputDir, Segments: segments})
	ui := newProgressUI(out, false)
	rr := run.ExecuteFiles(ctx, eff, env.deps, files, ui)
	ui.stop()

	if err := writeReportFile(env.settings.ReportPath, rr); err != nil {
		fmt.Fprintf(out, "写入报告失败：%v\n", err)
	}
	return 0
}

// printConfigError 目录类错误带"错误："前缀，片段数量错误原样输出。
func printConfigError(out io.Writer, err error) {
	if config.Field(err) == "segments" {
		fmt.Fprintln(out, err)
		return
	}
	fmt.Fprintf(out, "错误：%v\n", err)
}
