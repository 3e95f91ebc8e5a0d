package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/John-Robertt/clip2pdf/internal/app/run"
	"github.com/John-Robertt/clip2pdf/internal/config"
	"github.com/John-Robertt/clip2pdf/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 按视频逐行输出处理进度（"正在处理 ... - i/n (xx.xx%)"）。
//
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - keepalive：单个视频耗时很长（片段多/视频大）时定期输出一行，降低等待焦虑
type progressUI struct {
	w            io.Writer
	announceScan bool

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time
	current     string

	total int
	done  int
	ok    int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

// newProgressUI：announceScan=false 时不打印扫描统计（交互模式在问答阶段已经打印过）。
func newProgressUI(w io.Writer, announceScan bool) *progressUI {
	return &progressUI{
		w:                  w,
		announceScan:       announceScan,
		keepaliveThreshold: 15 * time.Second,
		tickerInterval:     5 * time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = time.Now()
	p.lastPrinted = p.startedAt
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		p.total = intField(fields, "files")
		if p.announceScan {
			fmt.Fprintf(p.w, "共找到 %d 个视频文件待处理.\n", p.total)
			p.lastPrinted = time.Now()
		}
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
		p.lastPrinted = time.Now()
	}
}

func (p *progressUI) OnItemStart(idx, total int, f domain.VideoFile) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = f.AbsPath
	// 没有 scan 事件（交互模式传入已扫描的列表）时，从第一个视频开始保活。
	if idx == 1 && !p.tickerStarted {
		p.startTickerLocked()
	}
	fmt.Fprintf(p.w, "正在处理 %s - %d/%d (%s)\n", f.AbsPath, idx, total, percent(idx, total))
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, f domain.VideoFile, res domain.ItemResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total
	p.current = ""

	switch res.Status {
	case domain.StatusProcessed:
		p.ok++
		fmt.Fprintf(p.w, "视频文件 %s 的PDF保存成功\n", f.AbsPath)
	default:
		p.fail++
		fmt.Fprintf(p.w, "处理视频文件 %s 时出错: %s\n", f.AbsPath, res.ErrorMsg)
	}
	p.lastPrinted = time.Now()

	if p.done >= p.total {
		p.stopTickerLocked()
	}
}

// stop 在 run 结束后调用（取消时最后一条 OnItemDone 可能不会到来）。
func (p *progressUI) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
}

func (p *progressUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	stopCh := make(chan struct{})
	p.stopCh = stopCh
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 15 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.current != "" && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d elapsed=%s 当前=%s\n",
						p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)), p.current,
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stopCh:
				return
			}
		}
	}()
}

// percent 与 "i / n * 100" 保留两位小数一致，例如 1/3 -> "33.33%"。
func percent(idx, total int) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(idx)/float64(total)*100)
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
