package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress 定义快照读写的进度更新接口
type Progress interface {
	Start(totalBytes int64, desc string)
	AddBytes(n int64)
	Finish()
}

const (
	progressWidth = 30
	maxDescLen    = 40
)

// BarProgress 基于 progressbar 渲染单行进度条
type BarProgress struct {
	mu     sync.Mutex
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewBarProgress 创建进度条实例
func NewBarProgress(writer io.Writer) *BarProgress {
	return &BarProgress{writer: writer}
}

func (p *BarProgress) Start(totalBytes int64, desc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if totalBytes <= 0 {
		totalBytes = -1
	}
	w := p.writer
	p.bar = progressbar.NewOptions64(totalBytes,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(shortenPath(desc, maxDescLen)),
		progressbar.OptionSetWidth(progressWidth),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func (p *BarProgress) AddBytes(n int64) {
	if n == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Add64(n)
}

func (p *BarProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}

// NoopProgress 在 --no-progress 或非终端输出时使用
type NoopProgress struct{}

func (n NoopProgress) Start(totalBytes int64, desc string) {}
func (n NoopProgress) AddBytes(delta int64)                {}
func (n NoopProgress) Finish()                             {}

func shortenPath(path string, maxLen int) string {
	clean := strings.NewReplacer("\n", " ", "\r", " ").Replace(path)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	keep := maxLen - 3
	head := keep / 2
	tail := keep - head
	return string(runes[:head]) + "..." + string(runes[len(runes)-tail:])
}
