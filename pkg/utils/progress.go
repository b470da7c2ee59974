package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressTracker 进度跟踪器，输出到标准错误
type ProgressTracker struct {
	bar       *progressbar.ProgressBar
	out       io.Writer
	startTime time.Time
	title     string
	steps     int
	current   int
	done      bool
}

// NewProgressTracker 创建一个新的进度跟踪器
func NewProgressTracker(title string, steps int) *ProgressTracker {
	return newProgressTracker(os.Stderr, title, steps)
}

func newProgressTracker(out io.Writer, title string, steps int) *ProgressTracker {
	pt := &ProgressTracker{
		out:       out,
		startTime: time.Now(),
		title:     title,
		steps:     steps,
	}
	pt.bar = progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", title)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			pt.done = true
			fmt.Fprintln(out)
		}),
	)
	return pt
}

// Step 进度前进一步
func (pt *ProgressTracker) Step(description string) {
	pt.current++
	elapsed := time.Since(pt.startTime)
	descWithTime := fmt.Sprintf("%s (%s)", description, formatDuration(elapsed))
	pt.bar.Describe(fmt.Sprintf("[cyan]%s[reset] - %s", pt.title, descWithTime))
	_ = pt.bar.Add(1)
}

// Complete 结束进度条；提前结束时保留当前进度并换行
func (pt *ProgressTracker) Complete() {
	if pt.done {
		return
	}
	pt.done = true
	if pt.current < pt.steps {
		pt.bar.Describe(fmt.Sprintf("[cyan]%s[reset] - 已中止 %d/%d (%s)",
			pt.title, pt.current, pt.steps, formatDuration(time.Since(pt.startTime))))
	}
	fmt.Fprintln(pt.out)
}

// formatDuration 格式化持续时间
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	parts := []string{}
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 || h > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))

	return strings.Join(parts, "")
}

// PrintResult 打印运行结果
func PrintResult(documents, pages int, elapsed time.Duration) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "✅ 处理完成!")
	fmt.Fprintf(os.Stderr, "📂 处理文档: %d\n", documents)
	fmt.Fprintf(os.Stderr, "📄 处理页数: %d\n", pages)
	fmt.Fprintf(os.Stderr, "⏱️ 处理时间: %s\n", formatDuration(elapsed))
	fmt.Fprintln(os.Stderr)
}

// IsTerminal 检查标准错误是否连接到终端
func IsTerminal() bool {
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
