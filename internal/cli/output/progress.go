package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar reports the progress of an archive transfer.
type ProgressBar struct {
	w       io.Writer
	title   string
	total   int64
	current int64
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a progress bar. A total of zero or less shows
// only the byte count.
func NewProgressBar(w io.Writer, title string, total int64) *ProgressBar {
	return &ProgressBar{w: w, title: title, total: total, width: 30}
}

// Write counts p as transferred, so the bar can sit behind io.TeeReader
// or io.MultiWriter.
func (p *ProgressBar) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += int64(len(b))
	p.render()
	return len(b), nil
}

// Current returns the bytes counted so far.
func (p *ProgressBar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish ends the bar's line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, FormatBytes(p.current))
		return
	}

	ratio := float64(p.current) / float64(p.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(float64(p.width) * ratio)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", p.width-filled)
	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%s/%s)",
		p.title, bar, ratio*100, FormatBytes(p.current), FormatBytes(p.total))
}

// FormatBytes renders a byte count with a binary unit, 3.0 MiB style.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
