package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressBar displays the progress of a batch of items.
type ProgressBar struct {
	w      io.Writer
	title  string
	total  int
	done   int
	failed int
	width  int
	start  time.Time
	mu     sync.Mutex
}

// NewProgressBar creates a progress bar for total items. A total of 0
// renders a plain counter.
func NewProgressBar(w io.Writer, title string, total int) *ProgressBar {
	return &ProgressBar{
		w:     w,
		title: title,
		total: total,
		width: 30,
		start: time.Now(),
	}
}

// Increment records one finished item.
func (p *ProgressBar) Increment(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if !ok {
		p.failed++
	}
	p.render()
}

// Finish renders the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	rate := 0.0
	if elapsed := time.Since(p.start).Seconds(); elapsed > 0 {
		rate = float64(p.done) / elapsed
	}

	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %d done, %d failed (%.1f/s)", p.title, p.done, p.failed, rate)
		return
	}

	percent := float64(p.done) / float64(p.total)
	if percent > 1 {
		percent = 1
	}
	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% %d/%d, %d failed (%.1f/s)",
		p.title, bar, percent*100, p.done, p.total, p.failed, rate)
}
