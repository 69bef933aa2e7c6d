// Package progress renders apk batch progress as a terminal bar.
package progress

import (
	"io"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/meigma/apk"
)

const descLength = 28

// Bar displays apk.ProgressEvent updates. A disabled Bar ignores updates.
type Bar struct {
	container *mpb.Progress
	bar       *mpb.Bar

	mu          sync.Mutex
	description string
}

// New creates a bar for total entries writing to w.
// The bar is only drawn when enabled is true and w is a terminal.
func New(w io.Writer, total int, enabled bool) *Bar {
	if !enabled || !isTerminal(w) {
		return &Bar{}
	}
	return newBar(w, total)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

func newBar(w io.Writer, total int) *Bar {
	p := &Bar{}
	p.container = mpb.New(
		mpb.WithOutput(w),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)
	p.bar = p.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				return p.currentDescription()
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.CountersNoUnit("%d/%d", decor.WC{C: decor.DindentRight}),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)
	return p
}

// Update records a progress event. It is safe for concurrent use and can
// be passed directly to apk.WithProgress. Updates to a nil Bar are ignored.
func (p *Bar) Update(ev apk.ProgressEvent) {
	if p == nil || p.bar == nil {
		return
	}
	p.mu.Lock()
	p.description = ev.Name
	p.mu.Unlock()
	p.bar.SetCurrent(int64(ev.FilesDone))
}

// Finish completes the bar and waits for the final render.
func (p *Bar) Finish() {
	if p == nil || p.container == nil {
		return
	}
	p.bar.SetTotal(-1, true)
	p.container.Wait()
}

func (p *Bar) currentDescription() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.description) > descLength {
		return ".." + p.description[len(p.description)-descLength+2:]
	}
	return p.description
}
