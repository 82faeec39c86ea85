package progress

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Tracker shows a per-phase progress bar on stderr. A disabled tracker is a
// no-op, so callers never need to check.
type Tracker struct {
	mu      sync.Mutex
	writer  io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

func New(enabled bool) *Tracker {
	return NewWithWriter(os.Stderr, enabled)
}

func NewWithWriter(w io.Writer, enabled bool) *Tracker {
	return &Tracker{writer: w, enabled: enabled}
}

// StartPhase replaces any running bar. A total of -1 shows a spinner.
func (p *Tracker) StartPhase(phase string, total int) {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Finish()
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionSetDescription(phase),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Increment may be called from any goroutine.
func (p *Tracker) Increment() {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *Tracker) Complete() {
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
