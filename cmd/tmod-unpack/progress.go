package main

import (
	"fmt"
	"io"
	"sync"

	tmod "github.com/campbellcole/tmod-unpacker"
)

// progressPrinter renders one status line per phase on w.
// Updates from concurrent workers may arrive out of order, so only counts
// that move forward are printed.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	started bool
	stage   tmod.ProgressStage
	done    int
	pending bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w}
}

func (p *progressPrinter) update(ev tmod.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || ev.Stage != p.stage {
		p.endLine()
		p.started = true
		p.stage = ev.Stage
		p.done = 0
	}
	if ev.FilesDone <= p.done {
		return
	}
	p.done = ev.FilesDone

	label, unit := "Reading", "entries"
	if ev.Stage == tmod.StageExtracting {
		label, unit = "Extracting", "files"
	}
	fmt.Fprintf(p.w, "\r%-10s %d/%d %s", label, ev.FilesDone, ev.FilesTotal, unit)
	p.pending = true
	if ev.FilesDone == ev.FilesTotal {
		p.endLine()
	}
}

// Write passes log output through to w, ending an open progress line
// first. The next update redraws the line.
func (p *progressPrinter) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLine()
	return p.w.Write(b)
}

// finish terminates a line left open by an early failure.
func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endLine()
}

func (p *progressPrinter) endLine() {
	if p.pending {
		fmt.Fprintln(p.w)
		p.pending = false
	}
}
