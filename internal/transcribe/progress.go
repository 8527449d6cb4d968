package transcribe

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
)

// Progress bar rendering
const (
	BarWidth = 30
	BarFull  = "#"
	BarEmpty = "-"
)

// Progress tracks transcription progress of one file in seconds of media.
// When the duration is unknown the bar completes on the last segment's end.
type Progress struct {
	mu        sync.Mutex
	w         io.Writer
	name      string
	slot      int
	total     float64
	done      float64
	lastShown float64
	lastPct   int
}

// NewProgress creates a bar for name; total <= 0 means unknown duration
func NewProgress(w io.Writer, name string, slot int, total float64) *Progress {
	if w == nil {
		w = io.Discard
	}
	return &Progress{w: w, name: name, slot: slot, total: math.Max(total, 0), lastPct: -1}
}

// Advance records a segment ending at segmentEnd
func (p *Progress) Advance(segmentEnd float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inc := math.Max(0, segmentEnd-p.lastShown)
	p.lastShown = math.Max(p.lastShown, segmentEnd)
	p.done += inc
	if p.total > 0 {
		p.done = math.Min(p.done, p.total)
	}
	p.renderLocked(false)
}

// Finish completes the bar. With an unknown duration the last segment's end
// becomes the total.
func (p *Progress) Finish(lastEnd float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total <= 0 && lastEnd > 0 {
		p.total = lastEnd
		p.done = lastEnd
	}
	p.renderLocked(true)
}

// Percent returns progress in 0..100, 0 while the duration is unknown
func (p *Progress) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percentLocked()
}

// Done returns the seconds of media transcribed so far
func (p *Progress) Done() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *Progress) percentLocked() float64 {
	if p.total <= 0 {
		return 0
	}
	return math.Min(100, p.done/p.total*100)
}

func (p *Progress) renderLocked(force bool) {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "[%d] %s  %.0fs\n", p.slot, p.name, p.done)
		return
	}

	pct := p.percentLocked()
	if !force && int(pct) == p.lastPct {
		return
	}
	p.lastPct = int(pct)

	filled := int(pct / 100 * BarWidth)
	bar := strings.Repeat(BarFull, filled) + strings.Repeat(BarEmpty, BarWidth-filled)
	fmt.Fprintf(p.w, "[%d] %s [%s] %5.1f%% %.0f/%.0fs\n", p.slot, p.name, bar, pct, p.done, p.total)
}

// SlotAllocator hands out display slots to concurrent transcriptions
type SlotAllocator struct {
	mu    sync.Mutex
	inUse map[int]bool
}

// NewSlotAllocator creates an empty allocator
func NewSlotAllocator() *SlotAllocator {
	return &SlotAllocator{inUse: make(map[int]bool)}
}

// Acquire returns the lowest free slot
func (a *SlotAllocator) Acquire() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	slot := 0
	for a.inUse[slot] {
		slot++
	}
	a.inUse[slot] = true
	return slot
}

// Release frees slot for reuse
func (a *SlotAllocator) Release(slot int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, slot)
}

// InUse returns the number of slots currently held
func (a *SlotAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.inUse)
}
