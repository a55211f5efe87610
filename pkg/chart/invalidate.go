package chart

import (
	"sync"

	"github.com/StudioSol/set"
)

// Frame is the coalesced dirty state a renderer drains once per
// animation frame. Many mutations collapse into one Frame, which is
// the backpressure mechanism against high-frequency updates.
type Frame struct {
	// Panes lists the dirty pane ids in invalidation order.
	Panes []int64
	// TimeScale marks the horizontal scale as needing re-read.
	TimeScale bool
	// Full requests a complete re-layout (resize, series add/remove).
	Full bool
}

// Empty reports whether the frame carries no work.
func (f Frame) Empty() bool {
	return !f.Full && !f.TimeScale && len(f.Panes) == 0
}

// Invalidation accumulates dirty flags between renderer frames. It is
// the only part of the engine touched from the render loop, so it
// carries its own lock.
type Invalidation struct {
	mu        sync.Mutex
	panes     *set.LinkedHashSetINT64
	timeScale bool
	full      bool
}

// NewInvalidation creates an empty dirty mask.
func NewInvalidation() *Invalidation {
	return &Invalidation{panes: set.NewLinkedHashSetINT64()}
}

// InvalidatePane marks one pane dirty.
func (inv *Invalidation) InvalidatePane(paneID int64) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.panes.Add(paneID)
}

// InvalidateTimeScale marks the horizontal scale dirty.
func (inv *Invalidation) InvalidateTimeScale() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.timeScale = true
}

// InvalidateFull requests a complete re-layout.
func (inv *Invalidation) InvalidateFull() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.full = true
}

// Drain returns the accumulated dirty state and resets the mask.
func (inv *Invalidation) Drain() Frame {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	frame := Frame{
		TimeScale: inv.timeScale,
		Full:      inv.full,
	}
	for id := range inv.panes.Iter() {
		frame.Panes = append(frame.Panes, id)
	}

	inv.panes = set.NewLinkedHashSetINT64()
	inv.timeScale = false
	inv.full = false

	return frame
}
