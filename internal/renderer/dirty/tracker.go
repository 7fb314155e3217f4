// Package dirty tracks candidate buffer lines invalidated by edits since the
// last frame. The tracker is owned by the frame driver and mutated only on
// the render thread; duplicates are removed lazily when the lines are taken.
package dirty

import "sort"

// Tracker accumulates dirty buffer line indices between frames.
//
// Invariants: TakeInViewport returns a sorted, unique slice and leaves the
// tracker empty (one-shot consumption).
type Tracker struct {
	lines []int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Mark records a single dirty line. Negative indices are ignored.
func (t *Tracker) Mark(line int) {
	if line < 0 {
		return
	}
	t.lines = append(t.lines, line)
}

// MarkRange records the half-open line range [start, end). Inverted or
// negative ranges are a no-op.
func (t *Tracker) MarkRange(start, end int) {
	if start < 0 || end <= start {
		return
	}
	for l := start; l < end; l++ {
		t.lines = append(t.lines, l)
	}
}

// Len returns the number of marks recorded since the last consumption,
// counting duplicates.
func (t *Tracker) Len() int {
	return len(t.lines)
}

// IsEmpty reports whether any lines are marked.
func (t *Tracker) IsEmpty() bool {
	return len(t.lines) == 0
}

// Clear drops all tracked lines without returning them.
func (t *Tracker) Clear() {
	t.lines = t.lines[:0]
}

// TakeInViewport consumes the tracker and returns the unique, ascending dirty
// lines that intersect [first, first+height). All marks are discarded,
// including those outside the viewport.
func (t *Tracker) TakeInViewport(first, height int) []int {
	if len(t.lines) == 0 {
		return nil
	}
	if height <= 0 {
		t.lines = t.lines[:0]
		return nil
	}
	end := first + height
	out := make([]int, 0, len(t.lines))
	for _, l := range t.lines {
		if l >= first && l < end {
			out = append(out, l)
		}
	}
	t.lines = t.lines[:0]
	if len(out) == 0 {
		return nil
	}
	sort.Ints(out)
	uniq := out[:1]
	for _, l := range out[1:] {
		if l != uniq[len(uniq)-1] {
			uniq = append(uniq, l)
		}
	}
	return uniq
}
