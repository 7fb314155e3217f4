// Package overlay builds the diagnostics overlay shown above the status
// line: a few fixed rows summarizing render-path and delta metrics. Overlay
// rows are repainted every frame while enabled; no diffing.
package overlay

import (
	"fmt"

	"github.com/dshills/termframe/internal/renderer/delta"
	"github.com/dshills/termframe/internal/renderer/metrics"
)

// DefaultMaxLines bounds overlay height.
const DefaultMaxLines = 3

// Overlay holds the toggle state for the metrics display.
type Overlay struct {
	enabled  bool
	maxLines int
}

// New returns a disabled overlay with the default height budget.
func New() *Overlay {
	return &Overlay{maxLines: DefaultMaxLines}
}

// Toggle flips visibility and reports the new state.
func (o *Overlay) Toggle() bool {
	o.enabled = !o.enabled
	return o.enabled
}

// Enabled reports visibility.
func (o *Overlay) Enabled() bool { return o.enabled }

// SetMaxLines overrides the height budget. Non-positive values are ignored.
func (o *Overlay) SetMaxLines(n int) {
	if n > 0 {
		o.maxLines = n
	}
}

// Lines formats the overlay rows for the current metric snapshots. It
// returns nil while disabled or when the budget is zero.
func (o *Overlay) Lines(rp metrics.Snapshot, rd delta.MetricsSnapshot) []string {
	if !o.enabled {
		return nil
	}
	return Build(rp, rd, o.maxLines)
}

// Build formats up to max metric rows. Exposed separately so tests and the
// engine's overlay provider hook can call it without an Overlay value.
func Build(rp metrics.Snapshot, rd delta.MetricsSnapshot, max int) []string {
	if max <= 0 {
		return nil
	}
	out := make([]string, 0, 3)
	out = append(out, fmt.Sprintf(
		"rp full:%d part:%d cur:%d lines:%d dirty:%d cand:%d rep:%d cells:%d statSkip:%d",
		rp.FullFrames, rp.PartialFrames, rp.CursorOnlyFrames, rp.LinesFrames,
		rp.DirtyLinesMarked, rp.DirtyCandidateLines, rp.DirtyLinesRepainted,
		rp.CellsPrinted, rp.StatusSkipped))
	if len(out) >= max {
		return out[:max]
	}
	out = append(out, fmt.Sprintf(
		"delta f:%d l:%d sc:%d st:%d cur:%d sem:%d",
		rd.Full, rd.Lines, rd.Scroll, rd.StatusLine, rd.CursorOnly, rd.SemanticFrames))
	if len(out) >= max {
		return out[:max]
	}
	out = append(out, fmt.Sprintf(
		"shift n:%d saved:%d degr:%d trim:%d/%d cols:%d",
		rp.ScrollRegionShifts, rp.ScrollRegionLinesSaved, rp.ScrollShiftDegradedFull,
		rp.TrimSuccess, rp.TrimAttempts, rp.ColsSavedTotal))
	if len(out) > max {
		out = out[:max]
	}
	return out
}
