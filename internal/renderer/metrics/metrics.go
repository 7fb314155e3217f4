// Package metrics records render-path execution outcomes. These counters are
// distinct from the scheduler's semantic metrics (what the editor asked for):
// they describe what the engine actually did, so intent and strategy can be
// correlated when diagnosing repaint behavior.
//
// All fields are atomics so a diagnostics read path (the metrics overlay)
// can snapshot them without synchronizing with the render thread. Snapshots
// are eventually consistent, not transactional.
package metrics

import "sync/atomic"

// RenderPath is the engine-owned counter bundle. Counters increase
// monotonically for the lifetime of the engine.
type RenderPath struct {
	// FullFrames counts full-frame renders, including escalations and
	// degradations.
	FullFrames atomic.Uint64

	// PartialFrames counts frames executed by any partial strategy.
	PartialFrames atomic.Uint64

	// CursorOnlyFrames counts cursor-only partial frames.
	CursorOnlyFrames atomic.Uint64

	// LinesFrames counts lines-partial frames (selective line repaints).
	LinesFrames atomic.Uint64

	// EscalatedLargeSet counts lines-partial calls abandoned for a full
	// repaint because the candidate set crossed the escalation threshold.
	EscalatedLargeSet atomic.Uint64

	// ResizeInvalidations counts explicit cache invalidations (resize or
	// buffer replacement).
	ResizeInvalidations atomic.Uint64

	// DirtyLinesMarked counts raw marks consumed, before viewport filtering.
	DirtyLinesMarked atomic.Uint64

	// DirtyCandidateLines counts candidates after filtering and cursor-line
	// injection.
	DirtyCandidateLines atomic.Uint64

	// DirtyLinesRepainted counts lines physically repainted.
	DirtyLinesRepainted atomic.Uint64

	// LastFullRenderNS is the duration of the most recent full render.
	LastFullRenderNS atomic.Uint64

	// LastPartialRenderNS is the duration of the most recent partial render.
	LastPartialRenderNS atomic.Uint64

	// PrintCommands counts terminal print commands emitted after batching.
	PrintCommands atomic.Uint64

	// CellsPrinted counts logical cells written. PrintCommands <= CellsPrinted
	// holds for every flushed frame.
	CellsPrinted atomic.Uint64

	// ScrollRegionShifts counts scroll-shift renders executed.
	ScrollRegionShifts atomic.Uint64

	// ScrollRegionLinesSaved totals rows spared from repaint by shifts.
	ScrollRegionLinesSaved atomic.Uint64

	// ScrollShiftDegradedFull counts shift attempts that fell back to full.
	ScrollShiftDegradedFull atomic.Uint64

	// TrimAttempts counts trimmed-diff attempts on repainted lines.
	TrimAttempts atomic.Uint64

	// TrimSuccess counts trimmed-diff emissions.
	TrimSuccess atomic.Uint64

	// ColsSavedTotal totals columns saved across successful trims.
	ColsSavedTotal atomic.Uint64

	// StatusSkipped counts status-line repaints skipped as byte-identical.
	StatusSkipped atomic.Uint64
}

// Snapshot is a plain, non-atomic copy of the counters for display.
type Snapshot struct {
	FullFrames              uint64
	PartialFrames           uint64
	CursorOnlyFrames        uint64
	LinesFrames             uint64
	EscalatedLargeSet       uint64
	ResizeInvalidations     uint64
	DirtyLinesMarked        uint64
	DirtyCandidateLines     uint64
	DirtyLinesRepainted     uint64
	LastFullRenderNS        uint64
	LastPartialRenderNS     uint64
	PrintCommands           uint64
	CellsPrinted            uint64
	ScrollRegionShifts      uint64
	ScrollRegionLinesSaved  uint64
	ScrollShiftDegradedFull uint64
	TrimAttempts            uint64
	TrimSuccess             uint64
	ColsSavedTotal          uint64
	StatusSkipped           uint64
}

// Snapshot returns a consistent-enough copy of all counters.
func (m *RenderPath) Snapshot() Snapshot {
	return Snapshot{
		FullFrames:              m.FullFrames.Load(),
		PartialFrames:           m.PartialFrames.Load(),
		CursorOnlyFrames:        m.CursorOnlyFrames.Load(),
		LinesFrames:             m.LinesFrames.Load(),
		EscalatedLargeSet:       m.EscalatedLargeSet.Load(),
		ResizeInvalidations:     m.ResizeInvalidations.Load(),
		DirtyLinesMarked:        m.DirtyLinesMarked.Load(),
		DirtyCandidateLines:     m.DirtyCandidateLines.Load(),
		DirtyLinesRepainted:     m.DirtyLinesRepainted.Load(),
		LastFullRenderNS:        m.LastFullRenderNS.Load(),
		LastPartialRenderNS:     m.LastPartialRenderNS.Load(),
		PrintCommands:           m.PrintCommands.Load(),
		CellsPrinted:            m.CellsPrinted.Load(),
		ScrollRegionShifts:      m.ScrollRegionShifts.Load(),
		ScrollRegionLinesSaved:  m.ScrollRegionLinesSaved.Load(),
		ScrollShiftDegradedFull: m.ScrollShiftDegradedFull.Load(),
		TrimAttempts:            m.TrimAttempts.Load(),
		TrimSuccess:             m.TrimSuccess.Load(),
		ColsSavedTotal:          m.ColsSavedTotal.Load(),
		StatusSkipped:           m.StatusSkipped.Load(),
	}
}
