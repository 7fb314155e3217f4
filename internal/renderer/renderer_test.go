package renderer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dshills/termframe/internal/renderer/backend"
	"github.com/dshills/termframe/internal/renderer/dirty"
)

// testBuffer is a line-slice buffer for exercising render paths.
type testBuffer struct {
	lines []string
}

func (b *testBuffer) LineCount() int { return len(b.lines) }

func (b *testBuffer) Line(i int) (string, bool) {
	if i < 0 || i >= len(b.lines) {
		return "", false
	}
	return b.lines[i], true
}

func numberedBuffer(n int) *testBuffer {
	b := &testBuffer{}
	for i := 0; i < n; i++ {
		b.lines = append(b.lines, fmt.Sprintf("line %02d", i))
	}
	return b
}

func newTestEngine() (*Engine, *backend.MemorySink) {
	sink := &backend.MemorySink{}
	return New(sink), sink
}

func snapshotFor(buf *testBuffer, first, width, height int, cursor Cursor, status string) Snapshot {
	return Snapshot{
		Buffer:        buf,
		Cursor:        cursor,
		ViewportFirst: first,
		Width:         width,
		Height:        height,
		Status:        status,
	}
}

func printedText(sink *backend.MemorySink) string {
	var b strings.Builder
	for _, c := range sink.Commands {
		if c.Kind == backend.CmdPrint || c.Kind == backend.CmdPrintInverted {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func TestRenderFullPaintsAllVisibleRows(t *testing.T) {
	e, sink := newTestEngine()
	buf := numberedBuffer(5)
	snap := snapshotFor(buf, 0, 80, 8, Cursor{Line: 0}, "[NORMAL] status")

	if err := e.RenderFull(snap); err != nil {
		t.Fatal(err)
	}
	out := printedText(sink)
	for i := 0; i < 5; i++ {
		if !strings.Contains(out, fmt.Sprintf("line %02d", i)) {
			t.Errorf("row %d missing from output", i)
		}
	}
	if !strings.Contains(out, "[NORMAL] status") {
		t.Error("status line missing")
	}
	m := e.MetricsSnapshot()
	if m.FullFrames != 1 {
		t.Errorf("FullFrames = %d, want 1", m.FullFrames)
	}
	if m.PrintCommands > m.CellsPrinted {
		t.Errorf("invariant violated: prints %d > cells %d", m.PrintCommands, m.CellsPrinted)
	}
	if sink.Flushes != 1 {
		t.Errorf("Flushes = %d, want 1", sink.Flushes)
	}
}

func TestRenderFullWritesStatusUnconditionally(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(3)
	snap := snapshotFor(buf, 0, 80, 5, Cursor{}, "same")
	if err := e.RenderFull(snap); err != nil {
		t.Fatal(err)
	}
	if err := e.RenderFull(snap); err != nil {
		t.Fatal(err)
	}
	if got := e.MetricsSnapshot().StatusSkipped; got != 0 {
		t.Errorf("StatusSkipped = %d, want 0 on full frames", got)
	}
}

func TestCursorOnlyRepaintsOldAndNewCursorLines(t *testing.T) {
	e, sink := newTestEngine()
	buf := numberedBuffer(10)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{Line: 2}, "s")); err != nil {
		t.Fatal(err)
	}
	sink.Reset()

	snap := snapshotFor(buf, 0, 80, 8, Cursor{Line: 4}, "s")
	if err := e.RenderCursorOnly(snap); err != nil {
		t.Fatal(err)
	}
	if len(e.lastRepaint) != 2 || e.lastRepaint[0] != 2 || e.lastRepaint[1] != 4 {
		t.Errorf("repainted lines = %v, want [2 4]", e.lastRepaint)
	}
	m := e.MetricsSnapshot()
	if m.CursorOnlyFrames != 1 || m.PartialFrames != 1 {
		t.Errorf("frames cursor=%d partial=%d, want 1/1", m.CursorOnlyFrames, m.PartialFrames)
	}
	// Status unchanged, so it must be skipped.
	if m.StatusSkipped != 1 {
		t.Errorf("StatusSkipped = %d, want 1", m.StatusSkipped)
	}
	if e.LastCursorLine() != 4 {
		t.Errorf("LastCursorLine = %d, want 4", e.LastCursorLine())
	}
	if inv := sink.OfKind(backend.CmdPrintInverted); len(inv) != 1 {
		t.Errorf("cursor overlay prints = %d, want 1", len(inv))
	}
}

func TestCursorOnlyColdCacheEscalatesToFull(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(10)
	if err := e.RenderCursorOnly(snapshotFor(buf, 0, 80, 8, Cursor{}, "s")); err != nil {
		t.Fatal(err)
	}
	m := e.MetricsSnapshot()
	if m.FullFrames != 1 || m.CursorOnlyFrames != 0 {
		t.Errorf("full=%d cursorOnly=%d, want 1/0", m.FullFrames, m.CursorOnlyFrames)
	}
}

func TestCursorOverlayEmptyLinePaintsInvertedSpace(t *testing.T) {
	e, sink := newTestEngine()
	buf := &testBuffer{lines: []string{""}}
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 3, Cursor{}, "s")); err != nil {
		t.Fatal(err)
	}
	inv := sink.OfKind(backend.CmdPrintInverted)
	if len(inv) != 1 || inv[0].Text != " " {
		t.Errorf("inverted prints = %+v, want one space", inv)
	}
}

func TestCursorSpanWideCluster(t *testing.T) {
	e, _ := newTestEngine()
	buf := &testBuffer{lines: []string{"a😀b"}}
	snap := snapshotFor(buf, 0, 80, 3, Cursor{Line: 0, Byte: 1}, "s")
	span := e.computeCursorSpan(snap, 0, 1)
	if span == nil {
		t.Fatal("no span")
	}
	if span.StartCol != 1 || span.EndCol != 3 {
		t.Errorf("span = [%d,%d), want [1,3)", span.StartCol, span.EndCol)
	}
}

func TestLinesPartialRepaintsOnlyChangedAndCursorLines(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(10)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{Line: 0}, "s")); err != nil {
		t.Fatal(err)
	}

	buf.lines[3] = "edited line"
	tracker := dirty.NewTracker()
	tracker.Mark(3)
	tracker.Mark(5) // marked but unchanged: hash match keeps it unpainted

	snap := snapshotFor(buf, 0, 80, 8, Cursor{Line: 0}, "s")
	if err := e.RenderLinesPartial(snap, tracker); err != nil {
		t.Fatal(err)
	}
	m := e.MetricsSnapshot()
	if m.LinesFrames != 1 {
		t.Fatalf("LinesFrames = %d, want 1", m.LinesFrames)
	}
	// Line 3 changed, line 0 is the cursor line; line 5 matched its hash.
	if m.DirtyLinesRepainted != 2 {
		t.Errorf("DirtyLinesRepainted = %d, want 2", m.DirtyLinesRepainted)
	}
	if m.DirtyLinesMarked != 2 {
		t.Errorf("DirtyLinesMarked = %d, want 2", m.DirtyLinesMarked)
	}
	if m.DirtyCandidateLines != 3 {
		t.Errorf("DirtyCandidateLines = %d, want 3", m.DirtyCandidateLines)
	}
	if tracker.Len() != 0 {
		t.Error("tracker not drained")
	}
}

func TestLinesPartialEscalatesOnLargeCandidateSet(t *testing.T) {
	// Height 10 gives 9 text rows; 6 candidates cross the 60% threshold.
	e, _ := newTestEngine()
	buf := numberedBuffer(12)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 10, Cursor{Line: 0}, "s")); err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{0, 1, 2, 3, 4, 5} {
		buf.lines[i] = fmt.Sprintf("changed %02d", i)
	}
	tracker := dirty.NewTracker()
	tracker.MarkRange(0, 6)

	if err := e.RenderLinesPartial(snapshotFor(buf, 0, 80, 10, Cursor{Line: 0}, "s"), tracker); err != nil {
		t.Fatal(err)
	}
	m := e.MetricsSnapshot()
	if m.EscalatedLargeSet != 1 {
		t.Errorf("EscalatedLargeSet = %d, want 1", m.EscalatedLargeSet)
	}
	if m.LinesFrames != 0 {
		t.Errorf("LinesFrames = %d, want 0 after escalation", m.LinesFrames)
	}
	if m.FullFrames != 2 {
		t.Errorf("FullFrames = %d, want 2", m.FullFrames)
	}
}

func TestLinesPartialBelowThresholdStaysPartial(t *testing.T) {
	// 5 of 9 rows stays under the 60% threshold (5 < 5.4).
	e, _ := newTestEngine()
	buf := numberedBuffer(12)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 10, Cursor{Line: 0}, "s")); err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{0, 1, 2, 3, 4} {
		buf.lines[i] = fmt.Sprintf("changed %02d", i)
	}
	tracker := dirty.NewTracker()
	tracker.MarkRange(0, 5)

	if err := e.RenderLinesPartial(snapshotFor(buf, 0, 80, 10, Cursor{Line: 0}, "s"), tracker); err != nil {
		t.Fatal(err)
	}
	m := e.MetricsSnapshot()
	if m.LinesFrames != 1 || m.EscalatedLargeSet != 0 {
		t.Errorf("lines=%d escalated=%d, want 1/0", m.LinesFrames, m.EscalatedLargeSet)
	}
}

func TestScrollShiftRepaintsEnteringAndOldCursorRow(t *testing.T) {
	// 7 text rows, scroll down by 1 with the cursor leaving the old bottom
	// row: two repaints (entering row, old cursor row), five rows saved.
	e, sink := newTestEngine()
	buf := numberedBuffer(12)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{Line: 6}, "s")); err != nil {
		t.Fatal(err)
	}
	sink.Reset()

	snap := snapshotFor(buf, 1, 80, 8, Cursor{Line: 7}, "s")
	if err := e.RenderScrollShift(snap, 0, 1); err != nil {
		t.Fatal(err)
	}
	m := e.MetricsSnapshot()
	if m.ScrollRegionShifts != 1 {
		t.Fatalf("ScrollRegionShifts = %d, want 1", m.ScrollRegionShifts)
	}
	if m.DirtyLinesRepainted != 2 {
		t.Errorf("DirtyLinesRepainted = %d, want 2", m.DirtyLinesRepainted)
	}
	if m.ScrollRegionLinesSaved != 5 {
		t.Errorf("ScrollRegionLinesSaved = %d, want 5", m.ScrollRegionLinesSaved)
	}
	scrolls := sink.OfKind(backend.CmdScrollUp)
	if len(scrolls) != 1 || scrolls[0].N != 1 || scrolls[0].Top != 0 || scrolls[0].Bottom != 6 {
		t.Errorf("scroll commands = %+v", scrolls)
	}
	if !containsLine(e.lastRepaint, 7) || !containsLine(e.lastRepaint, 6) {
		t.Errorf("repainted lines = %v, want 6 and 7", e.lastRepaint)
	}
}

func TestScrollShiftUpRepaintsTopRow(t *testing.T) {
	e, sink := newTestEngine()
	buf := numberedBuffer(12)
	if err := e.RenderFull(snapshotFor(buf, 3, 80, 8, Cursor{Line: 3}, "s")); err != nil {
		t.Fatal(err)
	}
	sink.Reset()

	snap := snapshotFor(buf, 2, 80, 8, Cursor{Line: 2}, "s")
	if err := e.RenderScrollShift(snap, 3, 2); err != nil {
		t.Fatal(err)
	}
	if scrolls := sink.OfKind(backend.CmdScrollDown); len(scrolls) != 1 || scrolls[0].N != 1 {
		t.Errorf("scroll commands = %+v", scrolls)
	}
	// The entering top row is buffer line 2, which is also the new cursor
	// line; the old cursor line 3 is repainted to drop its styling.
	if !containsLine(e.lastRepaint, 2) || !containsLine(e.lastRepaint, 3) {
		t.Errorf("repainted lines = %v, want 2 and 3", e.lastRepaint)
	}
}

func TestScrollShiftCacheRealignment(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(12)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{Line: 0}, "s")); err != nil {
		t.Fatal(err)
	}
	if err := e.RenderScrollShift(snapshotFor(buf, 2, 80, 8, Cursor{Line: 2}, "s"), 0, 2); err != nil {
		t.Fatal(err)
	}
	if e.cache.ViewportStart() != 2 {
		t.Errorf("cache viewport start = %d, want 2", e.cache.ViewportStart())
	}
	// A follow-up cursor-only frame must find the cache warm.
	if err := e.RenderCursorOnly(snapshotFor(buf, 2, 80, 8, Cursor{Line: 3}, "s")); err != nil {
		t.Fatal(err)
	}
	if got := e.MetricsSnapshot().FullFrames; got != 1 {
		t.Errorf("FullFrames = %d, want 1 (no escalation after shift)", got)
	}
}

func TestScrollShiftOversizedDegradesToFull(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(30)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{Line: 0}, "s")); err != nil {
		t.Fatal(err)
	}
	if err := e.RenderScrollShift(snapshotFor(buf, 7, 80, 8, Cursor{Line: 7}, "s"), 0, 7); err != nil {
		t.Fatal(err)
	}
	m := e.MetricsSnapshot()
	if m.ScrollShiftDegradedFull != 1 {
		t.Errorf("ScrollShiftDegradedFull = %d, want 1", m.ScrollShiftDegradedFull)
	}
	if m.ScrollRegionShifts != 0 {
		t.Errorf("ScrollRegionShifts = %d, want 0", m.ScrollRegionShifts)
	}
	if m.FullFrames != 2 {
		t.Errorf("FullFrames = %d, want 2", m.FullFrames)
	}
}

func TestScrollShiftColdCacheDegradesToFull(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(30)
	if err := e.RenderScrollShift(snapshotFor(buf, 1, 80, 8, Cursor{Line: 1}, "s"), 0, 1); err != nil {
		t.Fatal(err)
	}
	m := e.MetricsSnapshot()
	if m.ScrollShiftDegradedFull != 1 || m.FullFrames != 1 {
		t.Errorf("degraded=%d full=%d, want 1/1", m.ScrollShiftDegradedFull, m.FullFrames)
	}
}

func TestInvalidateForResizeForcesRebuild(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(10)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{}, "s")); err != nil {
		t.Fatal(err)
	}
	e.InvalidateForResize()
	if got := e.MetricsSnapshot().ResizeInvalidations; got != 1 {
		t.Fatalf("ResizeInvalidations = %d, want 1", got)
	}
	// A partial frame after invalidation escalates to full.
	if err := e.RenderCursorOnly(snapshotFor(buf, 0, 80, 8, Cursor{Line: 1}, "s")); err != nil {
		t.Fatal(err)
	}
	if got := e.MetricsSnapshot().FullFrames; got != 2 {
		t.Errorf("FullFrames = %d, want 2", got)
	}
}

func TestStatusSkipOnlyWhenIdentical(t *testing.T) {
	e, _ := newTestEngine()
	buf := numberedBuffer(10)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{}, "a")); err != nil {
		t.Fatal(err)
	}
	if err := e.RenderCursorOnly(snapshotFor(buf, 0, 80, 8, Cursor{Line: 1}, "b")); err != nil {
		t.Fatal(err)
	}
	if got := e.MetricsSnapshot().StatusSkipped; got != 0 {
		t.Errorf("StatusSkipped = %d, want 0 for changed status", got)
	}
	if err := e.RenderCursorOnly(snapshotFor(buf, 0, 80, 8, Cursor{Line: 2}, "b")); err != nil {
		t.Fatal(err)
	}
	if got := e.MetricsSnapshot().StatusSkipped; got != 1 {
		t.Errorf("StatusSkipped = %d, want 1 for repeated status", got)
	}
}

func TestOverlayRowsReduceTextArea(t *testing.T) {
	e, sink := newTestEngine()
	e.SetOverlayProvider(func() []string { return []string{"rp full:0"} })
	buf := numberedBuffer(10)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 8, Cursor{}, "s")); err != nil {
		t.Fatal(err)
	}
	out := printedText(sink)
	if !strings.Contains(out, "rp full:0") {
		t.Error("overlay row missing")
	}
	// Height 8 minus status and one overlay row leaves 6 text rows.
	if strings.Contains(out, "line 06") {
		t.Error("text painted into overlay region")
	}
	if !strings.Contains(out, "line 05") {
		t.Error("last text row missing")
	}
}

func TestZeroHeightIsNoop(t *testing.T) {
	e, sink := newTestEngine()
	buf := numberedBuffer(3)
	if err := e.RenderFull(snapshotFor(buf, 0, 80, 0, Cursor{}, "s")); err != nil {
		t.Fatal(err)
	}
	if len(sink.Commands) != 0 || sink.Flushes != 0 {
		t.Errorf("commands = %+v, want none", sink.Commands)
	}
	if got := e.MetricsSnapshot().FullFrames; got != 0 {
		t.Errorf("FullFrames = %d, want 0", got)
	}
}
