package renderer

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/termframe/internal/renderer/dirty"
	"github.com/dshills/termframe/internal/renderer/rowcache"
)

// RenderCursorOnly repaints the previous and current cursor lines and the
// cursor overlay. A cold cache escalates to a full frame.
func (e *Engine) RenderCursorOnly(snap Snapshot) error {
	start := time.Now()
	if snap.Height == 0 {
		return nil
	}
	overlay := e.overlayRowLines()
	rows := textHeight(snap.Height, len(overlay))
	first := snap.ViewportFirst

	if !e.cache.Warm(first, snap.Width, visibleCount(snap.Buffer, first, rows)) {
		return e.RenderFull(snap)
	}

	e.lastRepaint = e.lastRepaint[:0]
	e.lastRepaintKind = "cursor_only"
	w := e.newWriter()

	prev := e.cache.LastCursorLine()
	cur := snap.Cursor.Line
	paint := func(line int) {
		if line < first || line >= first+rows {
			return
		}
		text, ok := lineText(snap.Buffer, line)
		if !ok {
			return
		}
		e.paintRow(w, line-first, text, snap.Width)
		e.lastRepaint = append(e.lastRepaint, line)
	}
	if prev >= 0 && prev != cur {
		paint(prev)
	}
	paint(cur)

	e.paintCursorOverlay(w, snap, first, first+rows)
	e.paintOverlayRows(w, overlay, snap.Width, snap.Height)
	e.maybeStatus(w, snap.Status, snap.Height)

	e.cache.SetLastCursorLine(cur)
	if err := e.flush(w); err != nil {
		return err
	}
	e.metrics.PartialFrames.Add(1)
	e.metrics.CursorOnlyFrames.Add(1)
	e.metrics.LastPartialRenderNS.Store(uint64(time.Since(start).Nanoseconds()))
	return nil
}

// RenderLinesPartial repaints dirty lines inside the viewport plus the old
// and new cursor lines. The tracker is drained even when nothing is visible.
// A candidate set covering too much of the text area escalates to a full
// frame before any painting.
func (e *Engine) RenderLinesPartial(snap Snapshot, tracker *dirty.Tracker) error {
	start := time.Now()
	if snap.Height == 0 {
		return nil
	}
	overlay := e.overlayRowLines()
	rows := textHeight(snap.Height, len(overlay))
	first := snap.ViewportFirst
	endExcl := first + rows

	e.metrics.DirtyLinesMarked.Add(uint64(tracker.Len()))
	candidates := tracker.TakeInViewport(first, rows)

	if !e.cache.Warm(first, snap.Width, visibleCount(snap.Buffer, first, rows)) {
		return e.RenderFull(snap)
	}

	oldCursor := e.cache.LastCursorLine()
	cur := snap.Cursor.Line
	if oldCursor >= first && oldCursor < endExcl {
		candidates = append(candidates, oldCursor)
	}
	if cur >= first && cur < endExcl {
		candidates = append(candidates, cur)
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Ints(candidates)
	candidates = dedupSorted(candidates)

	if float64(len(candidates)) >= float64(rows)*e.threshold {
		e.metrics.EscalatedLargeSet.Add(1)
		e.log.Debug("lines partial escalated",
			zap.Int("candidates", len(candidates)),
			zap.Int("rows", rows))
		return e.RenderFull(snap)
	}

	e.lastRepaint = e.lastRepaint[:0]
	e.lastRepaintKind = "lines"
	e.metrics.PartialFrames.Add(1)
	e.metrics.LinesFrames.Add(1)
	e.metrics.DirtyCandidateLines.Add(uint64(len(candidates)))

	w := e.newWriter()
	var repainted uint64
	for _, line := range candidates {
		if line < first || line >= endExcl {
			continue
		}
		text, ok := lineText(snap.Buffer, line)
		if !ok {
			continue
		}
		row := line - first
		h := rowcache.Hash(text)
		changed := true
		if cached, ok := e.cache.Get(row); ok && cached == h {
			changed = false
		}
		// Cursor lines always repaint to add or remove the overlay styling.
		if line == cur || line == oldCursor {
			changed = true
		}
		if !changed {
			continue
		}

		e.metrics.TrimAttempts.Add(1)
		trimmed := false
		if prev, ok := e.cache.PrevText(row); ok {
			if tr := tryTrimLine(prev, text, snap.Width); tr != nil {
				w.MoveTo(tr.prefixCols, row)
				w.Print(tr.interior)
				e.metrics.TrimSuccess.Add(1)
				e.metrics.ColsSavedTotal.Add(uint64(tr.colsSaved))
				trimmed = true
			}
		}
		if !trimmed {
			e.paintRow(w, row, text, snap.Width)
		}
		e.cache.SetHash(row, h)
		e.cache.SetPrevText(row, text)
		repainted++
		e.lastRepaint = append(e.lastRepaint, line)
	}

	e.paintCursorOverlay(w, snap, first, endExcl)
	e.paintOverlayRows(w, overlay, snap.Width, snap.Height)
	e.maybeStatus(w, snap.Status, snap.Height)

	e.cache.SetLastCursorLine(cur)
	if err := e.flush(w); err != nil {
		return err
	}
	e.metrics.DirtyLinesRepainted.Add(repainted)
	e.metrics.LastPartialRenderNS.Store(uint64(time.Since(start).Nanoseconds()))
	return nil
}

// visibleCount reports how many buffer lines the text area can actually
// show from first.
func visibleCount(buf BufferReader, first, rows int) int {
	n := buf.LineCount() - first
	if n > rows {
		n = rows
	}
	if n < 0 {
		n = 0
	}
	return n
}

func dedupSorted(s []int) []int {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}
