package renderer

import "time"

// RenderScrollShift reuses on-screen content after a small viewport move: the
// text region is shifted with a scroll command and only entering rows, the
// old cursor row, and the cursor overlay are repainted. Shifts that equal or
// exceed the text height, or that find the cache cold, degrade to a full
// frame.
func (e *Engine) RenderScrollShift(snap Snapshot, oldFirst, newFirst int) error {
	start := time.Now()
	if snap.Height == 0 || snap.Width == 0 {
		return nil
	}
	delta := newFirst - oldFirst
	if delta == 0 {
		return nil
	}
	abs := delta
	if abs < 0 {
		abs = -abs
	}
	overlay := e.overlayRowLines()
	rows := textHeight(snap.Height, len(overlay))
	if abs >= rows {
		e.metrics.ScrollShiftDegradedFull.Add(1)
		return e.RenderFull(snap)
	}
	if !e.cache.Warm(oldFirst, snap.Width, rows) {
		e.metrics.ScrollShiftDegradedFull.Add(1)
		return e.RenderFull(snap)
	}

	e.lastRepaint = e.lastRepaint[:0]
	e.lastRepaintKind = "scroll_shift"
	w := e.newWriter()

	if delta > 0 {
		// Viewport moved down, so on-screen content moves up.
		w.ScrollUp(delta, 0, rows-1)
	} else {
		w.ScrollDown(-delta, 0, rows-1)
	}

	// Realign the cache before painting so entering rows carry fresh text
	// for later trimmed diffs.
	entering := e.cache.ShiftForScroll(delta, newFirst, rows, snap.Buffer.Line)
	repainted := 0
	for _, row := range entering {
		text, ok := e.cache.PrevText(row)
		if !ok {
			continue
		}
		e.paintRow(w, row, text, snap.Width)
		e.lastRepaint = append(e.lastRepaint, newFirst+row)
		repainted++
	}

	// The old cursor row keeps stale inverted styling after the shift; repaint
	// it plain unless it already entered or still holds the cursor.
	oldCursor := e.cache.LastCursorLine()
	cur := snap.Cursor.Line
	if oldCursor >= 0 && oldCursor != cur &&
		oldCursor >= newFirst && oldCursor < newFirst+rows &&
		!containsLine(e.lastRepaint, oldCursor) {
		if text, ok := lineText(snap.Buffer, oldCursor); ok {
			row := oldCursor - newFirst
			e.paintRow(w, row, text, snap.Width)
			e.cache.SetPrevText(row, text)
			e.lastRepaint = append(e.lastRepaint, oldCursor)
			repainted++
		}
	}

	e.paintCursorOverlay(w, snap, newFirst, newFirst+rows)
	e.paintOverlayRows(w, overlay, snap.Width, snap.Height)
	e.maybeStatus(w, snap.Status, snap.Height)

	e.cache.SetLastCursorLine(cur)
	if err := e.flush(w); err != nil {
		return err
	}
	e.metrics.PartialFrames.Add(1)
	e.metrics.ScrollRegionShifts.Add(1)
	e.metrics.ScrollRegionLinesSaved.Add(uint64(rows - repainted))
	e.metrics.DirtyLinesRepainted.Add(uint64(repainted))
	e.metrics.LastPartialRenderNS.Store(uint64(time.Since(start).Nanoseconds()))
	return nil
}

func containsLine(s []int, line int) bool {
	for _, v := range s {
		if v == line {
			return true
		}
	}
	return false
}
