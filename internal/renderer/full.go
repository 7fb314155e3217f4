package renderer

import "time"

// RenderFull repaints every row, rebuilds the row cache, and writes the
// status line unconditionally. All other strategies fall back to this path
// when their preconditions fail.
func (e *Engine) RenderFull(snap Snapshot) error {
	start := time.Now()
	if snap.Height == 0 {
		return nil
	}
	e.lastRepaint = e.lastRepaint[:0]
	e.lastRepaintKind = "full"

	overlay := e.overlayRowLines()
	rows := textHeight(snap.Height, len(overlay))
	first := snap.ViewportFirst
	w := e.newWriter()

	e.cache.Reset(first, snap.Width)
	for row := 0; row < rows; row++ {
		text, ok := lineText(snap.Buffer, first+row)
		if !ok {
			w.MoveTo(0, row)
			w.ClearLine(row)
			continue
		}
		e.paintRow(w, row, text, snap.Width)
		e.cache.PushLine(text)
		e.lastRepaint = append(e.lastRepaint, first+row)
	}

	e.paintCursorOverlay(w, snap, first, first+rows)
	e.paintOverlayRows(w, overlay, snap.Width, snap.Height)

	// Status is always written on a full frame, bypassing the skip check.
	statusRow := snap.Height - 1
	w.MoveTo(0, statusRow)
	w.ClearLine(statusRow)
	w.Print(snap.Status)
	e.prevStatus = snap.Status

	e.cache.SetLastCursorLine(snap.Cursor.Line)
	if err := e.flush(w); err != nil {
		return err
	}
	e.metrics.FullFrames.Add(1)
	e.metrics.LastFullRenderNS.Store(uint64(time.Since(start).Nanoseconds()))
	return nil
}
