package backend

// BatchWriter coalesces consecutive single-byte plain prints into one Print
// command before forwarding to the sink. Only 1-byte strings aggregate;
// multi-byte text (wide clusters, whole-line repaints, the status line) is
// emitted as its own command so the command stream keeps its segment
// structure. Movement, clears, inverted prints, and scrolls are batch
// boundaries.
//
// PrintCommands counts emitted print commands after batching; CellsPrinted
// counts logical cells (one per batched byte, one per direct print command).
// PrintCommands <= CellsPrinted holds at every flush.
type BatchWriter struct {
	sink    Sink
	cmds    []Command
	pending []byte
	prints  uint64
	cells   uint64
}

// NewBatchWriter wraps a sink. The writer is reusable across frames; Flush
// resets its state and counters.
func NewBatchWriter(sink Sink) *BatchWriter {
	return &BatchWriter{sink: sink}
}

func (w *BatchWriter) flushPending() {
	if len(w.pending) == 0 {
		return
	}
	w.cmds = append(w.cmds, Command{Kind: CmdPrint, Text: string(w.pending)})
	w.pending = w.pending[:0]
	w.prints++
	// cells were counted during accumulation
}

// MoveTo positions the output cursor.
func (w *BatchWriter) MoveTo(col, row int) {
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdMoveTo, Col: col, Row: row})
}

// ClearLine erases a row.
func (w *BatchWriter) ClearLine(row int) {
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdClearLine, Row: row})
}

// Print writes text at the current position. Empty strings are dropped.
func (w *BatchWriter) Print(s string) {
	if s == "" {
		return
	}
	if len(s) == 1 {
		w.pending = append(w.pending, s[0])
		w.cells++
		return
	}
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdPrint, Text: s})
	w.prints++
	w.cells++
}

// PrintInverted writes text with reverse video.
func (w *BatchWriter) PrintInverted(s string) {
	if s == "" {
		return
	}
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdPrintInverted, Text: s})
	w.prints++
	w.cells++
}

// ScrollUp shifts rows [top, bottom] up by n.
func (w *BatchWriter) ScrollUp(n, top, bottom int) {
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdScrollUp, N: n, Top: top, Bottom: bottom})
}

// ScrollDown shifts rows [top, bottom] down by n.
func (w *BatchWriter) ScrollDown(n, top, bottom int) {
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdScrollDown, N: n, Top: top, Bottom: bottom})
}

// Flush applies all staged commands to the sink, flushes it, and returns the
// print-command and cell counts for this batch. The writer is reset for the
// next frame regardless of error.
func (w *BatchWriter) Flush() (prints, cells uint64, err error) {
	w.flushPending()
	prints, cells = w.prints, w.cells
	for _, c := range w.cmds {
		if err = w.sink.Apply(c); err != nil {
			break
		}
	}
	if err == nil {
		err = w.sink.Flush()
	}
	w.cmds = w.cmds[:0]
	w.prints, w.cells = 0, 0
	return prints, cells, err
}
