// Package renderer implements the incremental frame pipeline: full repaints,
// cursor-only and dirty-line partial repaints, and scroll-region shifts, all
// backed by a per-row content hash cache so unchanged rows are never
// repainted.
package renderer

import (
	"fmt"

	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/dshills/termframe/internal/renderer/backend"
	"github.com/dshills/termframe/internal/renderer/grapheme"
	"github.com/dshills/termframe/internal/renderer/metrics"
	"github.com/dshills/termframe/internal/renderer/rowcache"
	"github.com/dshills/termframe/internal/renderer/style"
)

// DefaultEscalationThreshold is the candidate-set fraction of the text area
// at which a lines-partial frame delegates to a full repaint.
const DefaultEscalationThreshold = 0.60

// BufferReader provides read access to buffer lines. Line reports the text
// of a 0-based line (terminator included or not, both accepted) and whether
// the line exists.
type BufferReader interface {
	LineCount() int
	Line(i int) (string, bool)
}

// Cursor is a buffer position: 0-based line and byte offset within it.
type Cursor struct {
	Line int
	Byte int
}

// Snapshot is the immutable view of editor state a render path consumes.
// Width and Height are the terminal dimensions; the bottom row is the status
// line and any overlay rows sit directly above it.
type Snapshot struct {
	Buffer        BufferReader
	Cursor        Cursor
	ViewportFirst int
	Width         int
	Height        int
	Status        string
}

// Engine owns the row cache and render-path metrics and executes render
// strategies against a command sink. Not safe for concurrent use.
type Engine struct {
	sink      backend.Sink
	cache     *rowcache.Cache
	metrics   metrics.RenderPath
	layer     *style.Layer
	threshold float64

	// overlayLines, when set, supplies diagnostic rows painted above the
	// status line every frame.
	overlayLines func() []string

	writer          *backend.BatchWriter
	prevStatus      string
	lastRepaint     []int
	lastRepaintKind string
	log             *zap.Logger
}

// New returns an engine writing to sink.
func New(sink backend.Sink) *Engine {
	return &Engine{
		sink:      sink,
		cache:     rowcache.New(),
		layer:     style.NewLayer(),
		threshold: DefaultEscalationThreshold,
		writer:    backend.NewBatchWriter(sink),
		log:       zap.NewNop(),
	}
}

// newWriter returns the frame writer. Flush resets it, so one writer is
// shared across frames.
func (e *Engine) newWriter() *backend.BatchWriter {
	return e.writer
}

// SetEscalationThreshold overrides the lines-partial escalation fraction.
// Values outside (0, 1] are ignored.
func (e *Engine) SetEscalationThreshold(f float64) {
	if f > 0 && f <= 1 {
		e.threshold = f
	}
}

// SetLogger installs a logger. A nil logger disables output.
func (e *Engine) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	e.log = log
}

// SetOverlayProvider installs the overlay row source. A nil provider
// disables the overlay.
func (e *Engine) SetOverlayProvider(fn func() []string) {
	e.overlayLines = fn
}

// InvalidateForResize drops the row cache so the next frame rebuilds it for
// the new geometry. The caller is expected to follow with a full render.
func (e *Engine) InvalidateForResize() {
	e.cache.Clear()
	e.metrics.ResizeInvalidations.Add(1)
}

// MetricsSnapshot returns a plain copy of the render-path counters.
func (e *Engine) MetricsSnapshot() metrics.Snapshot {
	return e.metrics.Snapshot()
}

// LastCursorLine reports the buffer line the cursor overlay was last painted
// on, or -1.
func (e *Engine) LastCursorLine() int {
	return e.cache.LastCursorLine()
}

// overlayRowLines fetches the overlay rows for this frame.
func (e *Engine) overlayRowLines() []string {
	if e.overlayLines == nil {
		return nil
	}
	return e.overlayLines()
}

// textHeight computes the rows available for buffer text after reserving the
// status line and overlay rows.
func textHeight(height, overlayRows int) int {
	h := height - 1 - overlayRows
	if h < 0 {
		h = 0
	}
	return h
}

// lineText fetches a buffer line with its terminator stripped.
func lineText(buf BufferReader, i int) (string, bool) {
	raw, ok := buf.Line(i)
	if !ok {
		return "", false
	}
	return rowcache.TrimEOL(raw), true
}

// paintClusters emits line content cluster by cluster, stopping at width.
func paintClusters(w *backend.BatchWriter, text string, width int) {
	state := -1
	col := 0
	for len(text) > 0 && col < width {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		w.Print(cluster)
		col += grapheme.ClusterWidth(cluster)
	}
}

// paintRow clears a screen row and repaints it with the given text.
func (e *Engine) paintRow(w *backend.BatchWriter, row int, text string, width int) {
	w.MoveTo(0, row)
	w.ClearLine(row)
	paintClusters(w, text, width)
}

// computeCursorSpan locates the cursor's grapheme cluster as a style span,
// or nil when the cursor is outside the viewport or the buffer.
func (e *Engine) computeCursorSpan(snap Snapshot, first, endExcl int) *style.Span {
	cur := snap.Cursor
	if cur.Line < first || cur.Line >= endExcl || cur.Line >= snap.Buffer.LineCount() {
		return nil
	}
	text, ok := lineText(snap.Buffer, cur.Line)
	if !ok {
		return nil
	}
	b := cur.Byte
	if b > len(text) {
		b = len(text)
	}
	col := grapheme.VisualCol(text, b)
	next := grapheme.NextBoundary(text, b)
	width := grapheme.ClusterWidth(text[b:next])
	return &style.Span{
		Line:     cur.Line,
		StartCol: col,
		EndCol:   col + width,
		Attr:     style.AttrInvertCursor,
	}
}

// paintCursorOverlay paints the inverted cursor cluster on top of already
// painted content. An empty cluster (cursor at end of line) paints an
// inverted space.
func (e *Engine) paintCursorOverlay(w *backend.BatchWriter, snap Snapshot, first, endExcl int) {
	span := e.computeCursorSpan(snap, first, endExcl)
	if span == nil || span.StartCol >= snap.Width {
		return
	}
	e.layer.Clear()
	e.layer.Push(*span)

	text, _ := lineText(snap.Buffer, snap.Cursor.Line)
	b := snap.Cursor.Byte
	if b > len(text) {
		b = len(text)
	}
	cluster := text[b:grapheme.NextBoundary(text, b)]
	if cluster == "" {
		cluster = " "
	}
	w.MoveTo(span.StartCol, span.Line-first)
	w.PrintInverted(cluster)
}

// paintOverlayRows paints diagnostic rows directly above the status line.
func (e *Engine) paintOverlayRows(w *backend.BatchWriter, lines []string, width, height int) {
	if len(lines) == 0 || len(lines) >= height {
		return
	}
	firstRow := height - 1 - len(lines)
	for i, line := range lines {
		e.paintRow(w, firstRow+i, line, width)
	}
}

// maybeStatus repaints the status row only when its text changed since the
// last paint.
func (e *Engine) maybeStatus(w *backend.BatchWriter, status string, height int) {
	if height == 0 {
		return
	}
	if status == e.prevStatus {
		e.metrics.StatusSkipped.Add(1)
		return
	}
	row := height - 1
	w.MoveTo(0, row)
	w.ClearLine(row)
	w.Print(status)
	e.prevStatus = status
}

// flush drains the writer into the sink and folds command counts into the
// metrics.
func (e *Engine) flush(w *backend.BatchWriter) error {
	prints, cells, err := w.Flush()
	e.metrics.PrintCommands.Add(prints)
	e.metrics.CellsPrinted.Add(cells)
	if err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}
