// Package style provides the per-frame style layer: line-local column spans
// tagged with a display attribute. Spans use half-open [StartCol, EndCol)
// ranges in visual columns and must align to grapheme cluster boundaries;
// callers compute columns through the width oracle before constructing spans.
package style

// Attr identifies the display attribute a span applies.
type Attr uint8

const (
	// AttrInvertCursor is the reverse-video software cursor.
	AttrInvertCursor Attr = iota

	// AttrSyntax is an opaque syntax class (reserved).
	AttrSyntax

	// AttrSelection is a selection highlight (reserved).
	AttrSelection

	// AttrOverlay is a diagnostic overlay highlight (reserved).
	AttrOverlay
)

// String returns the attribute name.
func (a Attr) String() string {
	switch a {
	case AttrInvertCursor:
		return "invert-cursor"
	case AttrSyntax:
		return "syntax"
	case AttrSelection:
		return "selection"
	case AttrOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// Span is a styled run of visual columns on one buffer line.
type Span struct {
	Line     int
	StartCol int // inclusive
	EndCol   int // exclusive
	Attr     Attr
}

// Width returns the span's column count.
func (s Span) Width() int {
	if s.EndCol <= s.StartCol {
		return 0
	}
	return s.EndCol - s.StartCol
}

// Contains reports whether the visual column lies inside the span.
func (s Span) Contains(col int) bool {
	return col >= s.StartCol && col < s.EndCol
}

// Layer collects the spans for one frame. A single Layer is reused across
// frames via Clear to avoid allocation churn.
type Layer struct {
	spans []Span
}

// NewLayer returns an empty style layer.
func NewLayer() *Layer {
	return &Layer{}
}

// Clear empties the layer, retaining capacity.
func (l *Layer) Clear() {
	l.spans = l.spans[:0]
}

// Push appends a span. Empty or inverted spans are rejected as a no-op.
func (l *Layer) Push(s Span) {
	if s.EndCol <= s.StartCol || s.StartCol < 0 || s.Line < 0 {
		return
	}
	l.spans = append(l.spans, s)
}

// CursorSpan returns the first inverted-cursor span, or nil.
func (l *Layer) CursorSpan() *Span {
	for i := range l.spans {
		if l.spans[i].Attr == AttrInvertCursor {
			return &l.spans[i]
		}
	}
	return nil
}

// Spans returns the current spans in push order.
func (l *Layer) Spans() []Span {
	return l.spans
}
