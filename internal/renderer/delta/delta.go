// Package delta accumulates semantic invalidation intents between frames and
// collapses them into a single per-frame render decision.
//
// Producers describe what changed (cursor moved, lines edited, viewport
// scrolled, status text changed) without knowing how the frame will be
// painted. The scheduler merges those intents and applies threshold policy
// to pick an execution strategy, so intent and strategy stay separately
// observable.
package delta

import "fmt"

// Kind discriminates the semantic delta variants.
type Kind int

const (
	// KindCursorOnly means the cursor moved within unchanged text.
	KindCursorOnly Kind = iota
	// KindStatusLine means only the status line contents changed.
	KindStatusLine
	// KindLines means text changed within a half-open line range.
	KindLines
	// KindScroll means the viewport's first visible line moved.
	KindScroll
	// KindFull means the entire frame must be repainted.
	KindFull
)

func (k Kind) String() string {
	switch k {
	case KindCursorOnly:
		return "cursor_only"
	case KindStatusLine:
		return "status_line"
	case KindLines:
		return "lines"
	case KindScroll:
		return "scroll"
	case KindFull:
		return "full"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Delta is one semantic invalidation event. Start/End hold the half-open
// buffer line range for KindLines; OldFirst/NewFirst hold the viewport
// movement for KindScroll. Other kinds carry no payload.
type Delta struct {
	Kind     Kind
	Start    int
	End      int
	OldFirst int
	NewFirst int
}

// CursorOnly reports a cursor movement with no text change.
func CursorOnly() Delta { return Delta{Kind: KindCursorOnly} }

// StatusLine reports a status-line content change.
func StatusLine() Delta { return Delta{Kind: KindStatusLine} }

// Lines reports edits confined to buffer lines [start, end).
func Lines(start, end int) Delta { return Delta{Kind: KindLines, Start: start, End: end} }

// Scroll reports a viewport move from oldFirst to newFirst.
func Scroll(oldFirst, newFirst int) Delta {
	return Delta{Kind: KindScroll, OldFirst: oldFirst, NewFirst: newFirst}
}

// Full requests a whole-frame repaint.
func Full() Delta { return Delta{Kind: KindFull} }

func (d Delta) String() string {
	switch d.Kind {
	case KindLines:
		return fmt.Sprintf("lines[%d,%d)", d.Start, d.End)
	case KindScroll:
		return fmt.Sprintf("scroll{%d->%d}", d.OldFirst, d.NewFirst)
	default:
		return d.Kind.String()
	}
}

// Decision is the per-frame output of Consume. Semantic is the merged intent;
// Effective is the strategy to execute, which diverges from Semantic only
// when threshold policy escalates an oversized scroll to a full repaint.
type Decision struct {
	Semantic  Delta
	Effective Delta
}
