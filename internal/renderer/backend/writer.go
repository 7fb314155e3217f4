// Package backend turns render output into terminal commands. Render paths
// talk to a BatchWriter, which coalesces single-cell prints and forwards the
// resulting command stream to a Sink. The tcell-backed TermSink drives a real
// terminal; MemorySink records commands for tests.
package backend

// CommandKind discriminates terminal commands.
type CommandKind int

const (
	// CmdMoveTo positions the output cursor at (Col, Row).
	CmdMoveTo CommandKind = iota
	// CmdClearLine erases row Row.
	CmdClearLine
	// CmdPrint writes Text at the current position with default style.
	CmdPrint
	// CmdPrintInverted writes Text with reverse video, used for the cursor
	// cell overlay.
	CmdPrintInverted
	// CmdScrollUp shifts rows [Top, Bottom] up by N, used after scrolling
	// down in the buffer.
	CmdScrollUp
	// CmdScrollDown shifts rows [Top, Bottom] down by N.
	CmdScrollDown
)

func (k CommandKind) String() string {
	switch k {
	case CmdMoveTo:
		return "move_to"
	case CmdClearLine:
		return "clear_line"
	case CmdPrint:
		return "print"
	case CmdPrintInverted:
		return "print_inverted"
	case CmdScrollUp:
		return "scroll_up"
	case CmdScrollDown:
		return "scroll_down"
	default:
		return "unknown"
	}
}

// Command is one terminal operation. Fields are used per kind: Col/Row for
// MoveTo, Row for ClearLine, Text for prints, N/Top/Bottom for scrolls.
type Command struct {
	Kind   CommandKind
	Col    int
	Row    int
	Text   string
	N      int
	Top    int
	Bottom int
}

// Sink receives the batched command stream. Apply stages a command; Flush
// makes staged output visible.
type Sink interface {
	Apply(Command) error
	Flush() error
}
