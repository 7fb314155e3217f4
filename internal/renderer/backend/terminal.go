package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/termframe/internal/renderer/grapheme"
)

// TermSink applies commands to a tcell screen. It tracks the output position
// itself so Print advances by cluster width, keeping wide and combining
// characters aligned with what the row cache assumed.
type TermSink struct {
	screen tcell.Screen
	mu     sync.Mutex
	x, y   int
}

// NewTermSink wraps an initialized tcell screen.
func NewTermSink(screen tcell.Screen) *TermSink {
	return &TermSink{screen: screen}
}

// Size reports the current screen dimensions.
func (t *TermSink) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.screen.Size()
}

func (t *TermSink) Apply(cmd Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch cmd.Kind {
	case CmdMoveTo:
		t.x, t.y = cmd.Col, cmd.Row
	case CmdClearLine:
		width, _ := t.screen.Size()
		for x := 0; x < width; x++ {
			t.screen.SetContent(x, cmd.Row, ' ', nil, tcell.StyleDefault)
		}
	case CmdPrint:
		t.printClusters(cmd.Text, tcell.StyleDefault)
	case CmdPrintInverted:
		t.printClusters(cmd.Text, tcell.StyleDefault.Reverse(true))
	case CmdScrollUp:
		t.shiftRegion(-cmd.N, cmd.Top, cmd.Bottom)
	case CmdScrollDown:
		t.shiftRegion(cmd.N, cmd.Top, cmd.Bottom)
	}
	return nil
}

func (t *TermSink) printClusters(s string, style tcell.Style) {
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		runes := []rune(cluster)
		if len(runes) == 0 {
			continue
		}
		t.screen.SetContent(t.x, t.y, runes[0], runes[1:], style)
		t.x += grapheme.ClusterWidth(cluster)
	}
}

// shiftRegion moves rows within [top, bottom] by n (positive = down). Rows
// vacated at the far edge are cleared; the caller repaints entering rows.
func (t *TermSink) shiftRegion(n, top, bottom int) {
	if n == 0 || top > bottom {
		return
	}
	width, height := t.screen.Size()
	if bottom >= height {
		bottom = height - 1
	}
	copyRow := func(src, dst int) {
		for x := 0; x < width; x++ {
			mainc, combc, style, _ := t.screen.GetContent(x, src)
			t.screen.SetContent(x, dst, mainc, combc, style)
		}
	}
	clearRow := func(y int) {
		for x := 0; x < width; x++ {
			t.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
	if n < 0 {
		// Shift up: row y takes content from y-n below it.
		for y := top; y <= bottom+n; y++ {
			copyRow(y-n, y)
		}
		for y := bottom + n + 1; y <= bottom; y++ {
			clearRow(y)
		}
		return
	}
	// Shift down: walk bottom-up so sources are read before overwrite.
	for y := bottom; y >= top+n; y-- {
		copyRow(y-n, y)
	}
	for y := top; y < top+n && y <= bottom; y++ {
		clearRow(y)
	}
}

func (t *TermSink) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.screen.Show()
	return nil
}
