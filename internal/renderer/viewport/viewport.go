// Package viewport tracks which buffer lines occupy the text area.
package viewport

// Viewport is the window of buffer lines shown in the text area. First is
// the top visible buffer line; Rows is the text height (total height minus
// the status line).
type Viewport struct {
	First int
	Rows  int
}

// Visible reports whether a buffer line is inside the viewport.
func (v *Viewport) Visible(line int) bool {
	return line >= v.First && line < v.First+v.Rows
}

// EnsureVisible moves the viewport the minimum distance needed to bring line
// into view. It returns the old and new first lines and whether a move
// happened, shaped for a scroll mark.
func (v *Viewport) EnsureVisible(line int) (oldFirst, newFirst int, moved bool) {
	oldFirst = v.First
	switch {
	case line < v.First:
		v.First = line
	case v.Rows > 0 && line >= v.First+v.Rows:
		v.First = line - v.Rows + 1
	}
	if v.First < 0 {
		v.First = 0
	}
	return oldFirst, v.First, v.First != oldFirst
}

// ScrollBy moves the viewport by delta lines, clamped to [0, maxLine]. It
// returns the old and new first lines and whether a move happened.
func (v *Viewport) ScrollBy(delta, maxLine int) (oldFirst, newFirst int, moved bool) {
	oldFirst = v.First
	v.First += delta
	if v.First > maxLine {
		v.First = maxLine
	}
	if v.First < 0 {
		v.First = 0
	}
	return oldFirst, v.First, v.First != oldFirst
}
