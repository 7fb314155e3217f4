// Package statusline composes the one-line editor status text. Composition
// is split into ordered segments so future additions (diagnostics, VCS
// state) slot in without touching the formatting of existing parts.
package statusline

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Context carries everything needed to render the status line. Line and Col
// are 0-based; they display 1-based.
type Context struct {
	Mode          string
	FileName      string
	Dirty         bool
	Line          int
	Col           int
	CommandActive bool
	CommandBuffer string
	Message       string
}

type segmentKind int

const (
	segMode segmentKind = iota
	segFileName
	segPosition
	segCommand
)

type segment struct {
	kind segmentKind
	text string
	line int
	col  int
}

// compose produces the ordered segment list for a context.
func compose(ctx Context) []segment {
	name := " [No Name]"
	if ctx.FileName != "" {
		name = " " + filepath.Base(ctx.FileName)
	}
	if ctx.Dirty {
		name += "*"
	}

	segs := []segment{
		{kind: segMode, text: ctx.Mode},
		{kind: segFileName, text: name},
		{kind: segPosition, line: ctx.Line + 1, col: ctx.Col + 1},
	}
	if ctx.CommandActive {
		segs = append(segs, segment{kind: segCommand, text: strings.TrimPrefix(ctx.CommandBuffer, ":")})
	}
	return segs
}

// Build renders the status text: "[MODE] name[*] Ln X, Col Y :cmd". The
// colon is always present; the command follows it only while active.
func Build(ctx Context) string {
	var b strings.Builder
	b.Grow(48)
	for _, seg := range compose(ctx) {
		switch seg.kind {
		case segMode:
			b.WriteByte('[')
			b.WriteString(seg.text)
			b.WriteByte(']')
		case segFileName:
			b.WriteString(seg.text)
		case segPosition:
			b.WriteString(" Ln ")
			b.WriteString(strconv.Itoa(seg.line))
			b.WriteString(", Col ")
			b.WriteString(strconv.Itoa(seg.col))
			b.WriteString(" :")
		case segCommand:
			b.WriteString(seg.text)
		}
	}
	return b.String()
}

// BuildWithMessage appends an ephemeral message right-aligned within width.
// The message is dropped entirely when it does not fit alongside the base
// text with at least one separating space.
func BuildWithMessage(ctx Context, width int) string {
	base := Build(ctx)
	if ctx.Message == "" {
		return base
	}
	pad := width - len(base) - len(ctx.Message)
	if pad < 1 {
		return base
	}
	return base + strings.Repeat(" ", pad) + ctx.Message
}
