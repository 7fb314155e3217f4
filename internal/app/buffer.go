package app

import (
	"os"
	"strings"
)

// Buffer is a line-oriented text buffer. Lines are stored without
// terminators.
type Buffer struct {
	lines []string
}

// NewBuffer returns a buffer with a single empty line.
func NewBuffer() *Buffer {
	return &Buffer{lines: []string{""}}
}

// LoadFile reads a file into a buffer. A missing trailing newline still
// yields the final line; an empty file yields one empty line.
func LoadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return &Buffer{lines: lines}, nil
}

func (b *Buffer) LineCount() int { return len(b.lines) }

func (b *Buffer) Line(i int) (string, bool) {
	if i < 0 || i >= len(b.lines) {
		return "", false
	}
	return b.lines[i], true
}

// InsertRune inserts r at a byte offset within a line and reports the new
// byte offset after the inserted rune.
func (b *Buffer) InsertRune(line, at int, r rune) int {
	if line < 0 || line >= len(b.lines) {
		return at
	}
	s := b.lines[line]
	if at < 0 {
		at = 0
	}
	if at > len(s) {
		at = len(s)
	}
	ins := string(r)
	b.lines[line] = s[:at] + ins + s[at:]
	return at + len(ins)
}

// DeleteBefore removes the byte range [from, at) on a line, used for
// backspace over a cluster. It reports the resulting cursor byte.
func (b *Buffer) DeleteBefore(line, from, at int) int {
	if line < 0 || line >= len(b.lines) {
		return at
	}
	s := b.lines[line]
	if from < 0 || at > len(s) || from >= at {
		return at
	}
	b.lines[line] = s[:from] + s[at:]
	return from
}

// SplitLine breaks a line at a byte offset, pushing the tail onto a new
// following line.
func (b *Buffer) SplitLine(line, at int) {
	if line < 0 || line >= len(b.lines) {
		return
	}
	s := b.lines[line]
	if at < 0 {
		at = 0
	}
	if at > len(s) {
		at = len(s)
	}
	head, tail := s[:at], s[at:]
	b.lines[line] = head
	b.lines = append(b.lines, "")
	copy(b.lines[line+2:], b.lines[line+1:])
	b.lines[line+1] = tail
}

// JoinWithPrevious appends a line's content to the previous line and removes
// it, reporting the byte offset of the join point.
func (b *Buffer) JoinWithPrevious(line int) int {
	if line <= 0 || line >= len(b.lines) {
		return 0
	}
	at := len(b.lines[line-1])
	b.lines[line-1] += b.lines[line]
	b.lines = append(b.lines[:line], b.lines[line+1:]...)
	return at
}
