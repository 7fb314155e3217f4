// Package grapheme provides cluster segmentation and display-width queries
// for the renderer. All width decisions flow through ClusterWidth so every
// render path slices and measures text identically; a cluster is never split
// across paint commands.
package grapheme

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// NextBoundary returns the byte offset of the next grapheme cluster boundary
// after offset. Offsets at or beyond the end of the string return len(s).
func NextBoundary(s string, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset >= len(s) {
		return len(s)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[offset:], -1)
	return offset + len(cluster)
}

// PrevBoundary returns the byte offset of the grapheme cluster boundary
// preceding offset, or 0 when offset is at or before the first cluster.
func PrevBoundary(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(s) {
		offset = len(s)
	}
	pos := 0
	for pos < offset {
		next := NextBoundary(s, pos)
		if next >= offset {
			return pos
		}
		pos = next
	}
	return pos
}

// VisualCol returns the terminal column at which the cluster starting at the
// given byte offset is displayed, summing the widths of all preceding
// clusters. Offsets beyond the end of the string measure the full line.
func VisualCol(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	col := 0
	pos := 0
	for pos < offset {
		next := NextBoundary(s, pos)
		col += ClusterWidth(s[pos:next])
		pos = next
	}
	return col
}

// ClusterWidth returns the terminal column width of a single grapheme
// cluster, clamped to 1 or 2. Over-estimation costs a blank cell;
// under-estimation drifts the whole row, so ambiguous composites widen.
func ClusterWidth(cluster string) int {
	if cluster == "" {
		return 1
	}
	// Fast path: single-byte ASCII.
	if len(cluster) == 1 && cluster[0] < 0x80 {
		return 1
	}
	runes := []rune(cluster)
	var w int
	if len(runes) == 1 {
		w = runewidth.RuneWidth(runes[0])
	} else {
		w = uniseg.StringWidth(cluster)
	}
	if w < 1 {
		return 1
	}
	if w > 2 {
		return 2
	}
	return w
}

// Oracle bundles the package functions behind a value, for callers that
// take cluster segmentation as an injected dependency.
type Oracle struct{}

func (Oracle) NextBoundary(s string, offset int) int { return NextBoundary(s, offset) }
func (Oracle) PrevBoundary(s string, offset int) int { return PrevBoundary(s, offset) }
func (Oracle) VisualCol(s string, offset int) int    { return VisualCol(s, offset) }
func (Oracle) ClusterWidth(cluster string) int       { return ClusterWidth(cluster) }
