package renderer

import "github.com/dshills/termframe/internal/renderer/grapheme"

// trimMinSavingsCols is the minimum visual-column saving for a trimmed diff
// to beat a plain line repaint.
const trimMinSavingsCols = 4

// trimResult describes the interior region of a changed line that can be
// repainted without touching its unchanged prefix and suffix.
type trimResult struct {
	prefixCols int
	interior   string
	colsSaved  int
}

// tryTrimLine computes a cluster-aligned common prefix and suffix between
// the previously painted text and the new text. It returns nil when the diff
// cannot be applied safely: identical or length-changing edits, an empty
// interior, a prefix past the right edge, or savings below the minimum.
// Length changes are excluded because without terminal insert/delete cell
// operations a shifted tail would desynchronize the painted suffix.
func tryTrimLine(old, new string, width int) *trimResult {
	if old == new || width == 0 || len(new) != len(old) {
		return nil
	}

	// Longest common prefix over grapheme clusters.
	prefixBytes := 0
	bOld, bNew := 0, 0
	for bOld < len(old) && bNew < len(new) {
		nextOld := grapheme.NextBoundary(old, bOld)
		nextNew := grapheme.NextBoundary(new, bNew)
		if old[bOld:nextOld] != new[bNew:nextNew] {
			break
		}
		if nextOld < nextNew {
			prefixBytes = nextOld
		} else {
			prefixBytes = nextNew
		}
		bOld, bNew = nextOld, nextNew
	}

	// Longest common suffix, never overlapping the prefix and always leaving
	// at least one differing cluster in the interior.
	suffixNewBytes := 0
	eoOld, eoNew := len(old), len(new)
	for eoOld > prefixBytes && eoNew > prefixBytes {
		prevOld := grapheme.PrevBoundary(old, eoOld)
		prevNew := grapheme.PrevBoundary(new, eoNew)
		if old[prevOld:eoOld] != new[prevNew:eoNew] {
			break
		}
		if prevOld <= prefixBytes || prevNew <= prefixBytes {
			break
		}
		suffixNewBytes += eoNew - prevNew
		eoOld, eoNew = prevOld, prevNew
	}

	interior := new[prefixBytes : len(new)-suffixNewBytes]
	if interior == "" {
		return nil
	}
	prefixCols := grapheme.VisualCol(new, prefixBytes)
	if prefixCols >= width {
		return nil
	}
	fullCols := grapheme.VisualCol(new, len(new))
	interiorCols := grapheme.VisualCol(interior, len(interior))
	saved := fullCols - interiorCols
	if saved < trimMinSavingsCols {
		return nil
	}
	return &trimResult{prefixCols: prefixCols, interior: interior, colsSaved: saved}
}
