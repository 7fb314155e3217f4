// Package rowcache tracks what the terminal currently shows for each visible
// row, so partial renders can compare incoming line content against what is
// already on screen and skip unchanged rows.
package rowcache

import (
	"github.com/cespare/xxhash/v2"
)

// LineHash identifies on-screen row content. The byte length disambiguates
// hash collisions cheaply and gates the trimmed-diff path, which only fires
// when an edit preserves length.
type LineHash struct {
	Sum uint64
	Len int
}

// Hash computes the content hash of an EOL-trimmed line.
func Hash(s string) LineHash {
	return LineHash{Sum: xxhash.Sum64String(s), Len: len(s)}
}

// TrimEOL strips a trailing "\n" or "\r\n" so hashes are stable across
// buffers that store terminators and ones that do not.
func TrimEOL(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n = len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}

type row struct {
	hash  LineHash
	text  string
	known bool
}

// Cache mirrors the text area of the terminal. Row indices are cache-relative
// (0 = top visible row); the mapping to buffer lines is viewportStart + index.
// Cache length equals the number of buffer lines actually visible, which can
// be shorter than the text height near end of file.
type Cache struct {
	viewportStart  int
	width          int
	rows           []row
	lastCursorLine int
}

// New returns a cold cache.
func New() *Cache {
	return &Cache{lastCursorLine: -1}
}

// Clear drops all cached rows. The next render against a cleared cache must
// be a full repaint.
func (c *Cache) Clear() {
	c.rows = c.rows[:0]
	c.viewportStart = 0
	c.width = 0
	c.lastCursorLine = -1
}

// Reset begins rebuilding the cache for a new viewport geometry. Rows are
// appended with PushLine in top-to-bottom order.
func (c *Cache) Reset(first, width int) {
	c.rows = c.rows[:0]
	c.viewportStart = first
	c.width = width
}

// PushLine appends the next visible row during a full rebuild.
func (c *Cache) PushLine(text string) {
	c.rows = append(c.rows, row{hash: Hash(text), text: text, known: true})
}

// Len reports the number of cached rows.
func (c *Cache) Len() int { return len(c.rows) }

// ViewportStart reports the first buffer line the cache describes.
func (c *Cache) ViewportStart() int { return c.viewportStart }

// Width reports the terminal width the cache was built for.
func (c *Cache) Width() int { return c.width }

// Get returns the hash for a cache-relative row. ok is false when the row is
// out of range or was never painted.
func (c *Cache) Get(i int) (LineHash, bool) {
	if i < 0 || i >= len(c.rows) || !c.rows[i].known {
		return LineHash{}, false
	}
	return c.rows[i].hash, true
}

// SetHash records the hash of a freshly repainted row.
func (c *Cache) SetHash(i int, h LineHash) {
	if i < 0 || i >= len(c.rows) {
		return
	}
	c.rows[i].hash = h
	c.rows[i].known = true
}

// SetPrevText records the exact text painted to a row, enabling trimmed
// diffs on the next repaint of the same row.
func (c *Cache) SetPrevText(i int, text string) {
	if i < 0 || i >= len(c.rows) {
		return
	}
	c.rows[i].text = text
}

// PrevText returns the last text painted to a row, if known.
func (c *Cache) PrevText(i int) (string, bool) {
	if i < 0 || i >= len(c.rows) || !c.rows[i].known {
		return "", false
	}
	return c.rows[i].text, true
}

// LastCursorLine reports the buffer line the cursor overlay was last painted
// on, or -1 when unknown.
func (c *Cache) LastCursorLine() int { return c.lastCursorLine }

// SetLastCursorLine records where the cursor overlay was painted.
func (c *Cache) SetLastCursorLine(line int) { c.lastCursorLine = line }

// Warm reports whether the cache matches the given viewport geometry and can
// back a partial render. A width change or viewport jump makes it cold.
func (c *Cache) Warm(first, width, visible int) bool {
	return len(c.rows) > 0 &&
		c.viewportStart == first &&
		c.width == width &&
		len(c.rows) == visible
}

// ShiftForScroll realigns the cache after the viewport moved by delta lines
// (positive = scrolled down). Rows still visible are carried over; rows that
// entered the viewport are fetched through line, hashed, and returned as
// cache-relative indices for the caller to repaint. visibleRows bounds the
// new cache length; line reports buffer content and existence.
func (c *Cache) ShiftForScroll(delta, newFirst, visibleRows int, line func(int) (string, bool)) []int {
	old := c.rows
	fresh := make([]row, 0, visibleRows)
	var entering []int
	for i := 0; i < visibleRows; i++ {
		j := i + delta
		if j >= 0 && j < len(old) && old[j].known {
			fresh = append(fresh, old[j])
			continue
		}
		text, ok := line(newFirst + i)
		if !ok {
			break
		}
		text = TrimEOL(text)
		fresh = append(fresh, row{hash: Hash(text), text: text, known: true})
		entering = append(entering, i)
	}
	c.rows = fresh
	c.viewportStart = newFirst
	return entering
}
