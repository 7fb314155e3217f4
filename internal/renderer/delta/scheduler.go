package delta

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultScrollShiftMax is the largest absolute scroll distance executed as a
// scroll-region shift. Larger jumps repaint enough entering rows that the
// shift stops paying for its bookkeeping, so they escalate to a full frame.
const DefaultScrollShiftMax = 12

// Metrics counts semantic outcomes per consumed frame. One semantic kind
// increments per Consume that produced a decision; these deliberately track
// intent, not execution (the engine's render-path metrics cover execution).
type Metrics struct {
	full             atomic.Uint64
	lines            atomic.Uint64
	scroll           atomic.Uint64
	statusLine       atomic.Uint64
	cursorOnly       atomic.Uint64
	collapsedScroll  atomic.Uint64
	suppressedScroll atomic.Uint64
	semanticFrames   atomic.Uint64
}

// MetricsSnapshot is a plain copy of the scheduler counters.
type MetricsSnapshot struct {
	Full             uint64
	Lines            uint64
	Scroll           uint64
	StatusLine       uint64
	CursorOnly       uint64
	CollapsedScroll  uint64
	SuppressedScroll uint64
	SemanticFrames   uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Full:             m.full.Load(),
		Lines:            m.lines.Load(),
		Scroll:           m.scroll.Load(),
		StatusLine:       m.statusLine.Load(),
		CursorOnly:       m.cursorOnly.Load(),
		CollapsedScroll:  m.collapsedScroll.Load(),
		SuppressedScroll: m.suppressedScroll.Load(),
		SemanticFrames:   m.semanticFrames.Load(),
	}
}

func (m *Metrics) incrSemantic(d Delta) {
	switch d.Kind {
	case KindFull:
		m.full.Add(1)
	case KindLines:
		m.lines.Add(1)
	case KindScroll:
		m.scroll.Add(1)
	case KindStatusLine:
		m.statusLine.Add(1)
	case KindCursorOnly:
		m.cursorOnly.Add(1)
	}
}

// Scheduler accumulates marks between frames. Not safe for concurrent use;
// the frame driver owns it on a single goroutine.
type Scheduler struct {
	pending        []Delta
	scrollShiftMax int
	metrics        Metrics
	log            *zap.Logger
}

// NewScheduler returns a scheduler with the default escalation threshold.
func NewScheduler() *Scheduler {
	return &Scheduler{
		scrollShiftMax: DefaultScrollShiftMax,
		log:            zap.NewNop(),
	}
}

// SetScrollShiftMax overrides the scroll escalation threshold. Non-positive
// values are ignored.
func (s *Scheduler) SetScrollShiftMax(n int) {
	if n > 0 {
		s.scrollShiftMax = n
	}
}

// SetLogger installs a logger for trace output. A nil logger disables it.
func (s *Scheduler) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log
}

// MetricsSnapshot returns a copy of the accumulated semantic counters.
func (s *Scheduler) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.snapshot()
}

// Mark records one semantic event. Degenerate marks (an empty or inverted
// Lines range, a Scroll that goes nowhere) are dropped.
func (s *Scheduler) Mark(d Delta) {
	switch d.Kind {
	case KindLines:
		if d.Start < 0 || d.End <= d.Start {
			return
		}
	case KindScroll:
		if d.OldFirst == d.NewFirst {
			return
		}
	}
	s.log.Debug("render mark", zap.Stringer("delta", d))
	s.pending = append(s.pending, d)
}

// MarkStatus records a status-line change without the caller constructing
// the variant.
func (s *Scheduler) MarkStatus() {
	s.Mark(StatusLine())
}

// Consume collapses all marks since the previous Consume into one Decision
// and resets accumulation. It returns nil when nothing was marked.
func (s *Scheduler) Consume() *Decision {
	if len(s.pending) == 0 {
		return nil
	}
	merged := s.collapse()
	s.pending = s.pending[:0]
	s.metrics.incrSemantic(merged)
	s.metrics.semanticFrames.Add(1)

	effective := merged
	if merged.Kind == KindScroll {
		diff := merged.NewFirst - merged.OldFirst
		if diff < 0 {
			diff = -diff
		}
		if diff > s.scrollShiftMax {
			effective = Full()
		}
	}
	s.log.Debug("render delta collapse",
		zap.Stringer("semantic", merged),
		zap.Stringer("effective", effective))
	return &Decision{Semantic: merged, Effective: effective}
}

func (s *Scheduler) collapse() Delta {
	var (
		haveStatus bool
		haveCursor bool
		haveLines  bool
		lineStart  int
		lineEnd    int
		scrolls    int
		oldFirst   int
		newFirst   int
	)
	for _, d := range s.pending {
		switch d.Kind {
		case KindFull:
			return Full()
		case KindStatusLine:
			haveStatus = true
		case KindCursorOnly:
			haveCursor = true
		case KindLines:
			if !haveLines {
				lineStart, lineEnd = d.Start, d.End
				haveLines = true
			} else {
				if d.Start < lineStart {
					lineStart = d.Start
				}
				if d.End > lineEnd {
					lineEnd = d.End
				}
			}
		case KindScroll:
			if scrolls == 0 {
				oldFirst = d.OldFirst
			}
			newFirst = d.NewFirst
			scrolls++
		}
	}
	if scrolls > 0 {
		if scrolls > 1 {
			s.metrics.collapsedScroll.Add(uint64(scrolls - 1))
		}
		if haveLines {
			s.metrics.suppressedScroll.Add(1)
		}
		return Scroll(oldFirst, newFirst)
	}
	if haveLines {
		return Lines(lineStart, lineEnd)
	}
	if haveStatus {
		return StatusLine()
	}
	if haveCursor {
		return CursorOnly()
	}
	return Full()
}
