// Package app wires the terminal, render engine, scheduler, and input
// handling into the interactive frame loop.
package app

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/termframe/internal/config"
	"github.com/dshills/termframe/internal/renderer"
	"github.com/dshills/termframe/internal/renderer/backend"
	"github.com/dshills/termframe/internal/renderer/delta"
	"github.com/dshills/termframe/internal/renderer/dirty"
	"github.com/dshills/termframe/internal/renderer/grapheme"
	"github.com/dshills/termframe/internal/renderer/overlay"
	"github.com/dshills/termframe/internal/renderer/statusline"
	"github.com/dshills/termframe/internal/renderer/viewport"
)

// ErrQuit signals a clean user-requested exit from the event loop.
var ErrQuit = errors.New("quit")

const (
	modeNormal = "NORMAL"
	modeInsert = "INSERT"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// File is an optional file to open on startup.
	File string

	// Debug enables debug logging.
	Debug bool
}

// App coordinates input events, semantic invalidation marks, and frame
// execution.
type App struct {
	screen  tcell.Screen
	sink    *backend.TermSink
	engine  *renderer.Engine
	sched   *delta.Scheduler
	tracker *dirty.Tracker
	overlay *overlay.Overlay

	cfg     config.Config
	watcher *config.Watcher

	buf      *Buffer
	cursor   renderer.Cursor
	vp       viewport.Viewport
	mode     string
	fileName string
	modified bool
	message  string

	log  *zap.Logger
	opts Options
}

// New creates an application with a real terminal screen.
func New(opts Options, log *zap.Logger) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	return newApp(screen, opts, log)
}

func newApp(screen tcell.Screen, opts Options, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	buf := NewBuffer()
	if opts.File != "" {
		if buf, err = LoadFile(opts.File); err != nil {
			return nil, fmt.Errorf("opening %s: %w", opts.File, err)
		}
	}

	sink := backend.NewTermSink(screen)
	engine := renderer.New(sink)
	engine.SetLogger(log)

	sched := delta.NewScheduler()
	sched.SetLogger(log)

	a := &App{
		screen:   screen,
		sink:     sink,
		engine:   engine,
		sched:    sched,
		tracker:  dirty.NewTracker(),
		overlay:  overlay.New(),
		buf:      buf,
		mode:     modeNormal,
		fileName: opts.File,
		log:      log,
		opts:     opts,
	}
	a.applyConfig(cfg)
	engine.SetOverlayProvider(func() []string {
		return a.overlay.Lines(engine.MetricsSnapshot(), sched.MetricsSnapshot())
	})
	return a, nil
}

// applyConfig pushes config values into the pipeline components.
func (a *App) applyConfig(cfg config.Config) {
	a.cfg = cfg
	a.sched.SetScrollShiftMax(cfg.Render.ScrollShiftMax)
	a.engine.SetEscalationThreshold(cfg.Render.EscalationThreshold)
	a.overlay.SetMaxLines(cfg.Render.OverlayLines)
}

// Run initializes the terminal and drives the event loop until quit or
// error. The screen is restored on exit.
func (a *App) Run() error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer a.screen.Fini()
	a.screen.HideCursor()

	if a.opts.ConfigPath != "" {
		w, err := config.NewWatcher(a.opts.ConfigPath, func(cfg config.Config) {
			// Hop onto the event loop; tcell delivers this as EventInterrupt.
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(cfg))
		}, a.log)
		if err != nil {
			a.log.Warn("config watcher unavailable", zap.Error(err))
		} else {
			a.watcher = w
			defer a.watcher.Close()
		}
	}

	_, height := a.screen.Size()
	a.vp.Rows = height - 1
	a.sched.Mark(delta.Full())
	if err := a.renderFrame(); err != nil {
		return err
	}

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := a.handleEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
		if err := a.renderFrame(); err != nil {
			return err
		}
	}
}

func (a *App) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		_, height := ev.Size()
		a.vp.Rows = height - 1
		a.engine.InvalidateForResize()
		a.sched.Mark(delta.Full())
	case *tcell.EventInterrupt:
		if cfg, ok := ev.Data().(config.Config); ok {
			a.applyConfig(cfg)
			a.message = "config reloaded"
			a.sched.Mark(delta.Full())
		}
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return nil
}

func (a *App) handleKey(ev *tcell.EventKey) error {
	if a.mode == modeInsert {
		return a.handleInsertKey(ev)
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ErrQuit
	case tcell.KeyUp:
		a.moveCursorLine(-1)
	case tcell.KeyDown:
		a.moveCursorLine(1)
	case tcell.KeyLeft:
		a.moveCursorCol(-1)
	case tcell.KeyRight:
		a.moveCursorCol(1)
	case tcell.KeyPgUp:
		a.scrollPage(-1)
	case tcell.KeyPgDn:
		a.scrollPage(1)
	case tcell.KeyCtrlL:
		a.engine.InvalidateForResize()
		a.sched.Mark(delta.Full())
	case tcell.KeyF2:
		a.overlay.Toggle()
		a.sched.Mark(delta.Full())
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return ErrQuit
		case 'h':
			a.moveCursorCol(-1)
		case 'j':
			a.moveCursorLine(1)
		case 'k':
			a.moveCursorLine(-1)
		case 'l':
			a.moveCursorCol(1)
		case 'i':
			a.mode = modeInsert
			a.sched.MarkStatus()
		case 'G':
			a.jumpTo(a.buf.LineCount() - 1)
		case 'g':
			a.jumpTo(0)
		}
	}
	return nil
}

func (a *App) handleInsertKey(ev *tcell.EventKey) error {
	line := a.cursor.Line
	switch ev.Key() {
	case tcell.KeyEscape:
		a.mode = modeNormal
		a.sched.MarkStatus()
	case tcell.KeyEnter:
		a.buf.SplitLine(line, a.cursor.Byte)
		a.cursor.Line++
		a.cursor.Byte = 0
		a.modified = true
		// Every visible line from the split point shifts down.
		a.tracker.MarkRange(line, a.vp.First+a.vp.Rows)
		a.sched.Mark(delta.Lines(line, a.vp.First+a.vp.Rows))
		a.ensureCursorVisible()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if a.cursor.Byte > 0 {
			text, _ := a.buf.Line(line)
			prev := grapheme.PrevBoundary(text, a.cursor.Byte)
			a.cursor.Byte = a.buf.DeleteBefore(line, prev, a.cursor.Byte)
			a.modified = true
			a.tracker.Mark(line)
			a.sched.Mark(delta.Lines(line, line+1))
		} else if line > 0 {
			a.cursor.Byte = a.buf.JoinWithPrevious(line)
			a.cursor.Line--
			a.modified = true
			a.tracker.MarkRange(a.cursor.Line, a.vp.First+a.vp.Rows)
			a.sched.Mark(delta.Lines(a.cursor.Line, a.vp.First+a.vp.Rows))
			a.ensureCursorVisible()
		}
	case tcell.KeyRune:
		a.cursor.Byte = a.buf.InsertRune(line, a.cursor.Byte, ev.Rune())
		a.modified = true
		a.tracker.Mark(line)
		a.sched.Mark(delta.Lines(line, line+1))
	}
	return nil
}

func (a *App) moveCursorLine(d int) {
	line := a.cursor.Line + d
	if line < 0 || line >= a.buf.LineCount() {
		return
	}
	a.cursor.Line = line
	a.clampCursorByte()
	a.ensureCursorVisible()
}

func (a *App) moveCursorCol(d int) {
	text, ok := a.buf.Line(a.cursor.Line)
	if !ok {
		return
	}
	if d > 0 {
		if a.cursor.Byte < len(text) {
			a.cursor.Byte = grapheme.NextBoundary(text, a.cursor.Byte)
			a.sched.Mark(delta.CursorOnly())
		}
	} else if a.cursor.Byte > 0 {
		a.cursor.Byte = grapheme.PrevBoundary(text, a.cursor.Byte)
		a.sched.Mark(delta.CursorOnly())
	}
}

func (a *App) jumpTo(line int) {
	if line < 0 {
		line = 0
	}
	if line >= a.buf.LineCount() {
		line = a.buf.LineCount() - 1
	}
	a.cursor.Line = line
	a.clampCursorByte()
	a.ensureCursorVisible()
}

func (a *App) scrollPage(dir int) {
	old, now, moved := a.vp.ScrollBy(dir*a.vp.Rows, a.buf.LineCount()-1)
	if !moved {
		return
	}
	a.cursor.Line = now
	a.clampCursorByte()
	a.sched.Mark(delta.Scroll(old, now))
}

// ensureCursorVisible records the right semantic mark for a cursor move:
// Scroll when the viewport shifted, CursorOnly otherwise.
func (a *App) ensureCursorVisible() {
	old, now, moved := a.vp.EnsureVisible(a.cursor.Line)
	if moved {
		a.sched.Mark(delta.Scroll(old, now))
		return
	}
	a.sched.Mark(delta.CursorOnly())
}

func (a *App) clampCursorByte() {
	text, ok := a.buf.Line(a.cursor.Line)
	if !ok {
		a.cursor.Byte = 0
		return
	}
	if a.cursor.Byte > len(text) {
		a.cursor.Byte = len(text)
	}
}

// snapshot assembles the immutable frame input for the engine.
func (a *App) snapshot() renderer.Snapshot {
	width, height := a.screen.Size()
	text, _ := a.buf.Line(a.cursor.Line)
	col := grapheme.VisualCol(text, a.cursor.Byte)
	status := statusline.BuildWithMessage(statusline.Context{
		Mode:     a.mode,
		FileName: a.fileName,
		Dirty:    a.modified,
		Line:     a.cursor.Line,
		Col:      col,
		Message:  a.message,
	}, width)
	return renderer.Snapshot{
		Buffer:        a.buf,
		Cursor:        a.cursor,
		ViewportFirst: a.vp.First,
		Width:         width,
		Height:        height,
		Status:        status,
	}
}

// renderFrame consumes the scheduler decision and dispatches the effective
// strategy. No marks means no frame.
func (a *App) renderFrame() error {
	d := a.sched.Consume()
	if d == nil {
		return nil
	}
	snap := a.snapshot()
	switch d.Effective.Kind {
	case delta.KindFull:
		return a.engine.RenderFull(snap)
	case delta.KindScroll:
		return a.engine.RenderScrollShift(snap, d.Effective.OldFirst, d.Effective.NewFirst)
	case delta.KindLines:
		return a.engine.RenderLinesPartial(snap, a.tracker)
	case delta.KindCursorOnly, delta.KindStatusLine:
		return a.engine.RenderCursorOnly(snap)
	default:
		return a.engine.RenderFull(snap)
	}
}
