package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceWindow absorbs the write bursts editors produce when saving.
const debounceWindow = 100 * time.Millisecond

// Watcher reloads the config file when it changes and hands the result to a
// callback. Watching the parent directory instead of the file itself keeps
// rename-based saves (write temp, rename over) visible.
type Watcher struct {
	path     string
	onChange func(Config)
	log      *zap.Logger

	fw   *fsnotify.Watcher
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts watching path. onChange runs on the watcher goroutine
// with each successfully reloaded config.
func NewWatcher(path string, onChange func(Config), log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching config dir: %w", err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		log:      log,
		fw:       fw,
		stop:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	close(w.stop)
	err := w.fw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	var pending <-chan time.Time
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(debounceWindow)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed", zap.Error(err))
				continue
			}
			w.log.Info("config reloaded", zap.String("path", w.path))
			w.onChange(cfg)
		}
	}
}
