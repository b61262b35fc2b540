package script

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/hookline/internal/logging"
)

// DefaultDebounce is how long the watcher waits for changes to settle.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when starting a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Watcher reloads a script directory into an engine when its *.lua files
// change.
type Watcher struct {
	engine   *Engine
	dir      string
	debounce time.Duration
	logger   *logging.Logger
	onReload func(n int, err error)

	fsw     *fsnotify.Watcher
	closeCh chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithReloadHandler is called after every reload with the number of
// scripts run and the error, if any.
func WithReloadHandler(fn func(n int, err error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a watcher for dir. Call Start to begin watching.
func NewWatcher(engine *Engine, dir string, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		engine:   engine,
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   logging.Nop(),
		fsw:      fsw,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches the directory until ctx is done or Close is called.
// Reloads run with ctx.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.started {
		return nil
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return err
	}
	w.started = true

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Close stops watching and waits for a pending reload to finish.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("script change", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("script watcher error", "err", err)
		case <-fire:
			fire = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	n, err := w.engine.LoadDir(ctx, w.dir)
	if err != nil {
		w.logger.Error("script reload failed", "dir", w.dir, "err", err)
	} else {
		w.logger.Info("scripts reloaded", "dir", w.dir, "count", n)
	}
	if w.onReload != nil {
		w.onReload(n, err)
	}
}

func relevant(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != ".lua" {
		return false
	}
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}
