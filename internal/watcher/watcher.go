// Package watcher monitors the snapshot directory for artifacts that
// appear or disappear outside the API, such as files copied in from a
// phone or removed by hand.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
)

// EventType classifies a directory change.
type EventType int

const (
	// EventAdded means an artifact finished writing and is ready to read.
	EventAdded EventType = iota
	// EventRemoved means an artifact was deleted.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes one settled change to a snapshot artifact.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}

// Options tunes the watcher.
type Options struct {
	// SettleDelay is how long a file must stop changing before it is
	// reported. Copies from slow media arrive in bursts of writes.
	SettleDelay time.Duration
	// Suffix limits events to matching files.
	Suffix string
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = 500 * time.Millisecond
	}
	if o.Suffix == "" {
		o.Suffix = snapshot.ArtifactSuffix
	}
}

// pendingEvent tracks a file that may still be changing.
type pendingEvent struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// Watcher reports settled artifact changes in a single directory.
type Watcher struct {
	dir    string
	opts   Options
	logger *logger.Logger
	fs     *fsnotify.Watcher

	pending map[string]*pendingEvent
	mu      sync.Mutex

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher over dir. The directory must exist.
func New(dir string, log *logger.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fs.Add(filepath.Clean(dir)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     filepath.Clean(dir),
		opts:    opts,
		logger:  log,
		fs:      fs,
		pending: make(map[string]*pendingEvent),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start processes events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("watching snapshot directory", "dir", w.dir)
	<-ctx.Done()
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.errors <- err
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name
	if !strings.HasSuffix(path, w.opts.Suffix) {
		return
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.cancelPending(path)
		w.emit(Event{Type: EventRemoved, Path: path})
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.startSettling(path)
	}
}

// startSettling arms the settle timer for path, restarting any timer
// already running for it.
func (w *Watcher) startSettling(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		w.logger.Warn("stat failed for changed artifact", "path", path, "error", err)
		delete(w.pending, path)
		return
	}
	if info.IsDir() {
		return
	}

	pending := &pendingEvent{size: info.Size(), modTime: info.ModTime()}
	pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(path)
	})
	w.pending[path] = pending
}

func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, exists := w.pending[path]
	if !exists {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.emit(Event{Type: EventRemoved, Path: path})
		return
	}

	if info.Size() != pending.size || info.ModTime() != pending.modTime {
		// Still changing, wait another round.
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(path)
		})
		return
	}

	delete(w.pending, path)
	w.emit(Event{
		Type:    EventAdded,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// Events returns the channel of settled artifact changes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of backend errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop releases the watcher. Events and Errors are closed.
func (w *Watcher) Stop() error {
	close(w.done)

	w.mu.Lock()
	for _, pending := range w.pending {
		pending.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	w.fs.Close()
	w.wg.Wait()

	close(w.events)
	close(w.errors)
	return nil
}
