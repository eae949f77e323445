package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Kind is what happened to a followed file.
type Kind int

const (
	// Appended means new bytes may be readable at the end of the file.
	Appended Kind = iota + 1
	// Gone means the file was removed or renamed away, usually by rotation.
	Gone
)

func (k Kind) String() string {
	switch k {
	case Appended:
		return "appended"
	case Gone:
		return "gone"
	default:
		return "unknown"
	}
}

// Event is a change to one followed file.
type Event struct {
	Path string
	Kind Kind
}

// Watcher reports appends and rotations of the files matched at startup.
// Events for any other path are dropped.
type Watcher struct {
	fsw      *fsnotify.Watcher
	Events   chan Event
	paths    []string
	followed map[string]struct{}
	logger   *slog.Logger
}

// New expands the glob patterns and watches every matched file once, in
// match order.
func New(patterns []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		Events:   make(chan Event, 256),
		followed: make(map[string]struct{}),
		logger:   logger,
	}

	for _, pattern := range patterns {
		matches, err := expandGlob(pattern)
		if err != nil {
			logger.Warn("failed to expand pattern", "pattern", pattern, "err", err)
			continue
		}
		for _, m := range matches {
			if err := w.follow(m); err != nil {
				logger.Warn("cannot follow file", "path", m, "err", err)
			}
		}
	}

	return w, nil
}

func (w *Watcher) follow(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, ok := w.followed[abs]; ok {
		return nil
	}
	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("watching %s: %w", abs, err)
	}
	w.followed[abs] = struct{}{}
	w.paths = append(w.paths, abs)
	return nil
}

// Start forwards events until ctx is cancelled, then closes Events.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	for {
		select {
		case <-ctx.Done():
			return
		case fev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			ev, ok := w.classify(fev)
			if !ok {
				continue
			}
			select {
			case w.Events <- ev:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// classify maps an fsnotify event on a followed file to an Event. Chmod and
// Create carry nothing to read: a watched file never reports its own Create.
func (w *Watcher) classify(fev fsnotify.Event) (Event, bool) {
	if _, ok := w.followed[fev.Name]; !ok {
		return Event{}, false
	}
	switch {
	case fev.Has(fsnotify.Remove), fev.Has(fsnotify.Rename):
		return Event{Path: fev.Name, Kind: Gone}, true
	case fev.Has(fsnotify.Write):
		return Event{Path: fev.Name, Kind: Appended}, true
	default:
		return Event{}, false
	}
}

// Paths returns the followed files as absolute paths.
func (w *Watcher) Paths() []string {
	return w.paths
}

// ReWatch resumes notifications for a followed file that reappeared after
// rotation.
func (w *Watcher) ReWatch(path string) error {
	if _, ok := w.followed[path]; !ok {
		return fmt.Errorf("%s is not followed", path)
	}
	return w.fsw.Add(path)
}

// expandGlob resolves a glob pattern, including ** segments, to files.
func expandGlob(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
}
