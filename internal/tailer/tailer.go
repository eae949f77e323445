package tailer

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
	"github.com/gratian-dicu-sv/cleanlogs/internal/watcher"
)

// Tailer reads newly appended lines from watched files and emits RawLine values.
type Tailer struct {
	mu     sync.Mutex
	files  map[string]*trackedFile
	out    chan model.RawLine
	ckpt   *Checkpoint
	events <-chan watcher.Event
	watch  *watcher.Watcher
	logger *slog.Logger
}

type trackedFile struct {
	path   string
	file   *os.File
	reader *bufio.Reader
	offset int64
	buf    string // partial line buffer
}

// New creates a Tailer that reads events from the given Watcher. ckpt may be
// nil, in which case every file is followed from its current end.
func New(w *watcher.Watcher, ckpt *Checkpoint, logger *slog.Logger) *Tailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tailer{
		files:  make(map[string]*trackedFile),
		out:    make(chan model.RawLine, 512),
		ckpt:   ckpt,
		events: w.Events,
		watch:  w,
		logger: logger,
	}
}

// Lines returns the channel where raw log lines are sent.
func (t *Tailer) Lines() <-chan model.RawLine {
	return t.out
}

// Start begins processing watcher events. Blocks until context is cancelled.
func (t *Tailer) Start(ctx context.Context) {
	defer close(t.out)

	for _, p := range t.watch.Paths() {
		t.openFile(p)
	}

	saveTicker := time.NewTicker(5 * time.Second)
	defer saveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.saveCheckpoint()
			t.closeAll()
			return

		case ev, ok := <-t.events:
			if !ok {
				t.saveCheckpoint()
				t.closeAll()
				return
			}
			t.handleEvent(ctx, ev)

		case <-saveTicker.C:
			t.saveCheckpoint()
		}
	}
}

// handleEvent dispatches watcher events to the appropriate handler.
func (t *Tailer) handleEvent(ctx context.Context, ev watcher.Event) {
	switch ev.Kind {
	case watcher.Appended:
		t.readNewLines(ctx, ev.Path)

	case watcher.Gone:
		// Rotated or deleted: close and wait for the path to come back.
		t.closeFile(ev.Path)
		t.forget(ev.Path)
		go t.reconnect(ctx, ev.Path)
	}
}

// openFile opens a file for tailing, resuming from the checkpointed offset.
func (t *Tailer) openFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.files[path]; exists {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		t.logger.Warn("cannot open file", "path", path, "err", err)
		return
	}

	// Resume from checkpoint or start at end of file.
	var offset int64
	if saved, ok := t.checkpointed(path); ok {
		offset = saved
	} else {
		offset, _ = f.Seek(0, io.SeekEnd)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		t.logger.Warn("cannot seek", "path", path, "offset", offset, "err", err)
	}

	t.files[path] = &trackedFile{
		path:   path,
		file:   f,
		reader: bufio.NewReader(f),
		offset: offset,
	}
}

// readNewLines reads from the last offset to EOF and emits complete lines.
// A trailing fragment without a newline waits for the next write.
func (t *Tailer) readNewLines(ctx context.Context, path string) {
	t.mu.Lock()
	tf, ok := t.files[path]
	t.mu.Unlock()
	if !ok {
		return
	}

	for {
		chunk, err := tf.reader.ReadString('\n')
		tf.offset += int64(len(chunk))

		if strings.HasSuffix(chunk, "\n") {
			line := strings.TrimRight(tf.buf+chunk, "\r\n")
			tf.buf = ""
			select {
			case t.out <- model.RawLine{Text: line, Source: path}:
			case <-ctx.Done():
				return
			}
		} else {
			tf.buf += chunk
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.logger.Warn("read error", "path", path, "err", err)
			}
			break
		}
	}

	// Only complete lines count as consumed.
	if t.ckpt != nil {
		t.ckpt.Set(path, tf.offset-int64(len(tf.buf)))
	}
}

func (t *Tailer) checkpointed(path string) (int64, bool) {
	if t.ckpt == nil {
		return 0, false
	}
	return t.ckpt.Get(path)
}

// forget drops the saved offset of a rotated file so the replacement is read
// from the start.
func (t *Tailer) forget(path string) {
	if t.ckpt != nil {
		t.ckpt.Set(path, 0)
	}
}

// closeFile releases a tracked file.
func (t *Tailer) closeFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tf, ok := t.files[path]; ok {
		tf.file.Close()
		delete(t.files, path)
	}
}

// reconnect polls for a file to reappear after rotation (up to 5 retries).
func (t *Tailer) reconnect(ctx context.Context, path string) {
	for i := 0; i < 5; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
		if _, err := os.Stat(path); err == nil {
			t.logger.Info("reconnected to rotated file", "path", path)
			if err := t.watch.ReWatch(path); err != nil {
				t.logger.Warn("cannot watch rotated file", "path", path, "err", err)
			}
			t.openFile(path)
			return
		}
	}
	t.logger.Warn("gave up reconnecting", "path", path, "retries", 5)
}

// saveCheckpoint persists the current offsets to disk.
func (t *Tailer) saveCheckpoint() {
	if t.ckpt == nil {
		return
	}
	if err := t.ckpt.Save(); err != nil {
		t.logger.Warn("checkpoint save failed", "err", err)
	}
}

// closeAll closes all tracked file handles.
func (t *Tailer) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for path, tf := range t.files {
		tf.file.Close()
		delete(t.files, path)
	}
}
