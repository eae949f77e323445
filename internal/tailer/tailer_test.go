package tailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratian-dicu-sv/cleanlogs/internal/watcher"
)

func TestTailNewLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")
	require.NoError(t, os.WriteFile(logPath, []byte("existing line\n"), 0o644))

	w, err := watcher.New([]string{logPath}, nil)
	require.NoError(t, err)

	ckpt, err := NewCheckpoint(filepath.Join(dir, ".cleanlogs-state.json"))
	require.NoError(t, err)

	tail := New(w, ckpt, nil)

	ctx, cancel := context.WithCancel(context.Background())

	go w.Start(ctx)
	go tail.Start(ctx)

	// Give the tailer a moment to initialize and seek to end.
	time.Sleep(300 * time.Millisecond)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, _ = f.WriteString("hello from test\n")
	f.Close()

	select {
	case raw := <-tail.Lines():
		assert.Equal(t, "hello from test", raw.Text)
		assert.Equal(t, w.Paths()[0], raw.Source)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for log entry")
	}

	// Cancel and allow goroutines to stop before TempDir cleanup.
	cancel()
	time.Sleep(200 * time.Millisecond)
}

func TestCheckpointSaveLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ckpt.json")

	c1, err := NewCheckpoint(path)
	require.NoError(t, err)
	c1.Set("/var/log/app.log", 42)
	c1.Set("/var/log/err.log", 1024)
	require.NoError(t, c1.Save())

	c2, err := NewCheckpoint(path)
	require.NoError(t, err)

	v1, ok := c2.Get("/var/log/app.log")
	assert.True(t, ok)
	assert.Equal(t, int64(42), v1)

	v2, ok := c2.Get("/var/log/err.log")
	assert.True(t, ok)
	assert.Equal(t, int64(1024), v2)

	_, ok = c2.Get("/nonexistent")
	assert.False(t, ok)
}

func TestCheckpointCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ckpt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewCheckpoint(path)
	require.Error(t, err)
}
