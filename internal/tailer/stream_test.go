package tailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

func collect(t *testing.T, ch <-chan model.RawLine) []model.RawLine {
	t.Helper()

	var got []model.RawLine
	timeout := time.After(2 * time.Second)
	for {
		select {
		case l, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, l)
		case <-timeout:
			t.Fatal("timed out reading lines")
		}
	}
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("first\r\nsecond\n\nlast without newline")
	got := collect(t, ReadLines(context.Background(), in, "stdin", nil))

	require.Len(t, got, 4)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "", got[2].Text)
	assert.Equal(t, "last without newline", got[3].Text)
	assert.Equal(t, "stdin", got[3].Source)
}

func TestReadLinesLongLine(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 1<<20)
	got := collect(t, ReadLines(context.Background(), strings.NewReader(long+"\nshort\n"), "stdin", nil))

	require.Len(t, got, 2)
	assert.Len(t, got[0].Text, 1<<20)
	assert.Equal(t, "short", got[1].Text)
}

func TestReadLinesCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	// More lines than the channel buffer, never drained.
	in := strings.NewReader(strings.Repeat("line\n", 2000))
	ch := ReadLines(ctx, in, "stdin", nil)

	cancel()

	// The reader goroutine must stop and close the channel.
	n := len(collect(t, ch))
	assert.LessOrEqual(t, n, 2000)
}
