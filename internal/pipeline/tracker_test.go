package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerObserve(t *testing.T) {
	t.Parallel()

	tr := NewTracker("")

	assert.True(t, tr.Observe("pixel"))
	assert.False(t, tr.Observe("pixel"))
	assert.True(t, tr.Observe("iphone"))
	assert.True(t, tr.Observe("pixel"))
	assert.Equal(t, "pixel", tr.Last())
}

func TestTrackerEmptyDevice(t *testing.T) {
	t.Parallel()

	tr := NewTracker("")

	assert.False(t, tr.Observe(""), "empty name matches the initial state")
	assert.True(t, tr.Observe("pixel"))
	assert.True(t, tr.Observe(""))
}
