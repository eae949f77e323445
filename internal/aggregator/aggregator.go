package aggregator

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gratian-dicu-sv/cleanlogs/internal/hub"
	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
)

const epsWindow = 5 * time.Second

// Stats holds a point-in-time snapshot of aggregated metrics.
type Stats struct {
	Uptime      string           `json:"uptime"`
	TotalEvents int64            `json:"total_events"`
	EPS         float64          `json:"eps"`
	LevelCounts map[string]int64 `json:"level_counts"`
	TagCounts   map[string]int64 `json:"tag_counts"`
	Devices     []string         `json:"devices"`
	DroppedLogs int64            `json:"dropped_logs"`
	Subscribers int              `json:"subscribers"`
}

// Aggregator subscribes to the Hub and computes time-windowed metrics.
type Aggregator struct {
	mu          sync.RWMutex
	startTime   time.Time
	totalEvents int64
	levelCounts map[string]int64
	tagCounts   map[string]int64
	devices     []string
	window      []time.Time // arrival times for EPS calculation
	dropped     func() int64
	subscribers func() int
	entries     <-chan model.Entry
}

// New creates an Aggregator that reads from the given Hub subscriber channel.
// droppedFn and subscribersFn provide live values from the Hub.
func New(entries <-chan model.Entry, droppedFn func() int64, subscribersFn func() int) *Aggregator {
	return &Aggregator{
		startTime:   time.Now(),
		levelCounts: make(map[string]int64),
		tagCounts:   make(map[string]int64),
		dropped:     droppedFn,
		subscribers: subscribersFn,
		entries:     entries,
	}
}

// FromHub subscribes an Aggregator to h. The reported subscriber count
// excludes the aggregator's own subscription.
func FromHub(h *hub.Hub) *Aggregator {
	return New(h.Subscribe(), h.Dropped, func() int {
		return max(h.Subscribers()-1, 0)
	})
}

// Snapshot returns the current metrics.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	levels := make(map[string]int64, len(a.levelCounts))
	for k, v := range a.levelCounts {
		levels[k] = v
	}
	tags := make(map[string]int64, len(a.tagCounts))
	for k, v := range a.tagCounts {
		tags[k] = v
	}

	cutoff := time.Now().Add(-epsWindow)
	var recent int
	for _, t := range a.window {
		if t.After(cutoff) {
			recent++
		}
	}

	return Stats{
		Uptime:      time.Since(a.startTime).Truncate(time.Second).String(),
		TotalEvents: a.totalEvents,
		EPS:         float64(recent) / epsWindow.Seconds(),
		LevelCounts: levels,
		TagCounts:   tags,
		Devices:     append([]string(nil), a.devices...),
		DroppedLogs: a.dropped(),
		Subscribers: a.subscribers(),
	}
}

// Start begins consuming entries and updating metrics. Blocks until the
// context is cancelled or the channel is closed.
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-a.entries:
			if !ok {
				return
			}
			a.record(entry)
		case <-ticker.C:
			a.prune()
		}
	}
}

func (a *Aggregator) record(entry model.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalEvents++
	level := entry.Level
	if level == "" {
		level = "UNKNOWN"
	}
	a.levelCounts[level]++
	a.tagCounts[entry.Tag]++
	if !slices.Contains(a.devices, entry.Device) {
		a.devices = append(a.devices, entry.Device)
	}
	a.window = append(a.window, time.Now())
}

// prune removes arrival times older than the EPS window.
func (a *Aggregator) prune() {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-epsWindow)
	i := 0
	for _, t := range a.window {
		if t.After(cutoff) {
			a.window[i] = t
			i++
		}
	}
	a.window = a.window[:i]
}
