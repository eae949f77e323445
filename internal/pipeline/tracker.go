package pipeline

// Tracker remembers the last device a structured line came from.
// It is not safe for concurrent use; the pipeline owns it.
type Tracker struct {
	last string
}

// NewTracker returns a Tracker that considers initial the current device.
func NewTracker(initial string) *Tracker {
	return &Tracker{last: initial}
}

// Observe records device and reports whether it differs from the previous
// one.
func (t *Tracker) Observe(device string) bool {
	changed := device != t.last
	t.last = device
	return changed
}

// Last returns the most recently observed device.
func (t *Tracker) Last() string { return t.last }
