// Package pipeline drives classification, parsing and formatting of input
// lines and hands the results to the console and broadcast sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gratian-dicu-sv/cleanlogs/internal/format"
	"github.com/gratian-dicu-sv/cleanlogs/internal/model"
	"github.com/gratian-dicu-sv/cleanlogs/internal/parser"
)

const invalidLineMsg = "Invalid JSON log line"

// Console receives display output.
type Console interface {
	Render(entry model.Entry) error
	Banner(device string) error
}

// Publisher fans entries out to subscribers. Publish must not block.
type Publisher interface {
	Publish(entry model.Entry)
}

// Pipeline processes lines one at a time, in arrival order.
type Pipeline struct {
	parser    *parser.Parser
	registry  *format.Registry
	tracker   *Tracker
	console   Console
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithTracker replaces the default tracker, which starts with no device.
func WithTracker(t *Tracker) Option {
	return func(p *Pipeline) { p.tracker = t }
}

// WithLogger sets the logger used for per-line diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock sets the time source for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline. publisher may be nil when nothing subscribes.
func New(registry *format.Registry, console Console, publisher Publisher, opts ...Option) *Pipeline {
	p := &Pipeline{
		parser:    parser.New(),
		registry:  registry,
		tracker:   NewTracker(""),
		console:   console,
		publisher: publisher,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes lines until the channel is closed or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, lines <-chan model.RawLine) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-lines:
			if !ok {
				return
			}
			p.process(raw)
		}
	}
}

// ProcessLine handles a single line read from stdin.
func (p *Pipeline) ProcessLine(line string) {
	p.process(model.RawLine{Text: line, Source: "stdin"})
}

func (p *Pipeline) process(raw model.RawLine) {
	if !parser.IsCandidate(raw.Text) {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error(invalidLineMsg, "line", raw.Text, "err", fmt.Errorf("panic: %v", rec))
		}
	}()

	res, err := p.parser.Parse(raw.Text)
	switch {
	case errors.Is(err, parser.ErrMalformedJSON):
		p.logger.Error(invalidLineMsg, "line", raw.Text, "err", err)
		return
	case err != nil:
		p.logger.Debug("skipping line", "reason", err, "source", raw.Source)
		return
	}

	lc := res.Context
	entry := model.Entry{
		ID:        uuid.NewString(),
		Timestamp: p.now(),
		Source:    raw.Source,
		Tag:       lc.Name,
		Level:     lc.Level.Name,
		Device:    lc.DeviceName,
		Message:   p.registry.Format(lc.Name, raw.Text, res.Stripped),
		Raw:       raw.Text,
		Context:   lc.JSON,
	}

	if p.tracker.Observe(lc.DeviceName) {
		if err := p.console.Banner(lc.DeviceName); err != nil {
			p.logger.Warn("banner failed", "err", err)
		}
	}

	if err := p.console.Render(entry); err != nil {
		p.logger.Warn("render failed", "err", err)
	}

	if p.publisher != nil {
		p.publisher.Publish(entry)
	}
}
