// Package events publishes domain events emitted by the case and task
// engines. The default publisher writes structured log lines; downstream
// systems (notices, interfaces) subscribe by swapping in their own Publisher.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is a single domain event.
type Event struct {
	Type       string    `json:"type"`
	CaseID     string    `json:"case_id,omitempty"`
	TaskID     string    `json:"task_id,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher receives domain events. Publish must not block the caller for
// long; slow consumers should buffer internally.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// LogPublisher writes events as structured log lines.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a publisher backed by logger.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, ev Event) {
	p.logger.Info().
		Str("event", ev.Type).
		Str("case_id", ev.CaseID).
		Str("task_id", ev.TaskID).
		Str("actor", ev.Actor).
		Str("detail", ev.Detail).
		Time("occurred_at", ev.OccurredAt).
		Msg("domain event")
}

// Recorder is a Publisher for tests that records every published event.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
