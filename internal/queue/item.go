package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Item is the unit of work drained by consumer loops. Implementations carry
// their own payload; Execute must honor ctx cancellation for long-running
// work so shutdown is not held hostage by slow items.
type Item interface {
	// ID uniquely identifies the item for logging and journal records.
	ID() string
	// Kind names the category of work (ingest, maintenance, ...).
	Kind() string
	// Execute performs the work. A non-nil error marks the item failed.
	Execute(ctx context.Context) error
}

// Task is a function-backed Item with a generated identity.
type Task struct {
	id        string
	kind      string
	submitted time.Time
	run       func(ctx context.Context) error
}

// NewTask wraps run as a queue item of the given kind.
func NewTask(kind string, run func(ctx context.Context) error) *Task {
	return &Task{
		id:        uuid.NewString(),
		kind:      kind,
		submitted: time.Now().UTC(),
		run:       run,
	}
}

func (t *Task) ID() string { return t.id }

func (t *Task) Kind() string { return t.kind }

// SubmittedAt reports when the task was created.
func (t *Task) SubmittedAt() time.Time { return t.submitted }

func (t *Task) Execute(ctx context.Context) error {
	if t.run == nil {
		return nil
	}
	return t.run(ctx)
}
