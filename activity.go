package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityEventType enumerates the recorded business events.
type ActivityEventType string

const (
	ActivityEventOrganizationCreated     ActivityEventType = "organization.created"
	ActivityEventUserCreated             ActivityEventType = "user.created"
	ActivityEventJobCreated              ActivityEventType = "job.created"
	ActivityEventApplicationCreated      ActivityEventType = "application.created"
	ActivityEventJobStateChanged         ActivityEventType = "job.state.changed"
	ActivityEventApplicationStateChanged ActivityEventType = "application.state.changed"
	ActivityEventLoginSuccess            ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure            ActivityEventType = "auth.login.failure"
)

// ActivityEvent describes something that happened after a commit. Plaintext
// credentials and tokens are never part of an event.
type ActivityEvent struct {
	EventType  ActivityEventType
	Entity     string
	EntityID   uuid.UUID
	Trigger    Trigger
	FromState  string
	ToState    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
