package shared

import (
	"context"
	"time"
)

// Security event kinds recorded by the audit trail.
const (
	EventAuthFailure  = "auth.failure"
	EventAccessDenied = "document.access_denied"
)

// SecurityEvent describes an authentication failure or a denied access
// attempt. Events are recorded out of band: publishing must never block
// or fail the request that produced them.
type SecurityEvent struct {
	Kind       string    `json:"kind"`
	ActorID    int64     `json:"actor_id"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SecurityEventSink accepts security events for asynchronous recording.
type SecurityEventSink interface {
	Publish(ctx context.Context, event SecurityEvent) error
}

// NopSink discards events. Used in tests and when the queue is disabled.
type NopSink struct{}

// Publish implements SecurityEventSink.
func (NopSink) Publish(context.Context, SecurityEvent) error { return nil }
