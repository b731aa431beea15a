// Package jobs wires the asynchronous security-event audit trail. HTTP
// handlers publish events to the queue; the worker drains them into
// audit_logs so a rejected request never waits on a database write.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/docshield/docshield/internal/jobs"
	"github.com/docshield/docshield/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSecurityEvent is the task type for audit-trail events.
	TaskTypeSecurityEvent = "security:event"
)

// NewSecurityEventTask constructs an Asynq task for a security event.
func NewSecurityEventTask(event shared.SecurityEvent) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSecurityEvent, data), nil
}

// AuditRecorder persists security events; satisfied by shared.AuditLogger.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SecurityEventJob drains security events into the audit trail.
type SecurityEventJob struct {
	audit   AuditRecorder
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewSecurityEventJob constructs the job handler. metrics may be nil.
func NewSecurityEventJob(audit AuditRecorder, logger *slog.Logger, metrics *jobmetrics.Metrics) *SecurityEventJob {
	return &SecurityEventJob{audit: audit, logger: logger, metrics: metrics}
}

// Handle processes TaskTypeSecurityEvent tasks.
func (j *SecurityEventJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskTypeSecurityEvent)
	var event shared.SecurityEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		j.logger.Error("malformed security event payload", slog.Any("error", err))
		return tracker.End(asynq.SkipRetry)
	}
	if event.Kind == "" || event.Entity == "" || event.EntityID == "" {
		j.logger.Warn("incomplete security event dropped", slog.String("kind", event.Kind))
		return tracker.End(asynq.SkipRetry)
	}
	return tracker.End(j.audit.Record(ctx, shared.AuditLog{
		ActorID:  event.ActorID,
		Action:   event.Kind,
		Entity:   event.Entity,
		EntityID: event.EntityID,
		Meta:     eventMeta(event),
		At:       event.OccurredAt,
	}))
}

func eventMeta(event shared.SecurityEvent) map[string]any {
	if event.Detail == "" {
		return nil
	}
	return map[string]any{"detail": event.Detail}
}
