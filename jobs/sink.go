package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/docshield/docshield/internal/shared"
)

// Sink publishes security events onto the Asynq queue. It implements
// shared.SecurityEventSink for the HTTP layer.
type Sink struct {
	client *asynq.Client
}

// NewSink constructs a queue-backed event sink.
func NewSink(redisOpts asynq.RedisClientOpt) *Sink {
	return &Sink{client: asynq.NewClient(redisOpts)}
}

// Publish enqueues the event for asynchronous recording.
func (s *Sink) Publish(ctx context.Context, event shared.SecurityEvent) error {
	task, err := NewSecurityEventTask(event)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
	return err
}

// Close releases client resources.
func (s *Sink) Close() error {
	return s.client.Close()
}

var _ shared.SecurityEventSink = (*Sink)(nil)
