package documents

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/docshield/docshield/internal/authz"
	"github.com/docshield/docshield/internal/shared"
)

// Service is the application-level gateway (Mode A): every read and
// mutation of an existing document runs through authz.Decide, and every
// denial is collapsed into shared.ErrNotFound before it leaves this
// layer so callers cannot tell a denied document from a missing one.
//
// The requester is an explicit argument on every call; the service never
// reaches into ambient state for an identity.
type Service struct {
	repo   Repository
	logger *slog.Logger
	events shared.SecurityEventSink
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger, events shared.SecurityEventSink) *Service {
	if events == nil {
		events = shared.NopSink{}
	}
	return &Service{repo: repo, logger: logger, events: events}
}

// GetSecure fetches a document, enforcing owner-or-admin access.
func (s *Service) GetSecure(ctx context.Context, id int64, requester authz.Principal) (*Document, error) {
	return s.fetchChecked(ctx, id, requester)
}

// GetVulnerable fetches a document with no ownership check whatsoever.
// This is the demonstrated IDOR flaw, kept intentionally: any caller
// obtains any document that exists. Do not "fix" it; the secure paths
// exist alongside it for comparison.
func (s *Service) GetVulnerable(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// ListMine returns the requester's own documents.
func (s *Service) ListMine(ctx context.Context, requester authz.Principal) ([]Document, error) {
	return s.repo.ListByOwner(ctx, requester.ID)
}

// Create inserts a new document. The owner is always the requester;
// creation needs no decision because ownership is established here.
func (s *Service) Create(ctx context.Context, params CreateParams, requester authz.Principal) (*Document, error) {
	return s.repo.Create(ctx, params.Title, params.Content, requester.ID)
}

// Update mutates a document after re-running the ownership check. A
// document that fails the check is reported as not found and left
// untouched.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams, requester authz.Principal) (*Document, error) {
	doc, err := s.fetchChecked(ctx, id, requester)
	if err != nil {
		return nil, err
	}
	if params.Title != nil {
		doc.Title = *params.Title
	}
	if params.Content != nil {
		doc.Content = *params.Content
	}
	return s.repo.Update(ctx, doc)
}

// Delete removes a document after re-running the ownership check.
// Deleting a missing or invisible id returns ErrNotFound on every
// attempt, including repeats.
func (s *Service) Delete(ctx context.Context, id int64, requester authz.Principal) error {
	if _, err := s.fetchChecked(ctx, id, requester); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		// Lost a race with a concurrent delete; same outcome for the caller.
		return shared.ErrNotFound
	}
	return err
}

func (s *Service) fetchChecked(ctx context.Context, id int64, requester authz.Principal) (*Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.Decide(doc.OwnerID, requester.ID, requester.Role).Allowed() {
		s.recordDenial(ctx, id, requester)
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (s *Service) recordDenial(ctx context.Context, id int64, requester authz.Principal) {
	if err := s.events.Publish(ctx, shared.SecurityEvent{
		Kind:       shared.EventAccessDenied,
		ActorID:    requester.ID,
		Entity:     "document",
		EntityID:   strconv.FormatInt(id, 10),
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("publish denial event", slog.Any("error", err))
	}
}
