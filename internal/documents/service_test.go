package documents

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/internal/authz"
	"github.com/docshield/docshield/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	docs   map[int64]*Document
	nextID int64

	getError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{docs: make(map[int64]*Document), nextID: 1}
}

func (m *mockRepository) seed(doc Document) *Document {
	stored := doc
	if stored.ID == 0 {
		stored.ID = m.nextID
	}
	if stored.ID >= m.nextID {
		m.nextID = stored.ID + 1
	}
	m.docs[stored.ID] = &stored
	return &stored
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Document, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockRepository) ListByOwner(_ context.Context, ownerID int64) ([]Document, error) {
	var out []Document
	for _, doc := range m.docs {
		if doc.OwnerID == ownerID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, title, content string, ownerID int64) (*Document, error) {
	now := time.Now().UTC()
	doc := &Document{ID: m.nextID, Title: title, Content: content, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	m.nextID++
	m.docs[doc.ID] = doc
	copied := *doc
	return &copied, nil
}

func (m *mockRepository) Update(_ context.Context, doc *Document) (*Document, error) {
	stored, ok := m.docs[doc.ID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	stored.Title = doc.Title
	stored.Content = doc.Content
	stored.UpdatedAt = time.Now().UTC()
	copied := *stored
	return &copied, nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.docs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

var _ Repository = (*mockRepository)(nil)

type captureSink struct {
	events []shared.SecurityEvent
}

func (c *captureSink) Publish(_ context.Context, event shared.SecurityEvent) error {
	c.events = append(c.events, event)
	return nil
}

// ============================================================================
// FIXTURES
// ============================================================================

var (
	alice = authz.Principal{ID: 1, Role: authz.RoleStandard}
	bob   = authz.Principal{ID: 2, Role: authz.RoleStandard}
	admin = authz.Principal{ID: 5, Role: authz.RoleAdministrator}
)

func newTestService(t *testing.T) (*Service, *mockRepository, *captureSink) {
	t.Helper()
	repo := newMockRepository()
	sink := &captureSink{}
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), sink)
	return service, repo, sink
}

// ============================================================================
// TESTS
// ============================================================================

func TestGetSecureOwner(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", Content: "private", OwnerID: alice.ID})

	doc, err := service.GetSecure(context.Background(), seeded.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "Notes", doc.Title)
	assert.Equal(t, alice.ID, doc.OwnerID)
}

func TestGetSecureHidesForeignDocuments(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", OwnerID: alice.ID})

	_, deniedErr := service.GetSecure(context.Background(), seeded.ID, bob)
	_, missingErr := service.GetSecure(context.Background(), 9999, bob)

	// Denied and absent must be the same error, not merely similar ones.
	require.ErrorIs(t, deniedErr, shared.ErrNotFound)
	require.ErrorIs(t, missingErr, shared.ErrNotFound)
	assert.Equal(t, missingErr.Error(), deniedErr.Error())
}

func TestGetSecureAdminBypassesOwnership(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", OwnerID: alice.ID})

	doc, err := service.GetSecure(context.Background(), seeded.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, doc.OwnerID)
}

func TestGetVulnerableSkipsOwnership(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", Content: "private", OwnerID: alice.ID})

	// The same requester that the secure path rejects gets the document
	// here. Both assertions in one test: the flaw and the fix coexist.
	_, err := service.GetSecure(context.Background(), seeded.ID, bob)
	require.ErrorIs(t, err, shared.ErrNotFound)

	doc, err := service.GetVulnerable(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", doc.Content)
	assert.Equal(t, alice.ID, doc.OwnerID)
}

func TestCreateAssignsRequesterAsOwner(t *testing.T) {
	service, _, _ := newTestService(t)

	doc, err := service.Create(context.Background(), CreateParams{Title: "New", Content: "body"}, bob)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, doc.OwnerID)
}

func TestListMineFiltersByOwner(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.seed(Document{Title: "Alice 1", OwnerID: alice.ID})
	repo.seed(Document{Title: "Alice 2", OwnerID: alice.ID})
	repo.seed(Document{Title: "Bob 1", OwnerID: bob.ID})

	docs, err := service.ListMine(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.Equal(t, alice.ID, doc.OwnerID)
	}
}

func TestUpdateDeniedLeavesDocumentUntouched(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Original", Content: "body", OwnerID: alice.ID})

	newTitle := "Hijacked"
	_, err := service.Update(context.Background(), seeded.ID, UpdateParams{Title: &newTitle}, bob)
	require.ErrorIs(t, err, shared.ErrNotFound)

	stored, err := repo.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)
}

func TestUpdateByOwnerAndAdmin(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Original", Content: "body", OwnerID: alice.ID})

	ownerTitle := "Owner edit"
	doc, err := service.Update(context.Background(), seeded.ID, UpdateParams{Title: &ownerTitle}, alice)
	require.NoError(t, err)
	assert.Equal(t, "Owner edit", doc.Title)
	assert.Equal(t, "body", doc.Content)

	adminContent := "admin edit"
	doc, err = service.Update(context.Background(), seeded.ID, UpdateParams{Content: &adminContent}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Owner edit", doc.Title)
	assert.Equal(t, "admin edit", doc.Content)
}

func TestDeleteDeniedLeavesDocument(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", OwnerID: alice.ID})

	require.ErrorIs(t, service.Delete(context.Background(), seeded.ID, bob), shared.ErrNotFound)

	_, err := repo.Get(context.Background(), seeded.ID)
	require.NoError(t, err)
}

func TestDeleteIdempotentNotFound(t *testing.T) {
	service, repo, _ := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", OwnerID: alice.ID})

	require.NoError(t, service.Delete(context.Background(), seeded.ID, alice))
	// Second and third attempts report NotFound without escalation.
	assert.ErrorIs(t, service.Delete(context.Background(), seeded.ID, alice), shared.ErrNotFound)
	assert.ErrorIs(t, service.Delete(context.Background(), seeded.ID, alice), shared.ErrNotFound)
}

func TestDenialPublishesSecurityEvent(t *testing.T) {
	service, repo, sink := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", OwnerID: alice.ID})

	_, _ = service.GetSecure(context.Background(), seeded.ID, bob)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, shared.EventAccessDenied, event.Kind)
	assert.Equal(t, bob.ID, event.ActorID)
	assert.Equal(t, "document", event.Entity)
}

func TestAllowedAccessPublishesNothing(t *testing.T) {
	service, repo, sink := newTestService(t)
	seeded := repo.seed(Document{Title: "Notes", OwnerID: alice.ID})

	_, err := service.GetSecure(context.Background(), seeded.ID, alice)
	require.NoError(t, err)
	assert.Empty(t, sink.events)
}
