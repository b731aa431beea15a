package documents

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/docshield/docshield/internal/auth"
	"github.com/docshield/docshield/internal/authz"
	"github.com/docshield/docshield/internal/observability"
	"github.com/docshield/docshield/internal/platform/httpx"
	"github.com/docshield/docshield/internal/shared"
)

// Handler manages document endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rls       *RLSRepository
	authmw    *auth.Middleware
	validator *validator.Validate
	metrics   *observability.Metrics
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rls *RLSRepository, authmw *auth.Middleware, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rls:       rls,
		authmw:    authmw,
		validator: validator.New(),
		metrics:   metrics,
	}
}

// MountRoutes registers document routes. The vulnerable fetch is mounted
// outside the authenticated group on purpose: it is the demonstration
// target and performs no checks of any kind.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vulnerable/{id}", h.getVulnerable)

	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.Get("/me", h.listMine)
		r.Get("/secure/{id}", h.getSecure)
		r.Get("/rls", h.listRLS)
		r.Get("/rls/{id}", h.getRLS)
		r.Put("/rls/{id}", h.updateRLS)
		r.Delete("/rls/{id}", h.deleteRLS)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type documentResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(doc *Document) documentResponse {
	return documentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		OwnerID:   doc.OwnerID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func (h *Handler) getVulnerable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.GetVulnerable(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "vulnerable fetch")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(doc))
}

func (h *Handler) getSecure(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.GetSecure(r.Context(), id, requester)
	h.metrics.ObserveDecision("app", err == nil)
	if err != nil {
		h.respondError(w, err, "secure fetch")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(doc))
}

func (h *Handler) getRLS(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.rls.Get(r.Context(), id, requester)
	h.metrics.ObserveDecision("rls", err == nil)
	if err != nil {
		h.respondError(w, err, "rls fetch")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(doc))
}

func (h *Handler) listRLS(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	docs, err := h.rls.List(r.Context(), requester)
	if err != nil {
		h.respondError(w, err, "rls list")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponseList(docs))
}

func (h *Handler) updateRLS(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, validationDetail(err)))
		return
	}
	if req.Title == nil && req.Content == nil {
		httpx.RespondError(w, fmt.Errorf("%w: nothing to update", shared.ErrValidation))
		return
	}

	doc, err := h.rls.Update(r.Context(), id, UpdateParams{Title: req.Title, Content: req.Content}, requester)
	h.metrics.ObserveDecision("rls", err == nil)
	if err != nil {
		h.respondError(w, err, "rls update")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(doc))
}

func (h *Handler) deleteRLS(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	err := h.rls.Delete(r.Context(), id, requester)
	h.metrics.ObserveDecision("rls", err == nil)
	if err != nil {
		h.respondError(w, err, "rls delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	docs, err := h.service.ListMine(r.Context(), requester)
	if err != nil {
		h.respondError(w, err, "list mine")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponseList(docs))
}

type createRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, validationDetail(err)))
		return
	}

	doc, err := h.service.Create(r.Context(), CreateParams{Title: req.Title, Content: req.Content}, requester)
	if err != nil {
		h.respondError(w, err, "create document")
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(doc))
}

type updateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid JSON body", shared.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", shared.ErrValidation, validationDetail(err)))
		return
	}
	if req.Title == nil && req.Content == nil {
		httpx.RespondError(w, fmt.Errorf("%w: nothing to update", shared.ErrValidation))
		return
	}

	doc, err := h.service.Update(r.Context(), id, UpdateParams{Title: req.Title, Content: req.Content}, requester)
	if err != nil {
		h.respondError(w, err, "update document")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(doc))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	requester, ok := h.requester(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, requester); err != nil {
		h.respondError(w, err, "delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requester extracts the principal bound by the auth middleware. Its
// absence past RequireAuth is a wiring fault and fails closed.
func (h *Handler) requester(w http.ResponseWriter, r *http.Request) (authz.Principal, bool) {
	requester, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		h.logger.Error("principal missing past auth middleware", slog.String("path", r.URL.Path))
		httpx.RespondError(w, shared.ErrPrincipalUnbound)
		return authz.Principal{}, false
	}
	return requester, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		// An unparseable id cannot name an existing document.
		httpx.RespondError(w, shared.ErrNotFound)
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	if !errors.Is(err, shared.ErrNotFound) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func toResponseList(docs []Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, toResponse(&docs[i]))
	}
	return out
}

func validationDetail(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "invalid payload"
	}
	return fmt.Sprintf("field %s failed on %s", errs[0].Field(), errs[0].Tag())
}
