package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docshield/docshield/internal/auth"
	"github.com/docshield/docshield/internal/platform/httpx"
	"github.com/docshield/docshield/internal/shared"
)

// Handler manages user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authmw  *auth.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw *auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.Get("/me", h.getMe)
		r.Get("/", h.listUsers)
	})
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(user *User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		h.logger.Error("principal missing past auth middleware")
		httpx.RespondError(w, shared.ErrPrincipalUnbound)
		return
	}
	user, err := h.service.GetUser(r.Context(), principal.ID)
	if err != nil {
		h.logger.Error("get current user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}
