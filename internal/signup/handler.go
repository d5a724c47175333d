// AngelaMos | 2026
// handler.go

package signup

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/provider-requests", h.Submit)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/provider-requests", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Get("/{requestID}", h.Get)
		r.Post("/{requestID}/approve", h.Approve)
		r.Post("/{requestID}/reject", h.Reject)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	pr, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeSignupError(w, err)
		return
	}

	core.Created(w, pr)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.service.List(r.Context()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	pr, err := h.service.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeSignupError(w, err)
		return
	}

	core.OK(w, pr)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Approve(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeSignupError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reject(r.Context(), chi.URLParam(r, "requestID")); err != nil {
		writeSignupError(w, err)
		return
	}

	core.NoContent(w)
}

func writeSignupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "provider request")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.ConflictError("OWNER_HAS_PROVIDER", "owner already runs a provider"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		core.JSONError(w, core.ConflictError("INVALID_TRANSITION", err.Error()))
	default:
		core.InternalServerError(w, err)
	}
}
