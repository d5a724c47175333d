// AngelaMos | 2026
// handler.go

package coupon

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.With(authenticator).Post("/coupons/validate", h.Validate)

	r.Route("/admin/coupons", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/{couponID}/toggle", h.Toggle)
		r.Delete("/{couponID}", h.Delete)
	})
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Validate(r.Context(), req)
	if err != nil {
		writeCouponError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.service.List(r.Context()))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeCouponError(w, err)
		return
	}

	core.Created(w, c)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Toggle(r.Context(), chi.URLParam(r, "couponID"))
	if err != nil {
		writeCouponError(w, err)
		return
	}

	core.OK(w, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "couponID")); err != nil {
		writeCouponError(w, err)
		return
	}

	core.NoContent(w)
}

func writeCouponError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCouponInvalid):
		core.JSONError(w, core.UnprocessableError(
			"COUPON_INVALID",
			"coupon code is not valid",
		))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "coupon")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
