// AngelaMos | 2026
// handler.go

package provider

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/middleware"
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
	authenticator, providerOnly func(http.Handler) http.Handler,
) {
	r.Get("/providers", h.Catalog)
	r.Get("/providers/{providerID}", h.GetListed)

	r.Route("/provider", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(providerOnly)

		r.Get("/dashboard", h.Dashboard)
		r.Post("/online", h.ToggleOnline)
		r.Post("/offline", h.ToggleOffline)
		r.Post("/sync", h.SyncAndConnect)
		r.Post("/orders/{orderID}/complete", h.CompleteOrder)
		r.Post("/orders/{orderID}/status", h.AdvanceOrder)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/providers", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/debts", h.Debts)
		r.Get("/{providerID}", h.Get)
		r.Patch("/{providerID}", h.Update)
		r.Delete("/{providerID}", h.Delete)
		r.Post("/{providerID}/status", h.ToggleStatus)
		r.Post("/{providerID}/settle", h.SettleDebt)
		r.Put("/{providerID}/services/{serviceID}/price", h.SetServicePrice)
	})
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.service.Catalog(r.Context(), r.URL.Query().Get("category")))
}

func (h *Handler) GetListed(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetListed(r.Context(), chi.URLParam(r, "providerID"))
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

// current resolves the provider profile for the signed-in account. Admins
// may act on any provider through the provider_id query parameter.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) (domain.Provider, bool) {
	ctx := r.Context()
	p, err := h.service.Resolve(
		ctx,
		middleware.GetUserID(ctx),
		domain.Role(middleware.GetUserRole(ctx)),
		r.URL.Query().Get("provider_id"),
	)
	if err != nil {
		writeProviderError(w, err, "provider profile")
		return domain.Provider{}, false
	}
	return p, true
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	core.OK(w, h.service.Dashboard(r.Context(), p))
}

func (h *Handler) ToggleOffline(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ToggleOffline(r.Context(), p.ID)
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ToggleOnline(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	resp, err := h.service.ToggleOnline(r.Context(), p.ID)
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) SyncAndConnect(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	resp, err := h.service.SyncAndConnect(r.Context(), p.ID)
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	var req CompleteOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.CompleteOrder(r.Context(), p, chi.URLParam(r, "orderID"), req.OTP)
	if err != nil {
		writeProviderError(w, err, "order")
		return
	}

	core.OK(w, o)
}

func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.current(w, r)
	if !ok {
		return
	}

	var req AdvanceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.AdvanceOrder(
		r.Context(),
		p,
		chi.URLParam(r, "orderID"),
		domain.OrderStatus(req.Status),
	)
	if err != nil {
		writeProviderError(w, err, "order")
		return
	}

	core.OK(w, o)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.service.List(r.Context()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Get(r.Context(), chi.URLParam(r, "providerID"))
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(r.Context(), chi.URLParam(r, "providerID"), req)
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "providerID")); err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ToggleStatus(r.Context(), chi.URLParam(r, "providerID"))
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) SettleDebt(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.SettleDebt(r.Context(), chi.URLParam(r, "providerID"))
	if err != nil {
		writeProviderError(w, err, "provider")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) SetServicePrice(w http.ResponseWriter, r *http.Request) {
	var req ServicePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.SetServicePrice(
		r.Context(),
		chi.URLParam(r, "providerID"),
		chi.URLParam(r, "serviceID"),
		req.Price,
	)
	if err != nil {
		writeProviderError(w, err, "provider service")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Debts(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.service.Debts(r.Context()))
}

func writeProviderError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, domain.ErrProviderBlocked):
		core.JSONError(w, core.NewAppError(
			err,
			"provider account is blocked until the outstanding balance is settled",
			http.StatusForbidden,
			"PROVIDER_BLOCKED",
		))
	case errors.Is(err, domain.ErrOTPMismatch):
		core.JSONError(w, core.UnprocessableError("OTP_MISMATCH", "otp does not match"))
	case errors.Is(err, domain.ErrInvalidTransition):
		core.JSONError(w, core.ConflictError("INVALID_TRANSITION", err.Error()))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
