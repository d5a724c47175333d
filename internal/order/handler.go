// AngelaMos | 2026
// handler.go

package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/middleware"
)

// Syncer clears pending offline completions across all providers.
type Syncer interface {
	SyncOfflineOrders(ctx context.Context) (int, error)
}

type Handler struct {
	service   *Service
	syncer    Syncer
	validator *validator.Validate
}

func NewHandler(service *Service, syncer Syncer) *Handler {
	return &Handler{
		service:   service,
		syncer:    syncer,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the customer order routes. Quotes are open to
// guests; a signed-in premium customer gets the premium discount.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.With(optionalAuth).Post("/quote", h.Quote)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Checkout)
			r.Get("/", h.Mine)
			r.Get("/{orderID}", h.Get)
			r.Post("/{orderID}/review", h.Review)
			r.Post("/{orderID}/cancel", h.Cancel)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Put("/{orderID}/status", h.SetStatus)
		r.Post("/sync", h.Sync)
	})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Quote(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.Checkout(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.Created(w, o)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r.URL.Query().Get("filter"))
	core.OK(w, h.service.Mine(r.Context(), middleware.GetUserID(r.Context()), f))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := h.service.Get(
		ctx,
		middleware.GetUserID(ctx),
		domain.Role(middleware.GetUserRole(ctx)),
		chi.URLParam(r, "orderID"),
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, o)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.Review(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "orderID"),
		req,
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, o)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Cancel(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "orderID"),
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, o)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Page:       parseIntQuery(r, "page", 1),
		PageSize:   parseIntQuery(r, "page_size", 20),
		Status:     q.Get("status"),
		ProviderID: q.Get("provider_id"),
		UserID:     q.Get("user_id"),
	}
	params.Normalize()

	orders, total := h.service.List(r.Context(), params)
	core.Paginated(w, orders, params.Page, params.PageSize, total)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.SetStatus(
		r.Context(),
		chi.URLParam(r, "orderID"),
		domain.OrderStatus(req.Status),
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, o)
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	n, err := h.syncer.SyncOfflineOrders(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]int{"synced": n})
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "order")
	case errors.Is(err, domain.ErrCouponInvalid):
		core.JSONError(w, core.UnprocessableError("COUPON_INVALID", "coupon code is not valid"))
	case errors.Is(err, domain.ErrProviderNotListed):
		core.JSONError(w, core.ConflictError("PROVIDER_UNAVAILABLE", "provider is not accepting orders"))
	case errors.Is(err, domain.ErrUnknownService):
		core.JSONError(w, core.UnprocessableError("UNKNOWN_SERVICE", err.Error()))
	case errors.Is(err, domain.ErrNoServicesSelected):
		core.BadRequest(w, "select at least one service")
	case errors.Is(err, domain.ErrReviewNotAllowed):
		core.JSONError(w, core.ConflictError("REVIEW_NOT_ALLOWED", "only completed orders can be reviewed"))
	case errors.Is(err, domain.ErrInvalidTransition):
		core.JSONError(w, core.ConflictError("INVALID_TRANSITION", err.Error()))
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
