// AngelaMos | 2026
// handler.go

package notification

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/middleware"
)

type Handler struct {
	service   *Service
	hub       *Hub
	verifier  middleware.TokenVerifier
	validator *validator.Validate
	upgrader  websocket.Upgrader
}

func NewHandler(
	service *Service,
	hub *Hub,
	verifier middleware.TokenVerifier,
	allowedOrigins []string,
) *Handler {
	return &Handler{
		service:   service,
		hub:       hub,
		verifier:  verifier,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Get("/notifications/ws", h.Subscribe)

	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/read", h.MarkAllRead)
	})

	r.Route("/admin/notifications", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/", h.Broadcast)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("status") == "unread"
	core.OK(w, h.service.List(r.Context(), unreadOnly))
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllRead(r.Context()); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.Notify(r.Context(), req.Title, req.Body); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.JSON(w, http.StatusAccepted, core.Response{Success: true})
}

// Subscribe upgrades to a websocket that streams notification frames.
// Browsers cannot set headers on the handshake, so the access token may
// also arrive as the token query parameter.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		core.Unauthorized(w, "missing authorization token")
		return
	}

	claims, err := h.verifier.VerifyAccessToken(r.Context(), token)
	if err != nil {
		core.JSONError(w, core.TokenInvalidError())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}

	h.hub.attach(conn, claims.UserID)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
