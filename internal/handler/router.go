/*
Package handler provides the HTTP handlers and routing setup for the service.

This file defines the main Router, applying middleware (logging, CORS, IP rate
limiting) before delegating to the identity, submission, history, and
websocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"chatrelay/internal/pkg/limiter"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/resp"
)

const (
	IdentityRate   = 1
	IdentityBurst  = 5
	SubmitRate     = 5
	SubmitBurst    = 10
	HandshakeRate  = 1
	HandshakeBurst = 5
)

// Router sets up the chi routing table, the CORS policy, the websocket
// upgrader's origin check, and the per-route rate limiters.
func Router(deps *AppDeps) http.Handler {
	identityLimiter := limiter.NewIPRateLimiter(rate.Limit(IdentityRate), IdentityBurst)
	submitLimiter := limiter.NewIPRateLimiter(rate.Limit(SubmitRate), SubmitBurst)
	handshakeLimiter := limiter.NewIPRateLimiter(rate.Limit(HandshakeRate), HandshakeBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "chatrelay",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.With(identityLimiter.Middleware).Post("/identity", HandleIssueIdentity(deps))
		api.With(submitLimiter.Middleware).Post("/submit", HandleSubmit(deps))
		api.Get("/history", HandleHistory(deps))
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, handshakeLimiter, deps))

	return r
}
