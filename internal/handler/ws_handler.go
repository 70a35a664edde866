/*
Package handler provides the HTTP handlers and routing setup for the service.

This file contains the websocket handshake handler: it resolves or assigns the
identity, rejects duplicate active connections, upgrades the HTTP connection,
and drives the client lifecycle.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/identity"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/limiter"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/resp"
)

// resolveIdentity determines the identity for a handshake. Resolution order:
// session token (query or bearer header), explicit clientId/username query
// parameters, then generated values.
func resolveIdentity(r *http.Request, deps *AppDeps) (chat.Identity, *errs.CustomError) {
	query := r.URL.Query()

	token := query.Get("token")
	if token == "" {
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
	}

	if token != "" {
		session, customErr := deps.Sessions.Resolve(token)
		if customErr != nil {
			return chat.Identity{}, customErr
		}
		return chat.Identity{ClientID: session.ClientID, Username: session.Username}, nil
	}

	clientID := query.Get("clientId")
	if clientID == "" {
		clientID = identity.NewClientID()
	}

	username := query.Get("username")
	if username == "" {
		generated, genErr := deps.Usernames.Generate(usernamesInUse(deps))
		if genErr != nil {
			return chat.Identity{}, genErr
		}
		username = generated
	}

	return chat.Identity{ClientID: clientID, Username: username}, nil
}

// HandleWebSocket creates the HandlerFunc for GET /ws.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r.RemoteAddr) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", limiter.ClientIP(r.RemoteAddr))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		ident, customErr := resolveIdentity(r, deps)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// Pre-upgrade duplicate check so the common case gets a clean HTTP
		// rejection. Admit below remains the authoritative check.
		if deps.Registry.HasClient(ident.ClientID) {
			logx.Warn("WebSocket connection rejected: Duplicate active connection.", "client_id", ident.ClientID)
			resp.RespondError(w, r, errs.NewError(errs.ErrDuplicateConnection))
			return
		}

		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(wsConn, ident, deps.Registry, deps.Topic, deps.Broadcaster, deps.Config.MaxMessageBytes)

		conn, admitErr := deps.Registry.Admit(ident.ClientID, ident.Username, client)
		if admitErr != nil {
			client.Reject(admitErr)
			return
		}

		logx.Info("WebSocket connection established",
			"client_id", ident.ClientID,
			"username", ident.Username,
		)

		client.Run(conn)
	}
}
