/*
Package handler provides the HTTP handlers and routing setup for the service.

This file contains the identity issuance endpoint, which pre-issues an
anonymous identity (client id, username, and session token) at page-render
time, before the websocket handshake completes.
*/
package handler

import (
	"net/http"

	"chatrelay/internal/app/identity"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/req"
	"chatrelay/internal/pkg/resp"
)

// IssueIdentityInput optionally carries a returning client's own identity.
// Both fields may be omitted, in which case they are generated.
type IssueIdentityInput struct {
	ClientID string `json:"clientId,omitempty"`
	Username string `json:"username,omitempty"`
}

// HandleIssueIdentity creates the HandlerFunc for POST /api/identity.
// A caller-supplied client id is accepted as-is; a missing username is drawn
// from the generator, unique against both live and session-held names.
func HandleIssueIdentity(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input IssueIdentityInput

		if r.ContentLength > 0 {
			if customErr := req.BindJSON(r, &input); customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
		}

		clientID := input.ClientID
		if clientID == "" {
			clientID = identity.NewClientID()
		}

		username := input.Username
		if username == "" {
			generated, genErr := deps.Usernames.Generate(usernamesInUse(deps))
			if genErr != nil {
				logx.Error(genErr, "Username generation failed", "client_id", clientID)
				resp.RespondError(w, r, genErr)
				return
			}
			username = generated
		}

		token, expiresAt, err := deps.Sessions.Issue(clientID, username)
		if err != nil {
			logx.Error(err, "Session token issuance failed", "client_id", clientID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		data := map[string]any{
			"clientId":     clientID,
			"username":     username,
			"sessionToken": token,
			"expiresAt":    expiresAt.Unix(),
		}
		resp.RespondSuccess(w, r, data)
	}
}
