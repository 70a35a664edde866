/*
Package handler provides the HTTP handlers and routing setup for the service.

This file contains the stateless submission endpoint, which injects a message
into the broadcast pipeline without requiring an open websocket.
*/
package handler

import (
	"encoding/json"
	"net/http"

	"chatrelay/internal/pkg/req"
	"chatrelay/internal/pkg/resp"
)

// SubmitInput is the JSON shape for POST /api/submit. Form-encoded bodies use
// the same field names.
type SubmitInput struct {
	ClientID string `json:"clientId"`
	Content  string `json:"content"`
}

// HandleSubmit creates the HandlerFunc for POST /api/submit. The response is
// an empty acknowledgement when the author has a live connection, or carries
// the rendered fragment in degraded mode.
func HandleSubmit(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SubmitInput

		if req.IsForm(r) {
			if customErr := req.ParseForm(w, r); customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
			input.ClientID = r.PostFormValue("clientId")
			input.Content = r.PostFormValue("content")
		} else {
			if customErr := req.BindJSON(r, &input); customErr != nil {
				resp.RespondError(w, r, customErr)
				return
			}
		}

		result, customErr := deps.Bridge.Submit(input.ClientID, input.Content)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if result.Fragment == nil {
			resp.RespondSuccess(w, r, nil)
			return
		}

		data := map[string]any{
			"fragment": json.RawMessage(result.Fragment),
		}
		resp.RespondSuccess(w, r, data)
	}
}
