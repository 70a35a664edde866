package handler

import (
	"net/http"

	"chatrelay/internal/pkg/resp"
)

// HandleHistory creates the HandlerFunc for GET /api/history. It replays the
// buffered chat events for newly rendered pages; live sockets never receive
// replayed events.
func HandleHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := deps.History.Recent()

		data := map[string]any{
			"events": events,
			"count":  len(events),
		}
		resp.RespondSuccess(w, r, data)
	}
}
