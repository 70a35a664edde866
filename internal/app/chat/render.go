package chat

import "encoding/json"

// Renderer turns an event plus the per-recipient self flag into the payload
// delivered on the wire. Injecting it as a capability keeps presentation out
// of the broadcast logic; markup renderers plug in without touching fanout.
type Renderer interface {
	Render(ev Event, isSelf bool) ([]byte, error)
}

// renderedEvent is the wire envelope the JSON renderer emits.
type renderedEvent struct {
	Event
	IsSelf bool `json:"isSelf"`
}

// JSONRenderer renders events as JSON envelopes carrying the isSelf flag.
type JSONRenderer struct{}

// NewJSONRenderer returns the default renderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render implements Renderer.
func (JSONRenderer) Render(ev Event, isSelf bool) ([]byte, error) {
	return json.Marshal(renderedEvent{Event: ev, IsSelf: isSelf})
}
