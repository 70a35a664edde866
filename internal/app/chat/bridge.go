/*
Package chat contains the core logic for the broadcast messaging service.

This file defines the submission bridge: the stateless entry point that lets a
message be injected without an open persistent connection. It validates the
submission, resolves the author identity, and re-enters the broadcast pipeline
as if the message had arrived over a live socket.
*/
package chat

import (
	"strings"

	"github.com/rs/zerolog"

	"chatrelay/internal/app/identity"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// SubmitResult acknowledges a submission. Fragment is nil when the author has
// a live connection (the chat update arrives over their own socket); in
// degraded mode, when no live connection exists for the identity, the rendered
// own-view fragment is returned directly.
type SubmitResult struct {
	Fragment []byte
}

// Bridge validates HTTP-path submissions and hands them to the Broadcaster.
type Bridge struct {
	registry    *Registry
	sessions    *identity.SessionStore
	broadcaster *Broadcaster
	renderer    Renderer
	maxBytes    int

	logger zerolog.Logger
}

// NewBridge constructs a Bridge. maxBytes caps the accepted content length.
func NewBridge(registry *Registry, sessions *identity.SessionStore, broadcaster *Broadcaster, renderer Renderer, maxBytes int) *Bridge {
	return &Bridge{
		registry:    registry,
		sessions:    sessions,
		broadcaster: broadcaster,
		renderer:    renderer,
		maxBytes:    maxBytes,
		logger:      logx.Logger().With().Str("component", "Bridge").Logger(),
	}
}

// Submit resolves the client id to a username and routes the message.
// Missing client id is a validation error; an id that is neither live nor
// session-held fails with ErrUnknownClient. Content that trims to empty is
// acknowledged without any broadcast, matching the router's no-op policy.
func (b *Bridge) Submit(clientID, rawContent string) (*SubmitResult, *errs.CustomError) {
	if clientID == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	username, live := b.registry.LookupUsername(clientID)
	if !live {
		session, known := b.sessions.LookupClient(clientID)
		if !known {
			b.logger.Warn().Str("client_id", clientID).Msg("Submission rejected: unknown client.")
			return nil, errs.NewError(errs.ErrUnknownClient)
		}
		username = session.Username
	}

	content := strings.TrimSpace(rawContent)
	if content == "" {
		return &SubmitResult{}, nil
	}

	if len(content) > b.maxBytes {
		return nil, errs.NewError(errs.ErrMessageTooLong)
	}

	b.broadcaster.RouteMessage(Identity{ClientID: clientID, Username: username}, content)

	if live {
		return &SubmitResult{}, nil
	}

	// Degraded mode: the author has no socket to receive the update on, so the
	// rendered own view rides back in the acknowledgement.
	fragment, err := b.renderer.Render(NewEvent(EventChat, username, content), true)
	if err != nil {
		b.logger.Error().Err(err).Str("client_id", clientID).Msg("Failed to render degraded-mode fragment.")
		return nil, errs.NewError(errs.ErrUnknown, err)
	}

	return &SubmitResult{Fragment: fragment}, nil
}
