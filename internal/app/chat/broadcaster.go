/*
Package chat contains the core logic for the broadcast messaging service.

This file defines the Broadcaster, which decides for each event which topic
members receive which rendered variant (own vs. other) and fans the payloads
out. Snapshots are taken before the send loop so a slow recipient never delays
admits, removes, or delivery to the rest of the membership.
*/
package chat

import (
	"strings"

	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/logx"
)

// Broadcaster routes join, chat, and leave events to topic members.
//
// Ordering: AnnounceJoin runs synchronously at admission and AnnounceLeave
// synchronously at removal, on the same control path as the transport
// lifecycle callbacks, so for a single connection join precedes its messages
// and its messages precede its leave. No relative order is guaranteed across
// different connections.
type Broadcaster struct {
	topic    *Topic
	renderer Renderer
	history  *History

	logger zerolog.Logger
}

// NewBroadcaster constructs a Broadcaster over the topic using the injected
// renderer. history may be nil to disable page replay recording.
func NewBroadcaster(topic *Topic, renderer Renderer, history *History) *Broadcaster {
	return &Broadcaster{
		topic:    topic,
		renderer: renderer,
		history:  history,
		logger:   logx.Logger().With().Str("component", "Broadcaster").Str("topic", topic.Name()).Logger(),
	}
}

// AnnounceJoin sends a rendered Join event to every topic member. The snapshot
// is taken after admission, so the new connection receives its own join notice
// with isSelf set.
func (b *Broadcaster) AnnounceJoin(conn *Connection) {
	ev := NewEvent(EventJoin, conn.Username, "")

	b.fanout(ev, func(member *Connection) bool {
		return member.ClientID == conn.ClientID
	})
}

// RouteMessage validates the content and sends a rendered Chat event to every
// topic member. Empty or whitespace-only content is a silent no-op. The
// isSelf flag is computed per-recipient by username equality, so multiple
// connections sharing a username all see their own messages marked own. The
// author may be a bare identity record; no live connection is required.
func (b *Broadcaster) RouteMessage(author Identity, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	ev := NewEvent(EventChat, author.Username, content)

	if b.history != nil {
		b.history.Add(ev)
	}

	b.fanout(ev, func(member *Connection) bool {
		return member.Username == author.Username
	})
}

// AnnounceLeave sends a rendered Leave event to every remaining topic member.
// It must fire strictly after the connection has been removed, so the
// departing connection is absent from the snapshot and gets no self-notice.
func (b *Broadcaster) AnnounceLeave(conn *Connection) {
	ev := NewEvent(EventLeave, conn.Username, "")

	b.fanout(ev, func(member *Connection) bool {
		return member.ClientID == conn.ClientID
	})
}

// fanout renders the two event variants once and delivers the matching one to
// each member of the current topic snapshot. A failed delivery is logged and
// skipped; the transport's own disconnect callback is the sole authority for
// removing a connection, which avoids double-removal races.
func (b *Broadcaster) fanout(ev Event, isSelf func(*Connection) bool) {
	ownPayload, err := b.renderer.Render(ev, true)
	if err != nil {
		b.logger.Error().Err(err).Str("event_id", ev.ID).Msg("Failed to render own event variant.")
		return
	}

	otherPayload, err := b.renderer.Render(ev, false)
	if err != nil {
		b.logger.Error().Err(err).Str("event_id", ev.ID).Msg("Failed to render other event variant.")
		return
	}

	members := b.topic.Members()

	for _, member := range members {
		payload := otherPayload
		if isSelf(member) {
			payload = ownPayload
		}

		if err := member.Handle().Deliver(payload); err != nil {
			b.logger.Warn().
				Err(err).
				Str("event_id", ev.ID).
				Str("recipient", member.Username).
				Msg("Delivery failed, skipping recipient.")
		}
	}

	b.logger.Debug().
		Str("event_id", ev.ID).
		Str("kind", string(ev.Kind)).
		Int("recipients", len(members)).
		Msg("Event fanned out.")
}
