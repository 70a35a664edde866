/*
Package chat contains the core logic for the broadcast messaging service.

This file defines the Topic: a named broadcast group whose membership is the
set of subscribed connections. The base deployment runs a single well-known
topic for the whole room; the type itself supports any number of independent
topics.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/logx"
)

// Topic is a named broadcast group. Connections join on handshake and leave on
// disconnect; Members hands out snapshots so fanout never iterates under the
// membership lock.
type Topic struct {
	name string

	mu      sync.RWMutex
	members map[string]*Connection // handle key -> connection

	logger zerolog.Logger
}

// NewTopic creates an empty topic with the given name.
func NewTopic(name string) *Topic {
	return &Topic{
		name:    name,
		members: make(map[string]*Connection),
		logger:  logx.Logger().With().Str("component", "Topic").Str("topic", name).Logger(),
	}
}

// Name returns the topic name.
func (t *Topic) Name() string {
	return t.name
}

// Subscribe adds the connection to the membership set.
func (t *Topic) Subscribe(conn *Connection) {
	t.mu.Lock()
	t.members[conn.Handle().Key()] = conn
	count := len(t.members)
	t.mu.Unlock()

	t.logger.Debug().Str("username", conn.Username).Int("members", count).Msg("Subscribed.")
}

// Unsubscribe removes the connection from the membership set. No-op when the
// connection is not a member.
func (t *Topic) Unsubscribe(conn *Connection) {
	t.mu.Lock()
	delete(t.members, conn.Handle().Key())
	count := len(t.members)
	t.mu.Unlock()

	t.logger.Debug().Str("username", conn.Username).Int("members", count).Msg("Unsubscribed.")
}

// Members returns a point-in-time copy of the subscribed connections, safe to
// iterate without holding the topic lock.
func (t *Topic) Members() []*Connection {
	t.mu.RLock()
	defer t.mu.RUnlock()

	members := make([]*Connection, 0, len(t.members))
	for _, conn := range t.members {
		members = append(members, conn)
	}

	return members
}

// Len returns the number of subscribed connections.
func (t *Topic) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}
