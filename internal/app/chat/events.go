/*
Package chat contains the core logic for the broadcast messaging service: the
connection registry, topic membership, and event fanout.

This file defines the event model shared by the socket and HTTP submission
paths, and the identity record events are attributed to.
*/
package chat

import (
	"time"

	"github.com/google/uuid"
)

// EventKind tags the lifecycle stage an event belongs to.
type EventKind string

const (
	// EventJoin announces a connection entering the topic.
	EventJoin EventKind = "join"

	// EventChat carries a chat message.
	EventChat EventKind = "chat"

	// EventLeave announces a connection leaving the topic.
	EventLeave EventKind = "leave"
)

// Identity is the minimal author record an event needs. The broadcast path
// never requires a live connection, only this pair, so the HTTP submission
// bridge can feed the same pipeline.
type Identity struct {
	ClientID string
	Username string
}

// Event is one ephemeral message event. Events are not persisted beyond the
// optional in-memory history buffer.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Author    string    `json:"author"`
	Content   string    `json:"content,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewEvent builds an Event with a fresh id and the current time.
func NewEvent(kind EventKind, author, content string) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}
