/*
Package chat contains the core logic for the broadcast messaging service.

This file defines the connection registry: the single owner of the live
connection set and its identity mappings. All mutation goes through Admit and
Remove; everything else observes point-in-time snapshots.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// Handle is the send capability of one transport session. Key identifies the
// session, Deliver queues a payload without blocking, and Close tears the
// session down.
type Handle interface {
	// Key returns a stable identifier for the transport session.
	Key() string

	// Deliver queues a rendered payload for the session. It must not block;
	// a session that cannot accept the payload returns an error.
	Deliver(payload []byte) error

	// Close shuts the session down with a reason visible to the client.
	Close(reason string)
}

// Connection is an admitted transport session bound to an identity.
type Connection struct {
	// ClientID is the opaque identity token for the logical user.
	ClientID string

	// Username is the display identity, unique among live connections.
	Username string

	handle Handle
}

// Handle returns the connection's send capability.
func (c *Connection) Handle() Handle {
	return c.handle
}

// Registry tracks the set of live connections and their identities.
// The registry is the sole owner of its entries; size always equals the number
// of currently admitted connections and no client id appears twice.
type Registry struct {
	mu       sync.RWMutex
	byHandle map[string]*Connection // handle key -> connection
	byClient map[string]*Connection // client id -> connection

	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byHandle: make(map[string]*Connection),
		byClient: make(map[string]*Connection),
		logger:   logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// Admit registers a new connection under the given identity. It fails with
// ErrDuplicateConnection when the client id already holds a live connection,
// leaving the registry unchanged. On success both identity maps are updated
// atomically and the new Connection is returned.
func (r *Registry) Admit(clientID, username string, handle Handle) (*Connection, *errs.CustomError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byClient[clientID]; ok {
		r.logger.Warn().Str("client_id", clientID).Msg("Admission rejected: client already connected.")
		return nil, errs.NewError(errs.ErrDuplicateConnection)
	}

	conn := &Connection{
		ClientID: clientID,
		Username: username,
		handle:   handle,
	}

	r.byHandle[handle.Key()] = conn
	r.byClient[clientID] = conn

	r.logger.Info().
		Str("client_id", clientID).
		Str("username", username).
		Int("total_connections", len(r.byHandle)).
		Msg("Connection admitted.")

	return conn, nil
}

// Remove deletes the connection owning the handle along with its identity
// entry. It is idempotent: removing an absent handle is a no-op.
func (r *Registry) Remove(handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byHandle[handle.Key()]
	if !ok {
		return
	}

	delete(r.byHandle, handle.Key())
	delete(r.byClient, conn.ClientID)

	r.logger.Info().
		Str("client_id", conn.ClientID).
		Str("username", conn.Username).
		Int("total_connections", len(r.byHandle)).
		Msg("Connection removed.")
}

// Snapshot returns a point-in-time copy of all live connections, safe to
// iterate without holding the registry lock.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Connection, 0, len(r.byHandle))
	for _, conn := range r.byHandle {
		conns = append(conns, conn)
	}

	return conns
}

// LookupUsername resolves a client id to its live username.
func (r *Registry) LookupUsername(clientID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byClient[clientID]
	if !ok {
		return "", false
	}

	return conn.Username, true
}

// HasClient reports whether the client id currently holds a live connection.
func (r *Registry) HasClient(clientID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byClient[clientID]
	return ok
}

// Usernames returns a snapshot of live usernames, used by the identity
// assigner to keep generated names unique.
func (r *Registry) Usernames() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[string]struct{}, len(r.byClient))
	for _, conn := range r.byClient {
		names[conn.Username] = struct{}{}
	}

	return names
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHandle)
}

// CloseAll closes every live connection, used during server shutdown.
func (r *Registry) CloseAll(reason string) {
	for _, conn := range r.Snapshot() {
		conn.Handle().Close(reason)
	}
}
