/*
Package identity contains anonymous identity assignment for chat participants.

This file defines the session store, which keeps issued identities alive
independently of any live connection. Identities are pre-issued at page-render
time, before the websocket handshake completes, and survive a disconnect until
their TTL elapses. The connection registry tracks only live connections; this
store tracks known identities.
*/
package identity

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// sweepInterval is how often expired sessions are evicted.
const sweepInterval = 5 * time.Minute

// TokenIssuer identifies the issuer of session tokens.
const TokenIssuer = "chatrelay"

// Session is one known identity with its expiry.
type Session struct {
	ClientID  string
	Username  string
	ExpiresAt time.Time
}

// TokenClaims is the JWT claim set carried by a session token.
type TokenClaims struct {
	jwt.StandardClaims

	// ClientID is the opaque identity token for the participant.
	ClientID string `json:"client_id"`

	// Username is the display identity bound to the client id.
	Username string `json:"username"`
}

// SessionStore holds issued identities keyed by their signed session token,
// with a secondary index by client id for the stateless submission path.
type SessionStore struct {
	mu       sync.RWMutex
	byToken  map[string]Session
	byClient map[string]string // clientID -> token

	secret string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSessionStore creates a SessionStore signing tokens with secret and
// expiring identities after ttl. A background sweep evicts expired entries.
func NewSessionStore(secret string, ttl time.Duration) *SessionStore {
	s := &SessionStore{
		byToken:  make(map[string]Session),
		byClient: make(map[string]string),
		secret:   secret,
		ttl:      ttl,
		logger:   logx.Logger().With().Str("component", "SessionStore").Logger(),
	}

	go s.sweepLoop()

	return s
}

// Issue signs a session token for the identity and records it in the store.
// Re-issuing for a client id that already holds a session replaces the old
// session.
func (s *SessionStore) Issue(clientID, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &TokenClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    TokenIssuer,
		},
		ClientID: clientID,
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", time.Time{}, err
	}

	s.mu.Lock()
	if oldToken, ok := s.byClient[clientID]; ok {
		delete(s.byToken, oldToken)
	}
	s.byToken[signed] = Session{ClientID: clientID, Username: username, ExpiresAt: expiresAt}
	s.byClient[clientID] = signed
	s.mu.Unlock()

	s.logger.Debug().Str("client_id", clientID).Str("username", username).Msg("Session issued.")

	return signed, expiresAt, nil
}

// Resolve verifies the token signature and returns the stored session.
// A token that verifies but is no longer held (expired and swept, or replaced)
// fails with ErrSessionExpired.
func (s *SessionStore) Resolve(tokenString string) (Session, *errs.CustomError) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secret), nil
	})

	if err != nil || !token.Valid {
		return Session{}, errs.NewError(errs.ErrSessionInvalid)
	}

	s.mu.RLock()
	session, ok := s.byToken[tokenString]
	s.mu.RUnlock()

	if !ok || time.Now().After(session.ExpiresAt) {
		return Session{}, errs.NewError(errs.ErrSessionExpired)
	}

	return session, nil
}

// LookupClient returns the live session for a client id, if any.
func (s *SessionStore) LookupClient(clientID string) (Session, bool) {
	s.mu.RLock()
	token, ok := s.byClient[clientID]
	if !ok {
		s.mu.RUnlock()
		return Session{}, false
	}
	session := s.byToken[token]
	s.mu.RUnlock()

	if time.Now().After(session.ExpiresAt) {
		return Session{}, false
	}

	return session, true
}

// Usernames returns a snapshot of every username currently held by a session,
// used to keep generated names unique across identities that are known but not
// connected.
func (s *SessionStore) Usernames() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]struct{}, len(s.byToken))
	now := time.Now()
	for _, session := range s.byToken {
		if now.After(session.ExpiresAt) {
			continue
		}
		names[session.Username] = struct{}{}
	}

	return names
}

// Len returns the number of stored sessions, including any not yet swept.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

// sweepLoop periodically evicts expired sessions.
func (s *SessionStore) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.Sweep(time.Now())
	}
}

// Sweep removes every session expired as of now and returns how many were evicted.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for token, session := range s.byToken {
		if now.After(session.ExpiresAt) {
			delete(s.byToken, token)
			if s.byClient[session.ClientID] == token {
				delete(s.byClient, session.ClientID)
			}
			count++
		}
	}

	if count > 0 {
		s.logger.Debug().Int("evicted", count).Int("remaining", len(s.byToken)).Msg("Session sweep finished.")
	}

	return count
}
