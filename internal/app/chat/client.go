/*
Package chat contains the core logic for the broadcast messaging service.

This file defines the Client struct, the websocket transport session. It owns
the read and write pumps, the heartbeat, and the disconnect cleanup path, and
implements the Handle send capability the registry and broadcaster work with.
*/
package chat

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

const (
	// timeout for writes to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// sendQueueSize is the per-connection outbound buffer. Deliver drops when
	// the buffer is full so fanout never blocks on a slow client.
	sendQueueSize = 256

	// CloseCodeDuplicateSession is a custom websocket close code (4000-4999
	// range) signalling that admission was rejected because the identity
	// already holds a live connection.
	CloseCodeDuplicateSession = 4002
)

var (
	errSendQueueFull = errors.New("client send queue full")
	errConnClosed    = errors.New("client connection closed")
)

// errorFrame is the envelope for error messages pushed to the client.
type errorFrame struct {
	Kind    string `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// identityFrame echoes the assigned identity back to a freshly admitted
// connection, before any broadcast traffic.
type identityFrame struct {
	Kind     string `json:"kind"`
	ClientID string `json:"clientId"`
	Username string `json:"username"`
}

// Client is one websocket transport session.
type Client struct {
	id   string
	conn *websocket.Conn

	identity    Identity
	registry    *Registry
	topic       *Topic
	broadcaster *Broadcaster
	maxBytes    int

	send chan []byte

	mu     sync.RWMutex
	closed bool

	logger zerolog.Logger
}

// NewClient wraps an upgraded websocket connection. The caller admits the
// client into the registry before Run.
func NewClient(conn *websocket.Conn, ident Identity, registry *Registry, topic *Topic, broadcaster *Broadcaster, maxBytes int) *Client {
	clientLogger := logx.Logger().With().
		Str("client_id", ident.ClientID).
		Str("username", ident.Username).
		Logger()

	return &Client{
		id:          uuid.New().String(),
		conn:        conn,
		identity:    ident,
		registry:    registry,
		topic:       topic,
		broadcaster: broadcaster,
		maxBytes:    maxBytes,
		send:        make(chan []byte, sendQueueSize),
		logger:      clientLogger,
	}
}

// Identity returns the identity bound to this session.
func (c *Client) Identity() Identity {
	return c.identity
}

// Key implements Handle.
func (c *Client) Key() string {
	return c.id
}

// Deliver implements Handle. It queues the payload without blocking; a full
// buffer or a closed session returns an error and the payload is dropped.
func (c *Client) Deliver(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errConnClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return errSendQueueFull
	}
}

// Close implements Handle. It pushes a close frame with the reason and tears
// the connection down, which unblocks the read pump and runs cleanup.
func (c *Client) Close(reason string) {
	closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send close message.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Connection close error.")
	}
}

// Reject terminates a connection whose admission failed, sending an error
// frame and the duplicate-session close code before disconnecting.
func (c *Client) Reject(admissionErr *errs.CustomError) {
	c.logger.Warn().
		Int("code", admissionErr.Code).
		Msg("Admission rejected. Closing connection.")

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if frame, err := json.Marshal(errorFrame{Kind: "error", Code: admissionErr.Code, Message: admissionErr.Message}); err == nil {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to write rejection frame.")
		}
	}

	closeMessage := websocket.FormatCloseMessage(CloseCodeDuplicateSession, admissionErr.Message)
	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send rejection close message.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Connection close error after rejection.")
	}
}

// Run drives the admitted connection's lifecycle: it announces the join,
// starts the write pump, and blocks reading inbound messages until the
// connection drops. On return the registry entry is removed and the leave is
// announced, in that order, so the departing connection is excluded from the
// leave snapshot.
func (c *Client) Run(conn *Connection) {
	c.sendIdentity()

	c.topic.Subscribe(conn)
	c.broadcaster.AnnounceJoin(conn)

	go c.writePump()
	c.readPump()

	c.registry.Remove(c)
	c.topic.Unsubscribe(conn)
	c.broadcaster.AnnounceLeave(conn)

	c.shutdownSend()
	c.logger.Info().Msg("Client disconnected and cleaned up.")
}

// readPump reads inbound frames, handles heartbeats, and routes chat content.
func (c *Client) readPump() {
	defer func() {
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in readPump.")
		}
	}()

	// Some slack above the content limit for framing overhead.
	c.conn.SetReadLimit(int64(c.maxBytes) * 2)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline.")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away).")
			}
			return
		}

		content := string(messageBytes)

		if len(content) > c.maxBytes {
			c.SendError(errs.NewError(errs.ErrMessageTooLong))
			continue
		}

		// Blank submissions are dropped silently by the router.
		c.broadcaster.RouteMessage(c.identity, content)
	}
}

// writePump drains the send queue onto the wire and keeps the heartbeat going.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in writePump.")
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline.")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message.")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing message.")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping.")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing ping.")
				return
			}
		}
	}
}

// sendIdentity queues the identity frame so the client learns the
// {clientId, username} pair bound to its connection.
func (c *Client) sendIdentity() {
	frame, err := json.Marshal(identityFrame{Kind: "identity", ClientID: c.identity.ClientID, Username: c.identity.Username})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to marshal identity frame.")
		return
	}

	if err := c.Deliver(frame); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue identity frame.")
	}
}

// SendError pushes an error frame over the session's own queue.
func (c *Client) SendError(customErr *errs.CustomError) {
	frame, err := json.Marshal(errorFrame{Kind: "error", Code: customErr.Code, Message: customErr.Message})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to marshal error frame.")
		return
	}

	if err := c.Deliver(frame); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue error frame.")
	}
}

// shutdownSend closes the send channel exactly once, after which Deliver
// reports the session closed instead of panicking on a closed channel.
func (c *Client) shutdownSend() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}
