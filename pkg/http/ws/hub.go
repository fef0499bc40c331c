package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Hub manages WebSocket subscribers and broadcasts game events per session.
// A session may have several subscribers (the player's UI plus spectators).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*Connection]struct{} // session_id -> connections
	logger      zerolog.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[*Connection]struct{}),
		logger:      logger,
	}
}

// Subscribe attaches a connection to a session's event stream.
func (h *Hub) Subscribe(sessionID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.subscribers[sessionID]
	if conns == nil {
		conns = make(map[*Connection]struct{})
		h.subscribers[sessionID] = conns
	}
	conns[conn] = struct{}{}
	h.logger.Info().Str("session_id", sessionID.String()).Msg("subscriber attached")
}

// Unsubscribe detaches and closes a connection.
func (h *Hub) Unsubscribe(sessionID uuid.UUID, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, exists := h.subscribers[sessionID]; exists {
		if _, ok := conns[conn]; ok {
			conn.Close()
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.subscribers, sessionID)
			}
			h.logger.Info().Str("session_id", sessionID.String()).Msg("subscriber detached")
		}
	}
}

// Publish sends a message to every subscriber of a session. Slow or closed
// subscribers are skipped; event delivery is best effort.
func (h *Hub) Publish(sessionID uuid.UUID, msg Message) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.subscribers[sessionID]))
	for conn := range h.subscribers[sessionID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(msg); err != nil {
			h.logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("event send failed")
		}
	}
}

// SubscriberCount reports how many connections watch a session.
func (h *Hub) SubscriberCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}

// Connection represents a WebSocket connection with a buffered send queue.
type Connection struct {
	conn   *websocket.Conn
	sendCh chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

// NewConnection wraps a WebSocket connection.
func NewConnection(conn *websocket.Conn, logger zerolog.Logger) *Connection {
	return &Connection{
		conn:   conn,
		sendCh: make(chan Message, 256),
		logger: logger,
	}
}

// Send queues a message for delivery.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts down the connection.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.sendCh)
	c.conn.Close()
}

// WritePump sends messages from the send queue.
func (c *Connection) WritePump() {
	defer c.conn.Close()

	for msg := range c.sendCh {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.logger.Warn().Err(err).Msg("write error")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ReadPump consumes client messages, answering pings until the peer hangs up.
func (c *Connection) ReadPump(onClose func()) {
	defer func() {
		c.conn.Close()
		if onClose != nil {
			onClose()
		}
	}()

	// Read deadline extends on pong so idle spectators stay connected.
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("read error")
			}
			return
		}
		if msg.Type == TypePing {
			c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_ = c.Send(Message{Type: TypePong})
		}
	}
}

var (
	ErrConnectionClosed = &Error{Code: "connection_closed", Message: "Connection is closed"}
	ErrSendQueueFull    = &Error{Code: "send_queue_full", Message: "Send queue is full"}
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
