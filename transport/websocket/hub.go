package websocket

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

var ErrHubClosed = errors.New("hub is closed")

// Hub tracks which connections watch which session. The hub mutex only guards the
// rooms map; membership and fan-out of one session take that room's mutex.
type Hub struct {
	logger *slog.Logger

	mu     sync.Mutex
	rooms  map[string]*room
	closed bool
}

type room struct {
	mu    sync.Mutex
	conns map[string]*conn
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "hub"),
		rooms:  make(map[string]*room),
	}
}

// Publish - sends game_update with session to every connection of its room.
// The session manager calls it with the session's lock held, so per-connection
// order is commit order.
func (that *Hub) Publish(session *entity.Session) {
	log := that.logger.With("method", "Publish", "sessionCode", session.Code)

	that.mu.Lock()
	r, ok := that.rooms[session.Code]
	that.mu.Unlock()

	if !ok {
		return
	}

	message, err := encodeSession(TypeGameUpdate, session)
	if err != nil {
		log.Error("failed to encode game update", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.conns {
		that.deliver(c, message)
	}
}

// Join - registers c in the room of session, queues session_state to it and
// player_joined to everyone else. Must run while the session's lock is held.
func (that *Hub) Join(c *conn, playerID string, session *entity.Session) error {
	state, err := encodeSession(TypeSessionState, session)
	if err != nil {
		return err
	}

	joined, err := encodePlayer(TypePlayerJoined, playerID)
	if err != nil {
		return err
	}

	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return ErrHubClosed
	}

	r, ok := that.rooms[session.Code]
	if !ok {
		r = &room{conns: make(map[string]*conn)}
		that.rooms[session.Code] = r
	}

	r.mu.Lock()
	that.mu.Unlock()
	defer r.mu.Unlock()

	c.bind(session.Code, playerID)
	r.conns[c.id] = c

	that.deliver(c, state)

	for id, other := range r.conns {
		if id == c.id {
			continue
		}

		that.deliver(other, joined)
	}

	return nil
}

// Leave - removes c from its room and tells the rest with player_left.
func (that *Hub) Leave(c *conn) {
	code, playerID := c.binding()
	if code == "" {
		return
	}

	that.mu.Lock()
	r, ok := that.rooms[code]
	if !ok {
		that.mu.Unlock()
		return
	}

	r.mu.Lock()
	if _, ok = r.conns[c.id]; !ok {
		r.mu.Unlock()
		that.mu.Unlock()
		return
	}

	delete(r.conns, c.id)
	if len(r.conns) == 0 {
		delete(that.rooms, code)
	}
	that.mu.Unlock()
	defer r.mu.Unlock()

	c.bind("", "")

	if len(r.conns) == 0 {
		return
	}

	left, err := encodePlayer(TypePlayerLeft, playerID)
	if err != nil {
		that.logger.Error("failed to encode player left", "error", err)
		return
	}

	for _, other := range r.conns {
		that.deliver(other, left)
	}
}

// Close - disconnects everyone. Joins after Close fail with ErrHubClosed.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed = true

	for code, r := range that.rooms {
		r.mu.Lock()
		for _, c := range r.conns {
			c.close()
		}
		r.mu.Unlock()

		delete(that.rooms, code)
	}
}

// deliver - a connection that cannot keep up is dropped. It reconnects and gets a fresh session_state.
func (that *Hub) deliver(c *conn, message []byte) {
	if c.enqueue(message) {
		return
	}

	if !c.isClosed() {
		that.logger.Warn("dropping slow connection", "connID", c.id)
	}

	c.close()
}

func (that *Hub) connections(code string) int {
	that.mu.Lock()
	r, ok := that.rooms[code]
	that.mu.Unlock()

	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}
