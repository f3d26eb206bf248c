package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// conn is one client socket. Only its writer goroutine writes to ws.
type conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	code     string
	playerID string
}

func newConn(id string, ws *websocket.Conn, sendBuffer int) *conn {
	return &conn{
		id:   id,
		ws:   ws,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue - never blocks. Returns false when the queue is full or the conn is closed.
func (that *conn) enqueue(message []byte) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.send <- message:
		return true
	default:
		return false
	}
}

func (that *conn) close() {
	that.closeOnce.Do(func() {
		close(that.done)

		if that.ws != nil {
			_ = that.ws.Close()
		}
	})
}

func (that *conn) isClosed() bool {
	select {
	case <-that.done:
		return true
	default:
		return false
	}
}

func (that *conn) bind(code, playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.code = code
	that.playerID = playerID
}

func (that *conn) binding() (string, string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.code, that.playerID
}
