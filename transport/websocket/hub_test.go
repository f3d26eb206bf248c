package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func drain(t *testing.T, c *conn) []Event {
	t.Helper()

	var events []Event
	for {
		select {
		case data := <-c.send:
			var event Event
			require.NoError(t, json.Unmarshal(data, &event))
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestHub(t *testing.T) {
	t.Run("Join queues state to the newcomer and announces it to the rest", func(t *testing.T) {
		// Given: A hub with the host already watching
		hub := NewHub(newTestLogger())
		host := newConn("c1", nil, 4)
		guest := newConn("c2", nil, 4)
		session := fixtureSession()

		require.NoError(t, hub.Join(host, "host-1", session))
		drain(t, host)

		// When: The guest joins
		require.NoError(t, hub.Join(guest, "guest-1", session))

		// Then: The guest gets the record and the host hears about the guest
		guestEvents := drain(t, guest)
		require.Len(t, guestEvents, 1)
		assert.Equal(t, TypeSessionState, guestEvents[0].Type)
		assert.Equal(t, session.Code, guestEvents[0].Session.Code)

		hostEvents := drain(t, host)
		require.Len(t, hostEvents, 1)
		assert.Equal(t, TypePlayerJoined, hostEvents[0].Type)
		assert.Equal(t, "guest-1", hostEvents[0].PlayerID)
		assert.Equal(t, 2, hub.connections(session.Code))
	})

	t.Run("Publish reaches every connection of the room in order", func(t *testing.T) {
		hub := NewHub(newTestLogger())
		first := newConn("c1", nil, 8)
		second := newConn("c2", nil, 8)
		stranger := newConn("c3", nil, 8)

		session := fixtureSession()
		other := fixtureSession()
		other.Code = "ZZZZ-ZZZZ"

		require.NoError(t, hub.Join(first, "host-1", session))
		require.NoError(t, hub.Join(second, "guest-1", session))
		require.NoError(t, hub.Join(stranger, "someone", other))
		drain(t, first)
		drain(t, second)
		drain(t, stranger)

		for cell := 1; cell <= 3; cell++ {
			next := session.Clone()
			next.Board[cell+4] = "X"
			hub.Publish(next)
		}

		for _, c := range []*conn{first, second} {
			events := drain(t, c)
			require.Len(t, events, 3)
			for i, event := range events {
				assert.Equal(t, TypeGameUpdate, event.Type)
				assert.Equal(t, "X", string(event.Session.Board[i+5]))
			}
		}

		assert.Empty(t, drain(t, stranger))
	})

	t.Run("A full queue drops only that connection", func(t *testing.T) {
		// Given: A slow connection with room for one message and a healthy one
		hub := NewHub(newTestLogger())
		slow := newConn("slow", nil, 1)
		healthy := newConn("healthy", nil, 8)
		session := fixtureSession()

		require.NoError(t, hub.Join(slow, "host-1", session))
		require.NoError(t, hub.Join(healthy, "guest-1", session))

		// When: Updates keep coming
		hub.Publish(session)
		hub.Publish(session)

		// Then: The slow one is closed and the healthy one got everything
		assert.True(t, slow.isClosed())
		assert.False(t, healthy.isClosed())
		assert.Len(t, drain(t, healthy), 3)
	})

	t.Run("Leave announces the departure", func(t *testing.T) {
		hub := NewHub(newTestLogger())
		host := newConn("c1", nil, 4)
		guest := newConn("c2", nil, 4)
		session := fixtureSession()

		require.NoError(t, hub.Join(host, "host-1", session))
		require.NoError(t, hub.Join(guest, "guest-1", session))
		drain(t, host)

		hub.Leave(guest)
		hub.Leave(guest)

		events := drain(t, host)
		require.Len(t, events, 1)
		assert.Equal(t, TypePlayerLeft, events[0].Type)
		assert.Equal(t, "guest-1", events[0].PlayerID)
		assert.Equal(t, 1, hub.connections(session.Code))

		hub.Leave(host)
		assert.Equal(t, 0, hub.connections(session.Code))
	})

	t.Run("Leave of an unbound connection is a no-op", func(t *testing.T) {
		hub := NewHub(newTestLogger())

		hub.Leave(newConn("c1", nil, 1))
	})

	t.Run("Close disconnects everyone and refuses new joins", func(t *testing.T) {
		hub := NewHub(newTestLogger())
		c := newConn("c1", nil, 4)
		session := fixtureSession()
		require.NoError(t, hub.Join(c, "host-1", session))

		hub.Close()

		assert.True(t, c.isClosed())
		assert.Equal(t, 0, hub.connections(session.Code))
		require.ErrorIs(t, hub.Join(newConn("c2", nil, 4), "guest-1", session), ErrHubClosed)
	})
}
