package service

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/client"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/rest"
	"github.com/rocketscienceinc/tictactoe-sessions/transport/websocket"
)

func newTestClient(t *testing.T, withSocket bool) *client.Client {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	hub := websocket.NewHub(logger)
	manager := usecase.NewSessionManager(
		logger,
		repository.NewMemorySessionRepository(),
		tictactoe.NewAdversary(),
		hub,
		clockwork.NewRealClock(),
	)

	restServer := httptest.NewServer(rest.New(logger, manager).Handler())
	socketServer := httptest.NewServer(websocket.New(logger, manager, hub, websocket.Config{
		PingPeriod: time.Second,
		PongWait:   2 * time.Second,
		SendBuffer: 16,
	}).Handler())

	t.Cleanup(func() {
		hub.Close()
		socketServer.Close()
		restServer.Close()
	})

	conf := client.Config{
		HTTPURL:      restServer.URL,
		PollInterval: 20 * time.Millisecond,
	}
	if withSocket {
		conf.SocketURL = "ws" + strings.TrimPrefix(socketServer.URL, "http") + "/ws"
	}

	return client.New(logger, conf)
}

func TestBotPlayer_Play(t *testing.T) {
	for _, withSocket := range []bool{true, false} {
		name := "over polling"
		if withSocket {
			name = "over the socket"
		}

		t.Run("Never loses "+name, func(t *testing.T) {
			// Given: A waiting session and a bot ready to join it
			c := newTestClient(t, withSocket)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			session, err := c.CreateSession(ctx, "host-1", entity.OpponentHuman)
			require.NoError(t, err)

			bot := NewBotPlayer(slog.New(slog.NewJSONHandler(io.Discard, nil)), c, tictactoe.NewAdversary(), "bot-1")

			done := make(chan error, 1)
			go func() { done <- bot.Play(ctx, session.Code) }()

			// When: The host plays the lowest free cell every turn
			require.Eventually(t, func() bool {
				current, err := c.GetSession(ctx, session.Code)
				if err != nil {
					return false
				}

				if current.IsFinished() {
					session = current
					return true
				}

				if current.IsOngoing() && current.Turn == entity.PlayerX {
					_, _ = c.Move(ctx, session.Code, "host-1", entity.LegalMoves(current.Board)[0])
				}

				return false
			}, 5*time.Second, 10*time.Millisecond)

			// Then: The bot held its seat and did not lose
			assert.Equal(t, "bot-1", session.GuestID)
			assert.NotEqual(t, entity.OutcomeXWins, session.Winner)

			cancel()
			select {
			case err = <-done:
				require.NoError(t, err)
			case <-time.After(3 * time.Second):
				t.Fatal("bot did not stop")
			}
		})
	}

	t.Run("Fails when the seat is taken", func(t *testing.T) {
		c := newTestClient(t, false)
		ctx := context.Background()

		session, err := c.CreateSession(ctx, "host-1", entity.OpponentHuman)
		require.NoError(t, err)
		_, err = c.JoinSession(ctx, session.Code, "guest-1")
		require.NoError(t, err)

		bot := NewBotPlayer(slog.New(slog.NewJSONHandler(io.Discard, nil)), c, tictactoe.NewAdversary(), "bot-1")

		err = bot.Play(ctx, session.Code)

		require.ErrorIs(t, err, apperror.ErrInvalidArgument)
	})
}
