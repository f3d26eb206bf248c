package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
)

type nopPublisher struct{}

func (nopPublisher) Publish(*entity.Session) {}

func newTestServer(t *testing.T) (*httptest.Server, *clockwork.FakeClock) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	manager := usecase.NewSessionManager(
		logger,
		repository.NewMemorySessionRepository(),
		tictactoe.NewAdversary(),
		nopPublisher{},
		clock,
	)

	server := httptest.NewServer(New(logger, manager).Handler())
	t.Cleanup(server.Close)

	return server, clock
}

func do(t *testing.T, method, target, body string) (int, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decodeSession(t *testing.T, data []byte) *entity.Session {
	t.Helper()

	var session entity.Session
	require.NoError(t, json.Unmarshal(data, &session))

	return &session
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(data, &resp))

	return resp.Message
}

func TestHandlers(t *testing.T) {
	t.Run("Ping answers pong", func(t *testing.T) {
		server, _ := newTestServer(t)

		status, body := do(t, http.MethodGet, server.URL+"/ping", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "pong", string(body))
	})

	t.Run("Health reports ok", func(t *testing.T) {
		server, _ := newTestServer(t)

		status, body := do(t, http.MethodGet, server.URL+"/api/health", "")

		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"status":"ok"}`, string(body))
	})

	t.Run("Full game over HTTP", func(t *testing.T) {
		// Given: A session created and joined over HTTP
		server, _ := newTestServer(t)

		status, body := do(t, http.MethodPost, server.URL+"/api/sessions", `{"hostPlayerId":"host-1"}`)
		require.Equal(t, http.StatusOK, status)
		session := decodeSession(t, body)
		assert.Equal(t, entity.StatusWaiting, session.Status)
		assert.Equal(t, entity.OpponentHuman, session.Opponent)

		base := server.URL + "/api/sessions/" + session.Code

		status, body = do(t, http.MethodPost, base+"/join", `{"guestPlayerId":"guest-1"}`)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, entity.StatusPlaying, decodeSession(t, body).Status)

		// When: X takes the diagonal
		for _, move := range []string{
			`{"position":0,"playerId":"host-1"}`,
			`{"position":1,"playerId":"guest-1"}`,
			`{"position":4,"playerId":"host-1"}`,
			`{"position":2,"playerId":"guest-1"}`,
			`{"position":8,"playerId":"host-1"}`,
		} {
			status, body = do(t, http.MethodPost, base+"/move", move)
			require.Equal(t, http.StatusOK, status, string(body))
		}

		// Then: The record shows the win
		status, body = do(t, http.MethodGet, base, "")
		require.Equal(t, http.StatusOK, status)
		session = decodeSession(t, body)
		assert.Equal(t, entity.StatusFinished, session.Status)
		assert.Equal(t, entity.OutcomeXWins, session.Winner)
		assert.Equal(t, 1, session.HostWins)

		// When: The game is reset
		status, body = do(t, http.MethodPost, base+"/reset", "")

		// Then: The board is clear and the score is kept
		require.Equal(t, http.StatusOK, status)
		session = decodeSession(t, body)
		assert.True(t, session.Board.IsEmpty())
		assert.Equal(t, 1, session.HostWins)
	})

	t.Run("Errors map to status codes", func(t *testing.T) {
		server, _ := newTestServer(t)

		_, body := do(t, http.MethodPost, server.URL+"/api/sessions", `{"hostPlayerId":"host-1"}`)
		base := server.URL + "/api/sessions/" + decodeSession(t, body).Code

		status, body := do(t, http.MethodPost, base+"/move", `{"position":0,"playerId":"host-1"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "failed to make move: game is not started", errorMessage(t, body))

		status, _ = do(t, http.MethodPost, base+"/join", `{"guestPlayerId":"guest-1"}`)
		require.Equal(t, http.StatusOK, status)

		status, _ = do(t, http.MethodPost, base+"/join", `{"guestPlayerId":"guest-2"}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, http.MethodPost, base+"/move", `{"position":0,"playerId":"guest-1"}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, http.MethodPost, base+"/move", `{"position":0,"playerId":"stranger"}`)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = do(t, http.MethodPost, base+"/move", `{"position":9,"playerId":"host-1"}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, http.MethodPost, base+"/move", `{"playerId":"host-1"}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, http.MethodPost, base+"/move", `{"position":0,"playerId":"host-1","mark":"O"}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, http.MethodGet, server.URL+"/api/sessions/NOPE-NOPE", "")
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = do(t, http.MethodPost, server.URL+"/api/sessions", `{"hostPlayerId":""}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Bot sessions answer in the same response", func(t *testing.T) {
		server, _ := newTestServer(t)

		status, body := do(t, http.MethodPost, server.URL+"/api/sessions", `{"hostPlayerId":"host-1","opponent":"bot"}`)
		require.Equal(t, http.StatusOK, status)
		session := decodeSession(t, body)
		assert.Equal(t, entity.StatusPlaying, session.Status)

		status, body = do(t, http.MethodPost, server.URL+"/api/sessions/"+session.Code+"/move", `{"position":4,"playerId":"host-1"}`)
		require.Equal(t, http.StatusOK, status)
		session = decodeSession(t, body)
		assert.Len(t, entity.LegalMoves(session.Board), 7)
		assert.Equal(t, entity.PlayerX, session.Turn)
	})
}

func TestPoll(t *testing.T) {
	type pollBody struct {
		HasUpdate   bool            `json:"hasUpdate"`
		Session     *entity.Session `json:"session"`
		LastUpdate  *time.Time      `json:"lastUpdate"`
		LastChecked *time.Time      `json:"lastChecked"`
	}

	poll := func(t *testing.T, target string, since *time.Time) (int, pollBody) {
		t.Helper()

		if since != nil {
			target += "?lastUpdate=" + url.QueryEscape(since.Format(time.RFC3339Nano))
		}

		status, data := do(t, http.MethodGet, target, "")

		var body pollBody
		if status == http.StatusOK {
			require.NoError(t, json.Unmarshal(data, &body))
		}

		return status, body
	}

	t.Run("Delivers only what changed since the last poll", func(t *testing.T) {
		// Given: A started session
		server, clock := newTestServer(t)

		_, data := do(t, http.MethodPost, server.URL+"/api/sessions", `{"hostPlayerId":"host-1"}`)
		base := server.URL + "/api/sessions/" + decodeSession(t, data).Code
		do(t, http.MethodPost, base+"/join", `{"guestPlayerId":"guest-1"}`)

		// When: Polling for the first time
		status, first := poll(t, base+"/poll", nil)

		// Then: The record is delivered with its stamp
		require.Equal(t, http.StatusOK, status)
		require.True(t, first.HasUpdate)
		require.NotNil(t, first.LastUpdate)
		assert.True(t, first.LastUpdate.Equal(first.Session.UpdatedAt))

		// When: Polling again with that stamp
		status, second := poll(t, base+"/poll", first.LastUpdate)

		// Then: Nothing new
		require.Equal(t, http.StatusOK, status)
		assert.False(t, second.HasUpdate)
		assert.Nil(t, second.Session)
		assert.NotNil(t, second.LastChecked)

		// When: A move lands
		clock.Advance(time.Second)
		do(t, http.MethodPost, base+"/move", `{"position":4,"playerId":"host-1"}`)
		status, third := poll(t, base+"/poll", first.LastUpdate)

		// Then: The move is delivered
		require.Equal(t, http.StatusOK, status)
		require.True(t, third.HasUpdate)
		assert.Equal(t, entity.PlayerX, third.Session.Board[4])
	})

	t.Run("Rejects a malformed timestamp", func(t *testing.T) {
		server, _ := newTestServer(t)
		_, data := do(t, http.MethodPost, server.URL+"/api/sessions", `{"hostPlayerId":"host-1"}`)

		status, _ := do(t, http.MethodGet, server.URL+"/api/sessions/"+decodeSession(t, data).Code+"/poll?lastUpdate=yesterday", "")

		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Unknown session is not found", func(t *testing.T) {
		server, _ := newTestServer(t)

		status, _ := poll(t, server.URL+"/api/sessions/NOPE-NOPE/poll", nil)

		assert.Equal(t, http.StatusNotFound, status)
	})
}
