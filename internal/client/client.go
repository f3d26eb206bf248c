package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const requestTimeout = 10 * time.Second

type Config struct {
	HTTPURL      string
	SocketURL    string
	PollInterval time.Duration
}

// StatusError is a non-2xx answer of the HTTP API. It unwraps to the matching apperror sentinel.
type StatusError struct {
	StatusCode int
	Message    string
}

func (that *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", that.StatusCode, that.Message)
}

func (that *StatusError) Unwrap() error {
	switch that.StatusCode {
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusForbidden:
		return apperror.ErrForbidden
	case http.StatusBadRequest:
		return apperror.ErrInvalidArgument
	default:
		return nil
	}
}

type PollResult struct {
	HasUpdate   bool            `json:"hasUpdate"`
	Session     *entity.Session `json:"session,omitempty"`
	LastUpdate  *time.Time      `json:"lastUpdate,omitempty"`
	LastChecked *time.Time      `json:"lastChecked,omitempty"`
}

// Client talks to a session server over HTTP and, when it can, over the socket.
type Client struct {
	logger *slog.Logger
	conf   Config

	http   *http.Client
	dialer *websocket.Dialer
}

func New(logger *slog.Logger, conf Config) *Client {
	return &Client{
		logger: logger.With("component", "client"),
		conf:   conf,

		http: &http.Client{Timeout: requestTimeout},
		dialer: &websocket.Dialer{
			HandshakeTimeout: requestTimeout,
		},
	}
}

func (that *Client) CreateSession(ctx context.Context, hostID string, opponent entity.Opponent) (*entity.Session, error) {
	body := map[string]any{"hostPlayerId": hostID}
	if opponent != "" {
		body["opponent"] = opponent
	}

	var session entity.Session
	if err := that.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &session, nil
}

func (that *Client) JoinSession(ctx context.Context, code, guestID string) (*entity.Session, error) {
	var session entity.Session
	if err := that.do(ctx, http.MethodPost, sessionPath(code, "join"), map[string]any{"guestPlayerId": guestID}, &session); err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	return &session, nil
}

func (that *Client) Move(ctx context.Context, code, playerID string, cell int) (*entity.Session, error) {
	body := map[string]any{"position": cell, "playerId": playerID}

	var session entity.Session
	if err := that.do(ctx, http.MethodPost, sessionPath(code, "move"), body, &session); err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	return &session, nil
}

func (that *Client) Reset(ctx context.Context, code string) (*entity.Session, error) {
	var session entity.Session
	if err := that.do(ctx, http.MethodPost, sessionPath(code, "reset"), nil, &session); err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}

	return &session, nil
}

func (that *Client) GetSession(ctx context.Context, code string) (*entity.Session, error) {
	var session entity.Session
	if err := that.do(ctx, http.MethodGet, sessionPath(code, ""), nil, &session); err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// Poll - asks whether the session changed after since. A nil since always gets the record.
func (that *Client) Poll(ctx context.Context, code string, since *time.Time) (*PollResult, error) {
	path := sessionPath(code, "poll")
	if since != nil {
		path += "?lastUpdate=" + url.QueryEscape(since.UTC().Format(time.RFC3339Nano))
	}

	var result PollResult
	if err := that.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to poll session: %w", err)
	}

	return &result, nil
}

func sessionPath(code, action string) string {
	path := "/api/sessions/" + url.PathEscape(code)
	if action != "" {
		path += "/" + action
	}

	return path
}

func (that *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, that.conf.HTTPURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := that.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Message string `json:"message"`
		}
		if err = json.NewDecoder(resp.Body).Decode(&errResp); err != nil && !errors.Is(err, io.EOF) {
			errResp.Message = http.StatusText(resp.StatusCode)
		}

		return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if err = json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
