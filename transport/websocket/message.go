package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

type MessageType string

const (
	TypeJoinSession MessageType = "join_session"
	TypeMakeMove    MessageType = "make_move"
	TypeResetGame   MessageType = "reset_game"

	TypeSessionState MessageType = "session_state"
	TypePlayerJoined MessageType = "player_joined"
	TypePlayerLeft   MessageType = "player_left"
	TypeGameUpdate   MessageType = "game_update"
	TypeError        MessageType = "error"
)

type envelope struct {
	Type MessageType `json:"type"`
}

// JoinSession binds the connection to a session and seats the player if the guest seat is free.
type JoinSession struct {
	Type        MessageType `json:"type"`
	SessionCode string      `json:"sessionCode"`
	PlayerID    string      `json:"playerId"`
}

type MakeMove struct {
	Type     MessageType `json:"type"`
	Position *int        `json:"position"`
}

type ResetGame struct {
	Type MessageType `json:"type"`
}

// SessionMessage carries a full record: session_state and game_update.
type SessionMessage struct {
	Type    MessageType     `json:"type"`
	Session *entity.Session `json:"session"`
}

// PlayerMessage carries a participant id: player_joined and player_left.
type PlayerMessage struct {
	Type     MessageType `json:"type"`
	PlayerID string      `json:"playerId"`
}

type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

// Event is the loose shape of anything the server pushes. Clients decode into it.
type Event struct {
	Type     MessageType     `json:"type"`
	Session  *entity.Session `json:"session,omitempty"`
	PlayerID string          `json:"playerId,omitempty"`
	Code     string          `json:"code,omitempty"`
	Message  string          `json:"message,omitempty"`
}

func messageType(data []byte) (MessageType, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: malformed message: %w", apperror.ErrInvalidArgument, err)
	}

	if env.Type == "" {
		return "", fmt.Errorf("%w: message type is required", apperror.ErrInvalidArgument)
	}

	return env.Type, nil
}

// decodeStrict - unknown fields and trailing data are rejected.
func decodeStrict(data []byte, dst any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidArgument, err)
	}

	if decoder.More() {
		return fmt.Errorf("%w: trailing data after message", apperror.ErrInvalidArgument)
	}

	return nil
}

func encodeSession(kind MessageType, session *entity.Session) ([]byte, error) {
	return json.Marshal(SessionMessage{Type: kind, Session: session})
}

func encodePlayer(kind MessageType, playerID string) ([]byte, error) {
	return json.Marshal(PlayerMessage{Type: kind, PlayerID: playerID})
}

func encodeError(code, message string) ([]byte, error) {
	return json.Marshal(ErrorMessage{Type: TypeError, Code: code, Message: message})
}
