package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const sessionKeyPrefix = "session:"

// SessionRepository - key-value storage of session records. Save fully replaces the record
// returned by the next Load of the same code.
type SessionRepository interface {
	Load(ctx context.Context, code string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Exists(ctx context.Context, code string) (bool, error)
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func (that *dbSession) Save(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	err = that.client.Set(ctx, sessionKey(session.Code), sessionJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) Load(ctx context.Context, code string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var existingSession entity.Session
	if err = json.Unmarshal([]byte(response), &existingSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existingSession, nil
}

func (that *dbSession) Exists(ctx context.Context, code string) (bool, error) {
	count, err := that.client.Exists(ctx, sessionKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}

	return count > 0, nil
}

func sessionKey(code string) string {
	return sessionKeyPrefix + code
}
