package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

type sqliteSession struct {
	conn *sql.DB
}

// NewSQLiteSessionRepository - expects the sessions table created by storage.Storage.Init.
func NewSQLiteSessionRepository(conn *sql.DB) SessionRepository {
	return &sqliteSession{
		conn: conn,
	}
}

func (that *sqliteSession) Save(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("can't marshal session: %w", err)
	}

	query := `INSERT INTO sessions (code, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

	_, err = that.conn.ExecContext(ctx, query, session.Code, string(data), session.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("can't save session: %w", err)
	}

	return nil
}

func (that *sqliteSession) Load(ctx context.Context, code string) (*entity.Session, error) {
	query := `SELECT data FROM sessions WHERE code = ?`

	var data string

	err := that.conn.QueryRowContext(ctx, query, code).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't load session: %w", err)
	}

	var session entity.Session
	if err = json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("can't unmarshal session: %w", err)
	}

	return &session, nil
}

func (that *sqliteSession) Exists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sessions WHERE code = ?)`

	var exists bool
	if err := that.conn.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("can't check session: %w", err)
	}

	return exists, nil
}
