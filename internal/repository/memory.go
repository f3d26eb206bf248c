package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// memorySession keeps records by value, so callers never share memory with the store.
type memorySession struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySession{
		sessions: make(map[string]entity.Session),
	}
}

func (that *memorySession) Save(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.Code] = *session

	return nil
}

func (that *memorySession) Load(_ context.Context, code string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[code]
	if !ok {
		return nil, apperror.ErrNotFound
	}

	return &session, nil
}

func (that *memorySession) Exists(_ context.Context, code string) (bool, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.sessions[code]

	return ok, nil
}
