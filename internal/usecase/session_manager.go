package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/pkg"
)

const maxCodeAttempts = 16

var ErrNoFreeCode = errors.New("no free session code")

type sessionRepoDep interface {
	Load(ctx context.Context, code string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Exists(ctx context.Context, code string) (bool, error)
}

// publisherDep receives every committed record while the session's lock is held,
// so it must not block and must not call back into the manager.
type publisherDep interface {
	Publish(session *entity.Session)
}

type adversaryDep interface {
	SelectMove(board entity.Board, own entity.Mark) (int, error)
}

// PollResult is the answer to a pull-transport request.
type PollResult struct {
	HasUpdate bool
	Session   *entity.Session
	CheckedAt time.Time
}

// SessionManager is the only writer of session records.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepoDep
	adversary   adversaryDep
	publisher   publisherDep
	clock       clockwork.Clock

	locks        *keyedMutex
	generateCode func() (string, error)
}

func NewSessionManager(
	logger *slog.Logger,
	sessionRepo sessionRepoDep,
	adversary adversaryDep,
	publisher publisherDep,
	clock clockwork.Clock,
) *SessionManager {
	return &SessionManager{
		logger:      logger.With("component", "session_manager"),
		sessionRepo: sessionRepo,
		adversary:   adversary,
		publisher:   publisher,
		clock:       clock,

		locks:        newKeyedMutex(),
		generateCode: pkg.GenerateSessionCode,
	}
}

// Create - opens a session waiting for a human guest.
func (that *SessionManager) Create(ctx context.Context, hostID string) (*entity.Session, error) {
	return that.CreateWithOpponent(ctx, hostID, entity.OpponentHuman)
}

func (that *SessionManager) CreateWithOpponent(ctx context.Context, hostID string, opponent entity.Opponent) (*entity.Session, error) {
	if hostID == "" {
		return nil, fmt.Errorf("%w: host player id is required", apperror.ErrInvalidArgument)
	}

	if opponent == "" {
		opponent = entity.OpponentHuman
	}

	if !opponent.IsValid() {
		return nil, fmt.Errorf("%w: unknown opponent %q", apperror.ErrInvalidArgument, opponent)
	}

	for range maxCodeAttempts {
		code, err := that.generateCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session code: %w", err)
		}

		session, err := that.createWithCode(ctx, code, hostID, opponent)
		if err != nil {
			return nil, err
		}

		if session == nil {
			that.logger.Debug("session code collision", "sessionCode", code)
			continue
		}

		that.logger.Info("session created", "sessionCode", code, "hostID", hostID, "opponent", opponent)

		return session, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrNoFreeCode, maxCodeAttempts)
}

// createWithCode - returns nil, nil when code is already live.
func (that *SessionManager) createWithCode(ctx context.Context, code, hostID string, opponent entity.Opponent) (*entity.Session, error) {
	unlock := that.locks.Lock(code)
	defer unlock()

	exists, err := that.sessionRepo.Exists(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check session code: %w", err)
	}

	if exists {
		return nil, nil //nolint: nilnil // a taken code is not an error, the caller retries
	}

	session := entity.NewSession(code, hostID, opponent, that.clock.Now().UTC())
	if err = that.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// Join - seats guestID in the session and starts the game.
func (that *SessionManager) Join(ctx context.Context, code, guestID string) (*entity.Session, error) {
	if guestID == "" {
		return nil, fmt.Errorf("%w: guest player id is required", apperror.ErrInvalidArgument)
	}

	session, err := that.mutate(ctx, code, func(session *entity.Session) error {
		return session.Join(guestID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	that.logger.Info("guest joined", "sessionCode", code, "guestID", guestID)

	return session, nil
}

// Move - places the caller's mark on cell. In a bot session the adversary answers
// within the same call.
func (that *SessionManager) Move(ctx context.Context, code, playerID string, cell int) (*entity.Session, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", apperror.ErrInvalidArgument)
	}

	session, err := that.mutate(ctx, code, func(session *entity.Session) error {
		if session.IsWithBot() && playerID == session.GuestID {
			return apperror.ErrForbidden
		}

		if err := session.MakeTurn(playerID, cell); err != nil {
			return err
		}

		if session.IsWithBot() && session.IsOngoing() {
			return that.botTurn(session)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	if session.IsFinished() {
		that.logger.Info("game finished", "sessionCode", code, "winner", session.Winner)
	}

	return session, nil
}

func (that *SessionManager) botTurn(session *entity.Session) error {
	botMark, _ := session.MarkOf(session.GuestID)

	cell, err := that.adversary.SelectMove(session.Board, botMark)
	if err != nil {
		return fmt.Errorf("bot failed to select move: %w", err)
	}

	if err = session.MakeTurn(session.GuestID, cell); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}

// Reset - clears the board for the next game, keeping the tally.
func (that *SessionManager) Reset(ctx context.Context, code string) (*entity.Session, error) {
	session, err := that.mutate(ctx, code, func(session *entity.Session) error {
		return session.Reset()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}

	return session, nil
}

// Get - returns the current record.
func (that *SessionManager) Get(ctx context.Context, code string) (*entity.Session, error) {
	var session *entity.Session

	err := that.Snapshot(ctx, code, func(current *entity.Session) {
		session = current
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Poll - returns the record only if it changed after since. A nil since always gets it.
func (that *SessionManager) Poll(ctx context.Context, code string, since *time.Time) (*PollResult, error) {
	session, err := that.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	result := &PollResult{
		CheckedAt: that.clock.Now().UTC(),
	}

	if session.ChangedSince(since) {
		result.HasUpdate = true
		result.Session = session
	}

	return result, nil
}

// Snapshot - runs fn with the current record while no mutation of code can commit.
func (that *SessionManager) Snapshot(ctx context.Context, code string, fn func(session *entity.Session)) error {
	if code == "" {
		return fmt.Errorf("%w: session code is required", apperror.ErrInvalidArgument)
	}

	unlock := that.locks.Lock(code)
	defer unlock()

	session, err := that.sessionRepo.Load(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to get session %s: %w", code, err)
	}

	fn(session)

	return nil
}

// mutate - loads, changes, stamps, saves and publishes one session under its lock.
// Nothing is saved or published when fn fails.
func (that *SessionManager) mutate(ctx context.Context, code string, fn func(session *entity.Session) error) (*entity.Session, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: session code is required", apperror.ErrInvalidArgument)
	}

	unlock := that.locks.Lock(code)
	defer unlock()

	session, err := that.sessionRepo.Load(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", code, err)
	}

	if err = fn(session); err != nil {
		return nil, err
	}

	session.Stamp(that.clock.Now().UTC())

	if err = that.sessionRepo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", code, err)
	}

	that.publisher.Publish(session.Clone())

	return session, nil
}
