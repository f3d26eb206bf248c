package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/client"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

var ErrLinkClosed = errors.New("session link closed")

type sessionClient interface {
	JoinSession(ctx context.Context, code, guestID string) (*entity.Session, error)
	Attach(ctx context.Context, code, playerID string) (*client.Link, error)
}

type adversary interface {
	SelectMove(board entity.Board, own entity.Mark) (int, error)
}

// BotPlayer takes the guest seat of a session over the network and plays it with the adversary.
type BotPlayer struct {
	logger    *slog.Logger
	client    sessionClient
	adversary adversary
	playerID  string
}

func NewBotPlayer(logger *slog.Logger, client sessionClient, adversary adversary, playerID string) *BotPlayer {
	return &BotPlayer{
		logger:    logger.With("component", "bot", "playerID", playerID),
		client:    client,
		adversary: adversary,
		playerID:  playerID,
	}
}

// Play - joins code and answers every position where it is the bot's turn until ctx is done.
// Games restarted by the host are played as well.
func (that *BotPlayer) Play(ctx context.Context, code string) error {
	log := that.logger.With("method", "Play", "sessionCode", code)

	if _, err := that.client.JoinSession(ctx, code, that.playerID); err != nil {
		return fmt.Errorf("bot failed to join: %w", err)
	}

	link, err := that.client.Attach(ctx, code, that.playerID)
	if err != nil {
		return fmt.Errorf("bot failed to attach: %w", err)
	}
	defer link.Close()

	log.Info("bot joined session", "mode", link.Mode())

	for {
		select {
		case <-ctx.Done():
			return nil
		case err = <-link.Errors():
			log.Warn("bot action rejected", "error", err)
		case session, ok := <-link.Updates():
			if !ok {
				return ErrLinkClosed
			}

			if err = that.answer(ctx, link, session); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (that *BotPlayer) answer(ctx context.Context, link *client.Link, session *entity.Session) error {
	if session.IsFinished() {
		that.logger.Info("game over",
			"winner", session.Winner,
			"board", session.Board.String(),
			"hostScore", session.HostWins,
			"botScore", session.GuestWins,
		)
		return nil
	}

	mark, ok := session.MarkOf(that.playerID)
	if !ok {
		return fmt.Errorf("bot lost its seat in %s", session.Code)
	}

	if !session.IsOngoing() || session.Turn != mark {
		return nil
	}

	cell, err := that.adversary.SelectMove(session.Board, mark)
	if err != nil {
		return fmt.Errorf("bot failed to select move: %w", err)
	}

	if err = link.Move(ctx, cell); err != nil {
		return fmt.Errorf("bot failed to move: %w", err)
	}

	that.logger.Debug("bot moved", "cell", cell)

	return nil
}
