package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

var errNotJoined = fmt.Errorf("%w: join a session first", apperror.ErrInvalidArgument)

func (that *Server) handleJoinSession(ctx context.Context, c *conn, data []byte) error {
	log := that.logger.With("method", "handleJoinSession", "connID", c.id)

	var msg JoinSession
	if err := decodeStrict(data, &msg); err != nil {
		return err
	}

	if msg.SessionCode == "" || msg.PlayerID == "" {
		return fmt.Errorf("%w: sessionCode and playerId are required", apperror.ErrInvalidArgument)
	}

	session, err := that.manager.Get(ctx, msg.SessionCode)
	if err != nil {
		return err
	}

	if !session.IsParticipant(msg.PlayerID) {
		// only the two seated players follow a session
		if _, err = that.manager.Join(ctx, msg.SessionCode, msg.PlayerID); err != nil {
			return err
		}
	}

	// a connection watches one session at a time
	that.hub.Leave(c)

	var joinErr error
	err = that.manager.Snapshot(ctx, msg.SessionCode, func(current *entity.Session) {
		joinErr = that.hub.Join(c, msg.PlayerID, current)
	})
	if err = errors.Join(err, joinErr); err != nil {
		return err
	}

	log.Info("connection joined session", "sessionCode", msg.SessionCode, "playerID", msg.PlayerID)

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, c *conn, data []byte) error {
	var msg MakeMove
	if err := decodeStrict(data, &msg); err != nil {
		return err
	}

	if msg.Position == nil {
		return fmt.Errorf("%w: position is required", apperror.ErrInvalidArgument)
	}

	code, playerID := c.binding()
	if code == "" {
		return errNotJoined
	}

	if _, err := that.manager.Move(ctx, code, playerID, *msg.Position); err != nil {
		return err
	}

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, c *conn, data []byte) error {
	var msg ResetGame
	if err := decodeStrict(data, &msg); err != nil {
		return err
	}

	code, _ := c.binding()
	if code == "" {
		return errNotJoined
	}

	if _, err := that.manager.Reset(ctx, code); err != nil {
		return err
	}

	return nil
}
