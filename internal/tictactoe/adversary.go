package tictactoe

import (
	"fmt"
	"math"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const winScore = 10

// Adversary picks moves for the side that has no human behind it.
type Adversary struct{}

func NewAdversary() *Adversary {
	return &Adversary{}
}

func (that *Adversary) SelectMove(board entity.Board, own entity.Mark) (int, error) {
	return SelectMove(board, own)
}

// SelectMove - returns the optimal cell for own using minimax with alpha-beta pruning.
// Faster wins and slower losses score higher. Among equal scores the lowest index wins.
func SelectMove(board entity.Board, own entity.Mark) (int, error) {
	if !own.IsPlayer() {
		return -1, fmt.Errorf("%w: unknown mark %q", apperror.ErrInvalidArgument, own)
	}

	if entity.DetectOutcome(board) != entity.OutcomeNone {
		return -1, apperror.ErrNoLegalMove
	}

	best, bestScore := -1, math.MinInt
	alpha, beta := math.MinInt, math.MaxInt

	for _, cell := range entity.LegalMoves(board) {
		next, err := entity.ApplyMove(board, cell, own)
		if err != nil {
			return -1, fmt.Errorf("failed to apply candidate move: %w", err)
		}

		score := minimax(next, 1, own, own.Opponent(), alpha, beta)
		if score > bestScore {
			best, bestScore = cell, score
		}

		alpha = max(alpha, score)
	}

	return best, nil
}

// minimax - scores board from own's point of view with toMove to play.
func minimax(board entity.Board, depth int, own, toMove entity.Mark, alpha, beta int) int {
	switch outcome := entity.DetectOutcome(board); {
	case outcome == entity.OutcomeDraw:
		return 0
	case outcome.Winner() == own:
		return winScore - depth
	case outcome.Winner() == own.Opponent():
		return depth - winScore
	}

	maximizing := toMove == own

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for _, cell := range entity.LegalMoves(board) {
		next := board
		next[cell] = toMove

		score := minimax(next, depth+1, own, toMove.Opponent(), alpha, beta)

		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}

		if beta <= alpha {
			break
		}
	}

	return best
}
