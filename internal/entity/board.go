package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

// Mark is the content of a board cell and also names the side to move.
type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

// Outcome is the result of a finished game.
type Outcome string

const (
	OutcomeNone  Outcome = ""
	OutcomeXWins Outcome = "X"
	OutcomeOWins Outcome = "O"
	OutcomeDraw  Outcome = "draw"
)

const BoardSize = 9

// Board is a 3x3 grid stored row-major. It is an array, so assignment copies it.
type Board [BoardSize]Mark

// WinCombos - rows, columns and diagonals, in scan order.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

func (m Mark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

// Opponent - returns the other player's mark. EmptyCell has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// Winner - returns the winning mark, or EmptyCell for a draw or an unfinished game.
func (o Outcome) Winner() Mark {
	switch o {
	case OutcomeXWins:
		return PlayerX
	case OutcomeOWins:
		return PlayerO
	default:
		return EmptyCell
	}
}

func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeNone, OutcomeXWins, OutcomeOWins, OutcomeDraw:
		return true
	default:
		return false
	}
}

// DetectOutcome - returns the mark of the first complete triple in WinCombos order,
// a draw when the board is full, and OutcomeNone otherwise.
func DetectOutcome(board Board) Outcome {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Outcome(a)
		}
	}

	// the game will continue until all the squares are full
	if board.IsFull() {
		return OutcomeDraw
	}

	return OutcomeNone
}

// LegalMoves - returns the empty cells in ascending order.
func LegalMoves(board Board) []int {
	moves := make([]int, 0, BoardSize)
	for i, cell := range board {
		if cell == EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

// ApplyMove - returns a copy of board with mark placed on index.
func ApplyMove(board Board, index int, mark Mark) (Board, error) {
	if index < 0 || index >= BoardSize {
		return board, fmt.Errorf("%w: cell %d is out of range", apperror.ErrIllegalMove, index)
	}

	if !mark.IsPlayer() {
		return board, fmt.Errorf("%w: unknown mark %q", apperror.ErrIllegalMove, mark)
	}

	if board[index] != EmptyCell {
		return board, fmt.Errorf("%w: cell %d is already occupied", apperror.ErrIllegalMove, index)
	}

	next := board
	next[index] = mark

	return next, nil
}

func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (b Board) IsEmpty() bool {
	return b == Board{}
}

// String renders the board as three lines, "." for empty cells.
func (b Board) String() string {
	var sb strings.Builder
	for i, cell := range b {
		if cell == EmptyCell {
			sb.WriteByte('.')
		} else {
			sb.WriteString(string(cell))
		}

		switch {
		case i == BoardSize-1:
		case i%3 == 2:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
	}

	return sb.String()
}
