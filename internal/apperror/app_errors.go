package apperror

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("session not found")
	ErrForbidden        = errors.New("not a player in this session")
	ErrSessionFull      = errors.New("session is full")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrIllegalMove      = errors.New("illegal move")
	ErrNoLegalMove      = errors.New("no legal move")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFinished     = errors.New("game is already finished")
)

// Wire codes reported to push clients in error messages.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeNotFound        = "not_found"
	CodeForbidden       = "forbidden"
	CodeSessionFull     = "session_full"
	CodeNotYourTurn     = "not_your_turn"
	CodeIllegalMove     = "illegal_move"
	CodeNoLegalMove     = "no_legal_move"
	CodeNotStarted      = "not_started"
	CodeFinished        = "finished"
	CodeInternal        = "internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidArgument, CodeInvalidArgument},
	{ErrNotFound, CodeNotFound},
	{ErrForbidden, CodeForbidden},
	{ErrSessionFull, CodeSessionFull},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrIllegalMove, CodeIllegalMove},
	{ErrNoLegalMove, CodeNoLegalMove},
	{ErrGameIsNotStarted, CodeNotStarted},
	{ErrGameFinished, CodeFinished},
}

// Code - returns the wire code of the first taxonomy error found in err's chain.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}
