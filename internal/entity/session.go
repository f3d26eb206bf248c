package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

// Phase is the coarse lifecycle state of a session.
type Phase string

const (
	StatusWaiting  Phase = "waiting"
	StatusPlaying  Phase = "playing"
	StatusFinished Phase = "finished"
)

// Opponent tells who sits in the guest seat.
type Opponent string

const (
	OpponentHuman Opponent = "human"
	OpponentBot   Opponent = "bot"
)

const botIDPrefix = "bot:"

// Tally counts finished games of a session. Reset keeps it.
type Tally struct {
	HostWins  int `json:"hostScore"`
	GuestWins int `json:"guestScore"`
	Draws     int `json:"draws"`
}

type Session struct {
	Code     string   `json:"sessionCode"`
	HostID   string   `json:"hostPlayerId"`
	GuestID  string   `json:"guestPlayerId,omitempty"`
	Board    Board    `json:"board"`
	Turn     Mark     `json:"currentPlayer"`
	Status   Phase    `json:"status"`
	Winner   Outcome  `json:"winner,omitempty"`
	Opponent Opponent `json:"opponent"`
	Tally

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewSession(code, hostID string, opponent Opponent, now time.Time) *Session {
	session := &Session{
		Code:      code,
		HostID:    hostID,
		Turn:      PlayerX,
		Status:    StatusWaiting,
		Opponent:  opponent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if opponent == OpponentBot {
		session.GuestID = BotID(code)
		session.Status = StatusPlaying
	}

	return session
}

// BotID - returns the guest id the adversary plays under in session code.
func BotID(code string) string {
	return botIDPrefix + code
}

func (o Opponent) IsValid() bool {
	return o == OpponentHuman || o == OpponentBot
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Session) IsOngoing() bool {
	return that.Status == StatusPlaying
}

func (that *Session) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Session) IsWithBot() bool {
	return that.Opponent == OpponentBot
}

// Clone - returns a copy that shares nothing with the receiver.
func (that *Session) Clone() *Session {
	c := *that
	return &c
}

// MarkOf - the host plays X and the guest plays O.
func (that *Session) MarkOf(playerID string) (Mark, bool) {
	switch {
	case playerID == "":
		return EmptyCell, false
	case playerID == that.HostID:
		return PlayerX, true
	case playerID == that.GuestID:
		return PlayerO, true
	default:
		return EmptyCell, false
	}
}

func (that *Session) IsParticipant(playerID string) bool {
	_, ok := that.MarkOf(playerID)
	return ok
}

// ConfirmOngoingState - returns nil only while the session accepts moves.
func (that *Session) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: unknown game status %q", apperror.ErrInvalidArgument, that.Status)
	}
}

// Join - seats guestID and starts the game.
func (that *Session) Join(guestID string) error {
	if guestID == "" {
		return fmt.Errorf("%w: guest player id is required", apperror.ErrInvalidArgument)
	}

	if that.GuestID != "" {
		return apperror.ErrSessionFull
	}

	if guestID == that.HostID {
		return fmt.Errorf("%w: host cannot join its own session", apperror.ErrInvalidArgument)
	}

	that.GuestID = guestID
	that.Status = StatusPlaying

	return nil
}

// MakeTurn - places the caller's mark, flips the turn and settles the game if it ended.
// The session is left untouched when an error is returned.
func (that *Session) MakeTurn(playerID string, cell int) error {
	mark, ok := that.MarkOf(playerID)
	if !ok {
		return apperror.ErrForbidden
	}

	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	board, err := ApplyMove(that.Board, cell, mark)
	if err != nil {
		return err
	}

	that.Board = board
	that.Turn = mark.Opponent()
	that.UpdateGameState()

	return nil
}

// UpdateGameState - finishes the game and counts it exactly once when the board is decided.
func (that *Session) UpdateGameState() {
	if that.IsFinished() {
		return
	}

	switch outcome := DetectOutcome(that.Board); outcome {
	case OutcomeXWins:
		that.HostWins++
		that.finish(outcome)
	case OutcomeOWins:
		that.GuestWins++
		that.finish(outcome)
	case OutcomeDraw:
		that.Draws++
		that.finish(outcome)
	// game continue
	default:
	}
}

func (that *Session) finish(outcome Outcome) {
	that.Winner = outcome
	that.Status = StatusFinished
}

// Reset - clears the board for a new game. The tally is kept.
func (that *Session) Reset() error {
	if that.IsWaiting() {
		return apperror.ErrGameIsNotStarted
	}

	that.Board = Board{}
	that.Turn = PlayerX
	that.Status = StatusPlaying
	that.Winner = OutcomeNone

	return nil
}

// Stamp - moves UpdatedAt forward. Stamps never repeat or go back, even when the clock does.
func (that *Session) Stamp(now time.Time) {
	if !now.After(that.UpdatedAt) {
		now = that.UpdatedAt.Add(time.Nanosecond)
	}

	that.UpdatedAt = now
}

// ChangedSince - reports whether the session was updated after since. A nil since means
// the caller has never seen the session.
func (that *Session) ChangedSince(since *time.Time) bool {
	if since == nil {
		return true
	}

	return that.UpdatedAt.After(*since)
}
