package app

import (
	"errors"
	"fmt"

	"coinche/internal/domain"
)

// Command is an inbound table action carrying the caller's identity.
type Command interface {
	Actor() string
}

type JoinCommand struct {
	UserID string
	Name   string
}

type StartCommand struct {
	UserID string
}

type BidCommand struct {
	UserID string
	Action domain.BidAction
	Value  int
	Trump  domain.Suit
}

type PlayCardCommand struct {
	UserID string
	Card   domain.Card
}

// LeaveCommand covers both an explicit leave and a dropped connection.
type LeaveCommand struct {
	UserID     string
	Disconnect bool
}

func (c JoinCommand) Actor() string     { return c.UserID }
func (c StartCommand) Actor() string    { return c.UserID }
func (c BidCommand) Actor() string      { return c.UserID }
func (c PlayCardCommand) Actor() string { return c.UserID }
func (c LeaveCommand) Actor() string    { return c.UserID }

// Apply runs one command against the table. A rejected command returns an
// error and leaves the table unchanged.
func (s *Service) Apply(t *Table, cmd Command) ([]Event, error) {
	switch c := cmd.(type) {
	case JoinCommand:
		return s.Join(t, c.UserID, c.Name)
	case StartCommand:
		return s.Start(t, c.UserID)
	case BidCommand:
		return s.Bid(t, c.UserID, c.Action, c.Value, c.Trump)
	case PlayCardCommand:
		return s.PlayCard(t, c.UserID, c.Card)
	case LeaveCommand:
		if c.Disconnect {
			return s.Disconnect(t, c.UserID)
		}
		return s.Leave(t, c.UserID)
	default:
		return nil, fmt.Errorf("unknown command %T", cmd)
	}
}

// ErrorCode maps a rejection to the short code sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfTurn):
		return "out_of_turn"
	case errors.Is(err, domain.ErrIllegalBid):
		return "illegal_bid"
	case errors.Is(err, domain.ErrIllegalCard):
		return "illegal_card"
	case errors.Is(err, domain.ErrInvalidPhase), errors.Is(err, ErrAlreadyStarted):
		return "invalid_phase"
	case errors.Is(err, ErrNotHost):
		return "not_host"
	case errors.Is(err, ErrNeedFourPlayers):
		return "need_four_players"
	case errors.Is(err, ErrTableFull):
		return "table_full"
	case errors.Is(err, ErrUnknownPlayer):
		return "unknown_player"
	}
	return "bad_request"
}
