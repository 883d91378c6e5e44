package bot

import (
	"strings"

	"coinche/internal/domain"
)

// MoveKind tells whether a Move is an auction action or a card.
type MoveKind int

const (
	MoveBid MoveKind = iota
	MovePlay
)

// Move represents the decision made by the AI.
type Move struct {
	Kind   MoveKind
	Action domain.BidAction
	Value  int
	Trump  domain.Suit
	Card   domain.Card
}

// PassMove is the auction pass.
func PassMove() Move {
	return Move{Kind: MoveBid, Action: domain.BidPass}
}

// PlayMove lays c.
func PlayMove(c domain.Card) Move {
	return Move{Kind: MovePlay, Card: c}
}

// GameReset is sent to brains when the table drops its game. Deal numbers
// restart with the next game, so memory keyed on them must be cleared.
type GameReset struct{}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(game *domain.Game, seat int) (Move, error)
	OnEvent(event interface{})
}

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelGood
)

// ParseLevel maps an identity difficulty to a level. Unknown values play well.
func ParseLevel(difficulty string) BotLevel {
	if strings.EqualFold(strings.TrimSpace(difficulty), "easy") {
		return BotLevelEasy
	}
	return BotLevelGood
}
