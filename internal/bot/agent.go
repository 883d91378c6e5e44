package bot

import (
	"errors"
	"fmt"

	"coinche/internal/domain"
)

var ErrNotBotTurn = errors.New("not the bot's turn")

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds the agent for a bot identity, picking its brain from the
// identity's difficulty.
func NewAgent(userID string) (*Agent, error) {
	identity, ok := GetBotConfig(userID)
	if !ok {
		identity = BotIdentity{UserID: userID, DisplayName: GetBotDisplayName(userID)}
	}
	strategy, err := NewBrain(ParseLevel(identity.Difficulty))
	if err != nil {
		return nil, fmt.Errorf("bot %s: %w", userID, err)
	}
	return &Agent{ID: userID, Name: identity.DisplayName, Strategy: strategy}, nil
}

// Play asks the agent for its move at seat. The seat must be on turn.
func (a *Agent) Play(game *domain.Game, seat int) (Move, error) {
	if game == nil || game.CurrentSeat() != seat {
		return Move{}, ErrNotBotTurn
	}
	return a.Strategy.CalculateMove(game, seat)
}

// OnGameEvent notifies the agent of a game event.
func (a *Agent) OnGameEvent(event interface{}) {
	a.Strategy.OnEvent(event)
}
