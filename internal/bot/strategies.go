package bot

import (
	"fmt"

	"coinche/internal/domain"
)

// EasyBot opens only with the jack and nine of a suit and always plays its
// cheapest legal card.
type EasyBot struct{}

func (b *EasyBot) CalculateMove(game *domain.Game, seat int) (Move, error) {
	switch game.Phase {
	case domain.PhaseBidding:
		return b.bid(game, seat), nil
	case domain.PhasePlaying:
		legal := game.LegalCards(seat)
		if len(legal) == 0 {
			return Move{}, fmt.Errorf("no legal card for seat %d", seat)
		}
		return PlayMove(cheapest(legal, game.Trump())), nil
	}
	return Move{}, fmt.Errorf("%w: %s", domain.ErrInvalidPhase, game.Phase)
}

func (b *EasyBot) OnEvent(event interface{}) {}

func (b *EasyBot) bid(game *domain.Game, seat int) Move {
	if game.Bidding == nil || game.Bidding.Highest != nil {
		return PassMove()
	}
	hand := game.Hands[seat]
	for _, s := range domain.Suits {
		if holdsTopTrumps(hand, s) {
			return Move{Kind: MoveBid, Action: domain.BidTake, Value: domain.MinBid, Trump: s}
		}
	}
	return PassMove()
}

// holdsTopTrumps reports whether hand has the jack and nine of s.
func holdsTopTrumps(hand []domain.Card, s domain.Suit) bool {
	return domain.ContainsCard(hand, domain.Card{Rank: domain.Jack, Suit: s}) &&
		domain.ContainsCard(hand, domain.Card{Rank: domain.Nine, Suit: s})
}

// cheapest picks the card giving away the fewest points, keeping trumps.
func cheapest(cards []domain.Card, trump domain.Suit) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if discardCost(c, trump) < discardCost(best, trump) {
			best = c
		}
	}
	return best
}

// richest picks the card worth the most points, keeping trumps if possible.
func richest(cards []domain.Card, trump domain.Suit) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if chargeValue(c, trump) > chargeValue(best, trump) {
			best = c
		}
	}
	return best
}

// strongest picks the card with the highest strength.
func strongest(cards []domain.Card, trump domain.Suit) domain.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if domain.Strength(c, trump) > domain.Strength(best, trump) {
			best = c
		}
	}
	return best
}

func discardCost(c domain.Card, trump domain.Suit) int {
	cost := domain.CardPoints(c, trump)*10 + domain.Strength(c, trump)
	if c.Suit == trump {
		cost += 1000
	}
	return cost
}

func chargeValue(c domain.Card, trump domain.Suit) int {
	v := domain.CardPoints(c, trump)*10 - domain.Strength(c, trump)
	if c.Suit == trump {
		v -= 1000
	}
	return v
}
