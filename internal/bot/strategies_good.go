package bot

import (
	"fmt"

	"coinche/internal/bot/brain"
	"coinche/internal/domain"
)

// GoodBot bids from an estimate of its hand and plays with card memory.
type GoodBot struct {
	Memory *brain.Memory
}

func (b *GoodBot) CalculateMove(game *domain.Game, seat int) (Move, error) {
	if b.Memory == nil {
		b.Memory = brain.NewMemory()
	}
	b.Memory.Sync(game.HandNo)

	switch game.Phase {
	case domain.PhaseBidding:
		return b.bid(game, seat), nil
	case domain.PhasePlaying:
		b.Memory.MarkTrick(game.Trick)
		if game.LastTrick != nil {
			b.Memory.MarkTrick(game.LastTrick.Plays)
		}
		legal := game.LegalCards(seat)
		if len(legal) == 0 {
			return Move{}, fmt.Errorf("no legal card for seat %d", seat)
		}
		if len(legal) == 1 {
			return PlayMove(legal[0]), nil
		}
		if len(game.Trick) == 0 {
			return PlayMove(b.lead(game, seat, legal)), nil
		}
		return PlayMove(b.follow(game, seat, legal)), nil
	}
	return Move{}, fmt.Errorf("%w: %s", domain.ErrInvalidPhase, game.Phase)
}

// OnEvent records cards seen on the table and forgets them when the game is dropped.
func (b *GoodBot) OnEvent(event interface{}) {
	if b.Memory == nil {
		return
	}
	switch ev := event.(type) {
	case domain.Play:
		b.Memory.MarkPlayed(ev.Card)
	case domain.TrickResult:
		b.Memory.MarkTrick(ev.Plays)
	case GameReset:
		b.Memory.Reset(-1)
	}
}

func (b *GoodBot) bid(game *domain.Game, seat int) Move {
	bd := game.Bidding
	hand := game.Hands[seat]
	h := bd.Highest

	if h != nil && domain.SameTeam(seat, h.Seat) && bd.Coinche == domain.CoincheDoubled {
		if !h.Capot && handStrength(hand, h.Trump) >= h.Value+20 {
			return Move{Kind: MoveBid, Action: domain.BidSurcoinche}
		}
		return PassMove()
	}
	if h != nil && !domain.SameTeam(seat, h.Seat) && bd.Coinche == domain.CoincheNone &&
		h.Value >= 100 && holdsTopTrumps(hand, h.Trump) {
		return Move{Kind: MoveBid, Action: domain.BidCoinche}
	}

	value, trump, ok := bestContract(hand)
	if !ok {
		return PassMove()
	}
	if h != nil {
		if value <= h.Value {
			return PassMove()
		}
		if domain.SameTeam(seat, h.Seat) && value < h.Value+20 {
			return PassMove()
		}
	}
	return Move{Kind: MoveBid, Action: domain.BidTake, Value: value, Trump: trump}
}

// bestContract picks the most valuable trump suit the hand can bid on.
func bestContract(hand []domain.Card) (int, domain.Suit, bool) {
	bestValue, bestTrump := 0, domain.Suit("")
	for _, s := range domain.Suits {
		if !anchored(hand, s) {
			continue
		}
		v := handStrength(hand, s) / domain.BidStep * domain.BidStep
		if v > domain.MaxBid {
			v = domain.MaxBid
		}
		if v > bestValue {
			bestValue, bestTrump = v, s
		}
	}
	if bestValue < domain.MinBid {
		return 0, "", false
	}
	return bestValue, bestTrump, true
}

// anchored requires the jack, or the nine with two more trumps.
func anchored(hand []domain.Card, s domain.Suit) bool {
	if domain.ContainsCard(hand, domain.Card{Rank: domain.Jack, Suit: s}) {
		return true
	}
	n := 0
	for _, c := range hand {
		if c.Suit == s {
			n++
		}
	}
	return n >= 3 && domain.ContainsCard(hand, domain.Card{Rank: domain.Nine, Suit: s})
}

// handStrength estimates the points a hand brings with trump as atout.
func handStrength(hand []domain.Card, trump domain.Suit) int {
	est, trumps := 0, 0
	var queen, king bool
	for _, c := range hand {
		if c.Suit == trump {
			trumps++
			est += domain.CardPoints(c, trump)
			queen = queen || c.Rank == domain.Queen
			king = king || c.Rank == domain.King
			continue
		}
		switch c.Rank {
		case domain.Ace:
			est += 11
		case domain.Ten:
			if domain.ContainsCard(hand, domain.Card{Rank: domain.Ace, Suit: c.Suit}) {
				est += 10
			}
		}
	}
	if trumps > 2 {
		est += 10 * (trumps - 2)
	}
	if queen && king {
		est += domain.BeloteBonus
	}
	return est
}

func (b *GoodBot) lead(game *domain.Game, seat int, legal []domain.Card) domain.Card {
	trump := game.Trump()
	hand := game.Hands[seat]
	var trumps, masters []domain.Card
	for _, c := range legal {
		if c.Suit == trump {
			trumps = append(trumps, c)
			continue
		}
		if b.Memory.IsMaster(c, trump, hand) {
			masters = append(masters, c)
		}
	}

	if game.Contract.TakerTeam() == domain.TeamOf(seat) && len(trumps) > 0 && b.Memory.Outstanding(trump, hand) > 0 {
		if top := strongest(trumps, trump); b.Memory.IsMaster(top, trump, hand) {
			return top
		}
	}
	if len(masters) > 0 {
		return richest(masters, trump)
	}
	return cheapest(legal, trump)
}

func (b *GoodBot) follow(game *domain.Game, seat int, legal []domain.Card) domain.Card {
	trump := game.Trump()
	hand := game.Hands[seat]
	lead := game.Trick[0].Card.Suit
	win := domain.TrickWinner(game.Trick, trump)
	last := len(game.Trick) == domain.PlayerCount-1

	if domain.SameTeam(win.Seat, seat) {
		if last || b.Memory.IsMaster(win.Card, trump, hand) {
			return richest(legal, trump)
		}
		return cheapest(legal, trump)
	}

	var winners, masters []domain.Card
	for _, c := range legal {
		if !domain.Beats(c, win.Card, lead, trump) {
			continue
		}
		winners = append(winners, c)
		if b.Memory.IsMaster(c, trump, hand) {
			masters = append(masters, c)
		}
	}
	switch {
	case len(winners) == 0:
		return cheapest(legal, trump)
	case last:
		return cheapest(winners, trump)
	case len(masters) > 0:
		return cheapest(masters, trump)
	}
	return cheapest(winners, trump)
}
