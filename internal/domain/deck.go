package domain

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	DeckSize    = 32
	HandSize    = 8
	PlayerCount = 4
)

// NewDeck returns the 32-card deck in suit-major order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck using rng.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal distributes the deck one card at a time, eight rounds, starting with
// the seat after the dealer. Cards are drawn from the top (end) of the deck.
// It panics if deck is not exactly the 32 distinct cards.
func Deal(deck []Card, dealer int) [PlayerCount][]Card {
	mustBeFullDeck(deck)

	var hands [PlayerCount][]Card
	for i := range hands {
		hands[i] = make([]Card, 0, HandSize)
	}
	top := len(deck)
	for round := 0; round < HandSize; round++ {
		for i := 0; i < PlayerCount; i++ {
			seat := (dealer + 1 + i) % PlayerCount
			top--
			hands[seat] = append(hands[seat], deck[top])
		}
	}
	return hands
}

func mustBeFullDeck(deck []Card) {
	if len(deck) != DeckSize {
		panic(fmt.Sprintf("domain: deal needs %d cards, got %d", DeckSize, len(deck)))
	}
	seen := make(map[Card]bool, DeckSize)
	for _, c := range deck {
		if !c.Valid() {
			panic(fmt.Sprintf("domain: invalid card %v in deck", c))
		}
		if seen[c] {
			panic(fmt.Sprintf("domain: duplicate card %s in deck", c.Key()))
		}
		seen[c] = true
	}
}

// SortHand orders a hand by suit, then by descending strength under trump.
// An empty trump sorts every suit by plain strength.
func SortHand(cards []Card, trump Suit) {
	suitOrder := map[Suit]int{Spades: 0, Hearts: 1, Clubs: 2, Diamonds: 3}
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return suitOrder[cards[i].Suit] < suitOrder[cards[j].Suit]
		}
		return Strength(cards[i], trump) > Strength(cards[j], trump)
	})
}
