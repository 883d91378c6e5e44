package domain

import (
	"fmt"
	"strings"
)

// Suit is one of the four French suits, encoded by its initial.
type Suit string

const (
	Spades   Suit = "S"
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

// Suits lists the suits in deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank is the face of a card as printed on it.
type Rank string

const (
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Ranks lists the ranks in deck order.
var Ranks = []Rank{Seven, Eight, Nine, Jack, Queen, King, Ten, Ace}

// Card is an immutable playing card of the 32-card piquet deck.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// Key returns the compact wire form of the card, rank then suit ("10H", "JS").
func (c Card) Key() string {
	return string(c.Rank) + string(c.Suit)
}

func (c Card) String() string {
	return c.Key()
}

// Valid reports whether the card belongs to the deck.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Spades, Hearts, Diamonds, Clubs:
		return true
	}
	return false
}

// Symbol returns the suit glyph used in table messages.
func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	default:
		return "♣"
	}
}

// Valid reports whether r is one of the eight ranks.
func (r Rank) Valid() bool {
	_, ok := plainStrength[r]
	return ok
}

// ParseSuit validates a suit initial.
func ParseSuit(s string) (Suit, error) {
	suit := Suit(strings.ToUpper(strings.TrimSpace(s)))
	if !suit.Valid() {
		return "", fmt.Errorf("unknown suit %q", s)
	}
	return suit, nil
}

// ParseCard parses a card key such as "10H" or "qs".
func ParseCard(key string) (Card, error) {
	k := strings.ToUpper(strings.TrimSpace(key))
	if len(k) < 2 {
		return Card{}, fmt.Errorf("malformed card %q", key)
	}
	c := Card{Rank: Rank(k[:len(k)-1]), Suit: Suit(k[len(k)-1:])}
	if !c.Valid() {
		return Card{}, fmt.Errorf("unknown card %q", key)
	}
	return c, nil
}

// Higher index is stronger.
var (
	trumpStrength = map[Rank]int{Seven: 0, Eight: 1, Queen: 2, King: 3, Ten: 4, Ace: 5, Nine: 6, Jack: 7}
	plainStrength = map[Rank]int{Seven: 0, Eight: 1, Nine: 2, Jack: 3, Queen: 4, King: 5, Ten: 6, Ace: 7}

	trumpPoints = map[Rank]int{Jack: 20, Nine: 14, Ace: 11, Ten: 10, King: 4, Queen: 3}
	plainPoints = map[Rank]int{Ace: 11, Ten: 10, King: 4, Queen: 3, Jack: 2}
)

// Strength ranks a card within its suit, trump or plain.
func Strength(c Card, trump Suit) int {
	if c.Suit == trump {
		return trumpStrength[c.Rank]
	}
	return plainStrength[c.Rank]
}

// CardPoints returns the card's value under the given trump.
func CardPoints(c Card, trump Suit) int {
	if c.Suit == trump {
		return trumpPoints[c.Rank]
	}
	return plainPoints[c.Rank]
}

// ContainsCard reports whether the hand holds c.
func ContainsCard(hand []Card, c Card) bool {
	return indexOf(hand, c) >= 0
}

// RemoveCard returns hand without c. The input slice is not modified.
func RemoveCard(hand []Card, c Card) []Card {
	i := indexOf(hand, c)
	if i < 0 {
		return hand
	}
	out := make([]Card, 0, len(hand)-1)
	out = append(out, hand[:i]...)
	return append(out, hand[i+1:]...)
}

// Keys maps cards to their wire keys.
func Keys(cards []Card) []string {
	keys := make([]string, len(cards))
	for i, c := range cards {
		keys[i] = c.Key()
	}
	return keys
}

func indexOf(hand []Card, c Card) int {
	for i, h := range hand {
		if h == c {
			return i
		}
	}
	return -1
}

func hasSuit(hand []Card, s Suit) bool {
	for _, c := range hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}

func filterSuit(hand []Card, s Suit) []Card {
	var out []Card
	for _, c := range hand {
		if c.Suit == s {
			out = append(out, c)
		}
	}
	return out
}
