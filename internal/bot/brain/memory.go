package brain

import (
	"coinche/internal/domain"
)

// Memory is a bot's private record of the cards already seen this deal.
type Memory struct {
	HandNo int
	played map[domain.Card]bool
}

// NewMemory initializes a fresh memory state.
func NewMemory() *Memory {
	return &Memory{HandNo: -1, played: make(map[domain.Card]bool)}
}

// Reset clears the memory for a new deal.
func (m *Memory) Reset(handNo int) {
	m.HandNo = handNo
	m.played = make(map[domain.Card]bool)
}

// Sync resets the memory when the game has moved to another deal.
// It reports whether a reset happened.
func (m *Memory) Sync(handNo int) bool {
	if m.HandNo == handNo {
		return false
	}
	m.Reset(handNo)
	return true
}

// MarkPlayed records cards that have been laid on the table.
func (m *Memory) MarkPlayed(cards ...domain.Card) {
	for _, c := range cards {
		m.played[c] = true
	}
}

// MarkTrick records every card of a trick.
func (m *Memory) MarkTrick(plays []domain.Play) {
	for _, p := range plays {
		m.played[p.Card] = true
	}
}

// IsPlayed returns true if the card is already out of the deal.
func (m *Memory) IsPlayed(c domain.Card) bool {
	return m.played[c]
}

// Played counts the cards seen so far.
func (m *Memory) Played() int {
	return len(m.played)
}

// IsMaster reports whether no stronger card of c's suit can still appear
// from another seat.
func (m *Memory) IsMaster(c domain.Card, trump domain.Suit, hand []domain.Card) bool {
	for _, r := range domain.Ranks {
		other := domain.Card{Rank: r, Suit: c.Suit}
		if domain.Strength(other, trump) <= domain.Strength(c, trump) {
			continue
		}
		if !m.played[other] && !domain.ContainsCard(hand, other) {
			return false
		}
	}
	return true
}

// Outstanding counts the cards of suit s neither played nor held.
func (m *Memory) Outstanding(s domain.Suit, hand []domain.Card) int {
	n := 0
	for _, r := range domain.Ranks {
		c := domain.Card{Rank: r, Suit: s}
		if !m.played[c] && !domain.ContainsCard(hand, c) {
			n++
		}
	}
	return n
}
