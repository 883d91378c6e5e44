package brain

import (
	"testing"

	"coinche/internal/domain"
)

func card(t *testing.T, key string) domain.Card {
	t.Helper()
	c, err := domain.ParseCard(key)
	if err != nil {
		t.Fatalf("ParseCard(%s): %v", key, err)
	}
	return c
}

func TestMemoryTracksPlayedCards(t *testing.T) {
	m := NewMemory()
	if !m.Sync(0) {
		t.Fatal("first sync should reset")
	}

	m.MarkPlayed(card(t, "AS"))
	m.MarkTrick([]domain.Play{{Seat: 1, Card: card(t, "10H")}})
	if !m.IsPlayed(card(t, "AS")) || !m.IsPlayed(card(t, "10H")) || m.Played() != 2 {
		t.Fatalf("played = %d", m.Played())
	}
	if m.Sync(0) {
		t.Fatal("same deal should not reset")
	}
	if !m.Sync(1) || m.Played() != 0 {
		t.Fatal("new deal should reset")
	}
}

func TestMemoryIsMaster(t *testing.T) {
	m := NewMemory()
	m.Reset(0)
	hand := []domain.Card{card(t, "10S"), card(t, "9H")}

	if m.IsMaster(card(t, "10S"), domain.Hearts, hand) {
		t.Fatal("10S is not master while AS is out")
	}
	m.MarkPlayed(card(t, "AS"))
	if !m.IsMaster(card(t, "10S"), domain.Hearts, hand) {
		t.Fatal("10S should be master once AS is played")
	}
	if m.IsMaster(card(t, "9H"), domain.Hearts, hand) {
		t.Fatal("9H trump is not master while JH is out")
	}
	if got := m.Outstanding(domain.Hearts, hand); got != 7 {
		t.Fatalf("outstanding hearts = %d, want 7", got)
	}
}
