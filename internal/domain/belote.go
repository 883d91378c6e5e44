package domain

const BeloteBonus = 20

// Announcement is what a belote holder calls when laying trump Q or K.
type Announcement string

const (
	AnnounceNone     Announcement = ""
	AnnounceBelote   Announcement = "belote"
	AnnounceRebelote Announcement = "rebelote"
)

// BeloteState tracks one seat's trump queen and king for the current deal.
type BeloteState struct {
	HasQueen bool `json:"hasQueen"`
	HasKing  bool `json:"hasKing"`
	Belote   bool `json:"belote"`
	Rebelote bool `json:"rebelote"`
}

// Holder reports whether the seat was dealt both honours.
func (b BeloteState) Holder() bool {
	return b.HasQueen && b.HasKing
}

// ScanBelote records trump Q/K possession per seat once trump is known.
func ScanBelote(hands [PlayerCount][]Card, trump Suit) [PlayerCount]BeloteState {
	var out [PlayerCount]BeloteState
	for seat, hand := range hands {
		out[seat].HasQueen = ContainsCard(hand, Card{Rank: Queen, Suit: trump})
		out[seat].HasKing = ContainsCard(hand, Card{Rank: King, Suit: trump})
	}
	return out
}

// Observe registers a card played by the seat and returns the call it
// triggers. Only the holder of both honours announces.
func (b *BeloteState) Observe(c Card, trump Suit) Announcement {
	if c.Suit != trump || (c.Rank != Queen && c.Rank != King) || !b.Holder() {
		return AnnounceNone
	}
	if !b.Belote {
		b.Belote = true
		return AnnounceBelote
	}
	if !b.Rebelote {
		b.Rebelote = true
		return AnnounceRebelote
	}
	return AnnounceNone
}
