package domain

// Play is one card laid on the table by a seat.
type Play struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// Beats reports whether a wins over b when lead was led and trump is atout.
// A trump beats any plain card, a lead-suit card beats an off-suit discard,
// and within one suit the strength table decides.
func Beats(a, b Card, lead, trump Suit) bool {
	aTrump, bTrump := a.Suit == trump, b.Suit == trump
	switch {
	case aTrump && !bTrump:
		return true
	case !aTrump && bTrump:
		return false
	case a.Suit == b.Suit:
		return Strength(a, trump) > Strength(b, trump)
	}
	return a.Suit == lead && b.Suit != lead
}

// TrickWinner returns the winning play of a (possibly partial) trick.
// It panics on an empty trick.
func TrickWinner(trick []Play, trump Suit) Play {
	if len(trick) == 0 {
		panic("domain: winner of empty trick")
	}
	lead := trick[0].Card.Suit
	best := trick[0]
	for _, p := range trick[1:] {
		if Beats(p.Card, best.Card, lead, trump) {
			best = p
		}
	}
	return best
}

// TrickPoints sums the card points of a trick, without the last-trick bonus.
func TrickPoints(trick []Play, trump Suit) int {
	pts := 0
	for _, p := range trick {
		pts += CardPoints(p.Card, trump)
	}
	return pts
}

// highestTrump returns the strongest trump on the table, if any.
func highestTrump(trick []Play, trump Suit) (Card, bool) {
	var best Card
	found := false
	for _, p := range trick {
		if p.Card.Suit != trump {
			continue
		}
		if !found || Strength(p.Card, trump) > Strength(best, trump) {
			best, found = p.Card, true
		}
	}
	return best, found
}

func trumpsAbove(hand []Card, floor Card, trump Suit) []Card {
	var out []Card
	for _, c := range hand {
		if c.Suit == trump && Strength(c, trump) > Strength(floor, trump) {
			out = append(out, c)
		}
	}
	return out
}

// overtrumpOrTrump returns the trumps beating floor, or every trump held when
// none does.
func overtrumpOrTrump(hand []Card, floor Card, trump Suit) []Card {
	if higher := trumpsAbove(hand, floor, trump); len(higher) > 0 {
		return higher
	}
	return filterSuit(hand, trump)
}

// LegalMoves returns the cards seat may play from hand onto the trick.
//
// Follow suit when possible, overtrumping when trump was led. When void in
// the led suit a trump is required unless the partner is currently master,
// and an opponent's trump must be overtrumped when the hand allows it.
// The result is never empty for a non-empty hand.
func LegalMoves(hand []Card, trick []Play, trump Suit, seat int) []Card {
	if len(hand) == 0 {
		return nil
	}
	all := append([]Card(nil), hand...)
	if len(trick) == 0 {
		return all
	}

	lead := trick[0].Card.Suit
	if hasSuit(hand, lead) {
		if lead != trump {
			return filterSuit(hand, lead)
		}
		if best, ok := highestTrump(trick, trump); ok {
			return overtrumpOrTrump(hand, best, trump)
		}
		return filterSuit(hand, trump)
	}

	if !hasSuit(hand, trump) {
		return all
	}

	master := TrickWinner(trick, trump)
	if SameTeam(master.Seat, seat) {
		return all
	}
	if best, ok := highestTrump(trick, trump); ok {
		return overtrumpOrTrump(hand, best, trump)
	}
	return filterSuit(hand, trump)
}

// IsLegal reports whether c is among the legal moves.
func IsLegal(hand []Card, trick []Play, trump Suit, seat int, c Card) bool {
	return ContainsCard(LegalMoves(hand, trick, trump, seat), c)
}
