package domain

import (
	"fmt"
	"strconv"
)

const (
	MinBid     = 80
	MaxBid     = 160
	BidStep    = 10
	CapotValue = 250
)

// BidAction is what a seat does on its bidding turn.
type BidAction string

const (
	BidPass       BidAction = "pass"
	BidTake       BidAction = "take"
	BidCapot      BidAction = "capot"
	BidCoinche    BidAction = "coinche"
	BidSurcoinche BidAction = "surcoinche"
)

// CoincheLevel is the stake doubling applied to a contract.
type CoincheLevel int

const (
	CoincheNone CoincheLevel = iota
	CoincheDoubled
	CoincheRedoubled
)

// Multiplier returns 1, 2 or 4.
func (l CoincheLevel) Multiplier() int {
	switch l {
	case CoincheDoubled:
		return 2
	case CoincheRedoubled:
		return 4
	}
	return 1
}

func (l CoincheLevel) String() string {
	switch l {
	case CoincheDoubled:
		return "coinche"
	case CoincheRedoubled:
		return "surcoinche"
	}
	return ""
}

// Bid is an announce: a value (or capot) with a trump suit.
type Bid struct {
	Seat  int  `json:"seat"`
	Value int  `json:"value"`
	Trump Suit `json:"trump"`
	Capot bool `json:"capot"`
}

// Label is "CAPOT" for a capot bid, the numeric value otherwise.
func (b Bid) Label() string {
	if b.Capot {
		return "CAPOT"
	}
	return strconv.Itoa(b.Value)
}

// Contract is the bid that closed the auction, with its stake level.
type Contract struct {
	Taker     int          `json:"taker"`
	Value     int          `json:"value"`
	Trump     Suit         `json:"trump"`
	Capot     bool         `json:"capot"`
	Coinche   CoincheLevel `json:"coinche"`
	CoincheBy int          `json:"coincheBy"`
}

// TakerTeam is the team that must fulfil the contract.
func (c Contract) TakerTeam() Team { return TeamOf(c.Taker) }

// Multiplier applies the coinche level.
func (c Contract) Multiplier() int { return c.Coinche.Multiplier() }

// Label renders the contract value like a bid label.
func (c Contract) Label() string {
	return Bid{Value: c.Value, Capot: c.Capot}.Label()
}

// BiddingStatus is the state of the auction after an accepted action.
type BiddingStatus int

const (
	BiddingOpen BiddingStatus = iota
	BiddingContracted
	BiddingRedeal
)

// Bidding is the auction of one deal.
type Bidding struct {
	Dealer    int          `json:"dealer"`
	Turn      int          `json:"turn"`
	Highest   *Bid         `json:"highest,omitempty"`
	Passes    int          `json:"passes"`
	Coinche   CoincheLevel `json:"coinche"`
	CoincheBy int          `json:"coincheBy"`
}

// NewBidding opens the auction with the seat after the dealer.
func NewBidding(dealer int) *Bidding {
	return &Bidding{Dealer: dealer, Turn: NextSeat(dealer), CoincheBy: -1}
}

// ValidBidValue reports whether v is a numeric announce (80..160 by tens).
func ValidBidValue(v int) bool {
	return v >= MinBid && v <= MaxBid && v%BidStep == 0
}

// Apply validates and applies an action by seat. On error nothing changes.
func (b *Bidding) Apply(seat int, action BidAction, value int, trump Suit) (BiddingStatus, error) {
	if seat != b.Turn {
		return BiddingOpen, fmt.Errorf("%w: seat %d acted on seat %d's turn", ErrOutOfTurn, seat, b.Turn)
	}

	switch action {
	case BidPass:
		b.Passes++
		b.Turn = NextSeat(b.Turn)

	case BidTake, BidCapot:
		bid, err := b.validateAnnounce(seat, action, value, trump)
		if err != nil {
			return BiddingOpen, err
		}
		b.Highest = &bid
		b.Passes = 0
		b.Coinche = CoincheNone
		b.CoincheBy = -1
		b.Turn = NextSeat(b.Turn)

	case BidCoinche:
		if b.Highest == nil {
			return BiddingOpen, fmt.Errorf("%w: nothing to coinche", ErrIllegalBid)
		}
		if b.Coinche != CoincheNone {
			return BiddingOpen, fmt.Errorf("%w: already coinched", ErrIllegalBid)
		}
		if SameTeam(seat, b.Highest.Seat) {
			return BiddingOpen, fmt.Errorf("%w: cannot coinche own team", ErrIllegalBid)
		}
		b.Coinche = CoincheDoubled
		b.CoincheBy = seat
		b.Turn = NextSeat(b.Turn)

	case BidSurcoinche:
		if b.Highest == nil || b.Coinche != CoincheDoubled {
			return BiddingOpen, fmt.Errorf("%w: surcoinche needs a coinche", ErrIllegalBid)
		}
		if !SameTeam(seat, b.Highest.Seat) {
			return BiddingOpen, fmt.Errorf("%w: only the taker's team can surcoinche", ErrIllegalBid)
		}
		b.Coinche = CoincheRedoubled
		b.Passes = 3

	default:
		return BiddingOpen, fmt.Errorf("%w: unknown action %q", ErrIllegalBid, action)
	}

	return b.status(), nil
}

func (b *Bidding) validateAnnounce(seat int, action BidAction, value int, trump Suit) (Bid, error) {
	bid := Bid{Seat: seat, Value: value, Trump: trump}
	if action == BidCapot {
		bid.Value = CapotValue
		bid.Capot = true
	} else if !ValidBidValue(value) {
		return Bid{}, fmt.Errorf("%w: value %d", ErrIllegalBid, value)
	}
	if !trump.Valid() {
		return Bid{}, fmt.Errorf("%w: trump %q", ErrIllegalBid, trump)
	}
	if b.Highest != nil && bid.Value <= b.Highest.Value {
		return Bid{}, fmt.Errorf("%w: %s does not exceed %s", ErrIllegalBid, bid.Label(), b.Highest.Label())
	}
	return bid, nil
}

func (b *Bidding) status() BiddingStatus {
	switch {
	case b.Highest == nil && b.Passes >= 4:
		return BiddingRedeal
	case b.Highest != nil && b.Passes >= 3:
		return BiddingContracted
	}
	return BiddingOpen
}

// Contract returns the locked contract. Only meaningful once contracted.
func (b *Bidding) Contract() Contract {
	h := b.Highest
	return Contract{
		Taker:     h.Seat,
		Value:     h.Value,
		Trump:     h.Trump,
		Capot:     h.Capot,
		Coinche:   b.Coinche,
		CoincheBy: b.CoincheBy,
	}
}
