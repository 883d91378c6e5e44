package domain

import (
	"fmt"
	"math/rand"
	"time"
)

const DefaultTargetScore = 1501

// Phase is the engine's position in the deal cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseBidding   Phase = "bidding"
	PhasePlaying   Phase = "playing"
	PhaseHandDone  Phase = "hand_done"
	PhaseMatchOver Phase = "match_over"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:      {PhaseBidding},
	PhaseBidding:   {PhaseBidding, PhasePlaying},
	PhasePlaying:   {PhaseHandDone},
	PhaseHandDone:  {PhaseBidding, PhaseMatchOver},
	PhaseMatchOver: {},
}

// Rules are the per-table tunables.
type Rules struct {
	TargetScore int `json:"target_score"`
}

// DefaultRules plays to 1501.
func DefaultRules() Rules {
	return Rules{TargetScore: DefaultTargetScore}
}

// Game is the engine of one table: deals, auction, tricks and match score.
// It is not safe for concurrent use; a single owner must serialize calls.
type Game struct {
	Rules  Rules `json:"rules"`
	Phase  Phase `json:"phase"`
	HandNo int   `json:"handNo"`
	Dealer int   `json:"dealer"`
	// Turn is the seat expected to act, -1 outside bidding and play.
	Turn   int `json:"turn"`
	Leader int `json:"leader"`

	Hands    [PlayerCount][]Card `json:"-"`
	Bidding  *Bidding            `json:"bidding,omitempty"`
	Contract *Contract           `json:"contract,omitempty"`

	Trick     []Play       `json:"trick"`
	TrickNo   int          `json:"trickNo"`
	LastTrick *TrickResult `json:"lastTrick,omitempty"`
	Points    TeamScore    `json:"points"`
	Tricks    TeamScore    `json:"tricks"`

	Belote [PlayerCount]BeloteState `json:"-"`

	Scores   TeamScore   `json:"scores"`
	LastHand *HandResult `json:"lastHand,omitempty"`
	Winner   Team        `json:"winner,omitempty"`

	rng *rand.Rand
}

// NewGame returns an idle engine. A nil rng is seeded from the clock.
func NewGame(rules Rules, rng *rand.Rand) *Game {
	if rules.TargetScore <= 0 {
		rules.TargetScore = DefaultTargetScore
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{Rules: rules, Phase: PhaseIdle, Turn: -1, rng: rng}
}

func (g *Game) enter(next Phase) {
	for _, p := range transitions[g.Phase] {
		if p == next {
			g.Phase = next
			return
		}
	}
	panic(fmt.Sprintf("domain: illegal phase transition %s -> %s", g.Phase, next))
}

// Start deals the first hand. The first dealer is seat 0.
func (g *Game) Start() error {
	if g.Phase != PhaseIdle {
		return fmt.Errorf("%w: game already started", ErrInvalidPhase)
	}
	g.deal()
	return nil
}

func (g *Game) deal() {
	deck := ShuffleDeck(NewDeck(), g.rng)
	g.Hands = Deal(deck, g.Dealer)
	g.HandNo++
	g.Bidding = NewBidding(g.Dealer)
	g.Contract = nil
	g.Trick = nil
	g.TrickNo = 0
	g.LastTrick = nil
	g.Points = TeamScore{}
	g.Tricks = TeamScore{}
	g.Belote = [PlayerCount]BeloteState{}
	g.Turn = g.Bidding.Turn
	g.Leader = NextSeat(g.Dealer)
	g.enter(PhaseBidding)
}

// BidResult describes an accepted auction action.
type BidResult struct {
	Seat   int           `json:"seat"`
	Action BidAction     `json:"action"`
	Bid    *Bid          `json:"bid,omitempty"`
	Status BiddingStatus `json:"status"`
	// Contract is set when the auction closed.
	Contract *Contract `json:"contract,omitempty"`
}

// Bid applies an auction action by seat.
// Four passes without a bid redeal with the next dealer; a bid followed by
// three passes, or a surcoinche, locks the contract and play starts left of
// the dealer.
func (g *Game) Bid(seat int, action BidAction, value int, trump Suit) (BidResult, error) {
	if g.Phase != PhaseBidding {
		return BidResult{}, fmt.Errorf("%w: not bidding", ErrInvalidPhase)
	}
	status, err := g.Bidding.Apply(seat, action, value, trump)
	if err != nil {
		return BidResult{}, err
	}

	res := BidResult{Seat: seat, Action: action, Status: status}
	if (action == BidTake || action == BidCapot) && g.Bidding.Highest != nil {
		b := *g.Bidding.Highest
		res.Bid = &b
	}

	switch status {
	case BiddingOpen:
		g.Turn = g.Bidding.Turn
	case BiddingRedeal:
		g.Dealer = NextSeat(g.Dealer)
		g.deal()
	case BiddingContracted:
		c := g.Bidding.Contract()
		g.Contract = &c
		g.Belote = ScanBelote(g.Hands, c.Trump)
		g.Leader = NextSeat(g.Dealer)
		g.Turn = g.Leader
		g.enter(PhasePlaying)
		res.Contract = &c
	}
	return res, nil
}

// PlayResult describes an accepted card play and everything it triggered.
type PlayResult struct {
	Seat         int          `json:"seat"`
	Card         Card         `json:"card"`
	Announcement Announcement `json:"announcement,omitempty"`
	Trick        *TrickResult `json:"trick,omitempty"`
	Hand         *HandResult  `json:"hand,omitempty"`
	MatchOver    bool         `json:"matchOver"`
	Winner       Team         `json:"winner,omitempty"`
	// NewDeal is set when the hand ended and the next one was dealt.
	NewDeal bool `json:"newDeal"`
}

// PlayCard lays a card from seat's hand onto the trick.
func (g *Game) PlayCard(seat int, c Card) (PlayResult, error) {
	if g.Phase != PhasePlaying {
		return PlayResult{}, fmt.Errorf("%w: not playing", ErrInvalidPhase)
	}
	if seat != g.Turn {
		return PlayResult{}, fmt.Errorf("%w: seat %d played on seat %d's turn", ErrOutOfTurn, seat, g.Turn)
	}
	hand := g.Hands[seat]
	if !ContainsCard(hand, c) {
		return PlayResult{}, fmt.Errorf("%w: %s not in hand", ErrIllegalCard, c.Key())
	}
	trump := g.Contract.Trump
	if !IsLegal(hand, g.Trick, trump, seat, c) {
		return PlayResult{}, fmt.Errorf("%w: %s breaks follow/trump rules", ErrIllegalCard, c.Key())
	}

	g.Hands[seat] = RemoveCard(hand, c)
	res := PlayResult{Seat: seat, Card: c}
	res.Announcement = g.Belote[seat].Observe(c, trump)
	if res.Announcement == AnnounceRebelote {
		g.Points.Add(TeamOf(seat), BeloteBonus)
	}
	g.Trick = append(g.Trick, Play{Seat: seat, Card: c})

	if len(g.Trick) < PlayerCount {
		g.Turn = NextSeat(seat)
		return res, nil
	}

	tr := g.resolveTrick()
	res.Trick = &tr
	if g.TrickNo < TricksPerHand {
		g.Turn = tr.Winner
		return res, nil
	}

	hr := g.finishHand()
	res.Hand = &hr
	if g.Phase == PhaseMatchOver {
		res.MatchOver = true
		res.Winner = g.Winner
		return res, nil
	}
	res.NewDeal = true
	return res, nil
}

func (g *Game) finishHand() HandResult {
	g.enter(PhaseHandDone)
	g.Turn = -1
	hr := ScoreHand(*g.Contract, g.Points, g.Tricks)
	g.Scores.NS += hr.Gains.NS
	g.Scores.EW += hr.Gains.EW
	g.LastHand = &hr

	if winner, ok := g.matchWinner(); ok {
		g.Winner = winner
		g.enter(PhaseMatchOver)
		return hr
	}
	g.Dealer = NextSeat(g.Dealer)
	g.deal()
	return hr
}

// matchWinner checks the target, NS first: when both teams cross it on the
// same deal NS wins whatever the EW total.
func (g *Game) matchWinner() (Team, bool) {
	target := g.Rules.TargetScore
	switch {
	case g.Scores.NS >= target:
		return TeamNS, true
	case g.Scores.EW >= target:
		return TeamEW, true
	}
	return "", false
}

// Abort drops the deal and the match score, returning to the idle state.
func (g *Game) Abort() {
	*g = Game{Rules: g.Rules, Phase: PhaseIdle, Turn: -1, rng: g.rng}
}

// CurrentSeat is the seat expected to act, or -1.
func (g *Game) CurrentSeat() int {
	if g.Phase != PhaseBidding && g.Phase != PhasePlaying {
		return -1
	}
	return g.Turn
}

// Hand returns a copy of seat's cards.
func (g *Game) Hand(seat int) []Card {
	if seat < 0 || seat >= PlayerCount {
		return nil
	}
	return append([]Card(nil), g.Hands[seat]...)
}

// LegalCards is empty unless seat is on turn in the playing phase.
func (g *Game) LegalCards(seat int) []Card {
	if g.Phase != PhasePlaying || seat != g.Turn {
		return nil
	}
	return LegalMoves(g.Hands[seat], g.Trick, g.Contract.Trump, seat)
}

// Trump is the contract suit, empty before the auction closes.
func (g *Game) Trump() Suit {
	if g.Contract == nil {
		return ""
	}
	return g.Contract.Trump
}
