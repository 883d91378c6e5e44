package app

import "coinche/internal/domain"

// PhaseLobby is reported while the table has no match.
const PhaseLobby = "lobby"

type SeatView struct {
	Seat   int         `json:"seat"`
	UserID string      `json:"userId"`
	Name   string      `json:"name"`
	Host   bool        `json:"host"`
	Team   domain.Team `json:"team"`
	Cards  int         `json:"cards"`
}

// TableSnapshot is the public view of a table, identical for every seat.
type TableSnapshot struct {
	TableID  string     `json:"tableId"`
	Variant  Variant    `json:"variant"`
	Phase    string     `json:"phase"`
	Finished bool       `json:"finished"`
	Seats    []SeatView `json:"seats"`
	HostSeat int        `json:"hostSeat"`

	HandNo      int `json:"handNo"`
	Dealer      int `json:"dealer"`
	CurrentSeat int `json:"currentSeat"`
	Leader      int `json:"leader"`

	HighestBid *domain.Bid         `json:"highestBid,omitempty"`
	Contract   *domain.Contract    `json:"contract,omitempty"`
	Coinche    domain.CoincheLevel `json:"coinche"`
	CoincheBy  int                 `json:"coincheBy"`

	Trick     []domain.Play       `json:"trick"`
	TrickNo   int                 `json:"trickNo"`
	LastTrick *domain.TrickResult `json:"lastTrick,omitempty"`
	Points    domain.TeamScore    `json:"points"`
	Tricks    domain.TeamScore    `json:"tricks"`
	Scores    domain.TeamScore    `json:"scores"`
	Teams     TeamLabels          `json:"teams"`

	Messages []string `json:"messages"`
}

// HandSnapshot is the private view of one seat.
type HandSnapshot struct {
	TableID   string        `json:"tableId"`
	Seat      int           `json:"seat"`
	Phase     string        `json:"phase"`
	Hand      []domain.Card `json:"hand"`
	LegalKeys []string      `json:"legalKeys"`
	YourTurn  bool          `json:"yourTurn"`
}

// BuildTableSnapshot renders the public state of t.
func BuildTableSnapshot(t *Table) TableSnapshot {
	snap := TableSnapshot{
		TableID:     t.ID,
		Variant:     t.Variant,
		Phase:       PhaseLobby,
		Finished:    t.Finished,
		HostSeat:    t.HostSeat,
		Dealer:      -1,
		CurrentSeat: -1,
		Leader:      -1,
		CoincheBy:   -1,
		Trick:       []domain.Play{},
		Teams:       t.Teams(),
		Messages:    t.Log.Lines(),
	}

	g := t.Game
	for seat, id := range t.Seats {
		if id == "" {
			continue
		}
		view := SeatView{
			Seat:   seat,
			UserID: id,
			Name:   t.Name(seat),
			Host:   seat == t.HostSeat,
			Team:   domain.TeamOf(seat),
		}
		if g != nil {
			view.Cards = len(g.Hands[seat])
		}
		snap.Seats = append(snap.Seats, view)
	}
	if g == nil {
		return snap
	}

	snap.Phase = string(g.Phase)
	snap.HandNo = g.HandNo
	snap.Dealer = g.Dealer
	snap.CurrentSeat = g.CurrentSeat()
	snap.Leader = g.Leader
	snap.Contract = g.Contract
	if g.Bidding != nil {
		snap.HighestBid = g.Bidding.Highest
		snap.Coinche = g.Bidding.Coinche
		snap.CoincheBy = g.Bidding.CoincheBy
	}
	snap.Trick = append(snap.Trick, g.Trick...)
	snap.TrickNo = g.TrickNo
	snap.LastTrick = g.LastTrick
	snap.Points = g.Points
	snap.Tricks = g.Tricks
	snap.Scores = g.Scores
	return snap
}

// BuildHandSnapshot renders seat's private state. Legal keys are empty
// unless the seat is on turn in the playing phase.
func BuildHandSnapshot(t *Table, seat int) HandSnapshot {
	snap := HandSnapshot{
		TableID:   t.ID,
		Seat:      seat,
		Phase:     PhaseLobby,
		Hand:      []domain.Card{},
		LegalKeys: []string{},
	}
	g := t.Game
	if g == nil || seat < 0 || seat >= domain.PlayerCount {
		return snap
	}
	snap.Phase = string(g.Phase)
	hand := g.Hand(seat)
	domain.SortHand(hand, g.Trump())
	snap.Hand = append(snap.Hand, hand...)
	if g.Phase == domain.PhasePlaying && g.CurrentSeat() == seat {
		snap.YourTurn = true
		snap.LegalKeys = append(snap.LegalKeys, domain.Keys(g.LegalCards(seat))...)
	}
	return snap
}
