package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"coinche/internal/domain"
)

// Service contains Coinche table use-cases operating on a Table.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
// Every match started by the service draws its own deal seed from rng.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNotHost         = errors.New("actor is not table host")
	ErrAlreadyStarted  = errors.New("match already started")
	ErrNotStarted      = errors.New("match not started")
	ErrNeedFourPlayers = errors.New("four players are needed to start")
	ErrTableFull       = errors.New("table is full")
	ErrUnknownPlayer   = errors.New("player not seated at table")
)

const resetMessage = "⛔ Un joueur a quitté. Partie arrêtée."

// Join seats a user at the lowest free seat of a lobby table.
// Joining again only refreshes the display name.
func (s *Service) Join(t *Table, userID, name string) ([]Event, error) {
	if userID == "" {
		return nil, ErrUnknownPlayer
	}
	if seat := t.SeatOf(userID); seat >= 0 {
		t.Names[userID] = CleanName(name)
		return nil, nil
	}
	if t.Started() {
		return nil, ErrAlreadyStarted
	}
	seat := t.lowestFreeSeat()
	if seat < 0 {
		return nil, ErrTableFull
	}

	t.Seats[seat] = userID
	t.Names[userID] = CleanName(name)
	t.electHost()

	return []Event{{
		Kind: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			UserID: userID,
			Seat:   seat,
			Name:   t.Names[userID],
			Host:   t.HostSeat == seat,
		},
	}}, nil
}

// Table reset reasons.
const (
	ResetPlayerLeft         = "player_left"
	ResetPlayerDisconnected = "player_disconnected"
)

// Leave frees the user's seat. Leaving a started table aborts the match and
// returns the table to the lobby with a fresh score sheet.
func (s *Service) Leave(t *Table, userID string) ([]Event, error) {
	return s.vacate(t, userID, ResetPlayerLeft)
}

// Disconnect is Leave for a dropped connection.
func (s *Service) Disconnect(t *Table, userID string) ([]Event, error) {
	return s.vacate(t, userID, ResetPlayerDisconnected)
}

func (s *Service) vacate(t *Table, userID, reason string) ([]Event, error) {
	seat := t.SeatOf(userID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}
	t.Seats[seat] = ""
	delete(t.Names, userID)
	t.electHost()

	events := []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{UserID: userID, Seat: seat, HostSeat: t.HostSeat},
	}}

	if t.Started() {
		t.Game.Abort()
		t.Game = nil
		t.Finished = false
		t.Log.Reset()
		t.Log.Add(resetMessage)
		events = append(events, Event{
			Kind:    EventTableReset,
			Payload: TableResetPayload{Reason: reason},
		})
	}
	return events, nil
}

// Start deals the first hand. Only the host may start, with four seated players.
func (s *Service) Start(t *Table, userID string) ([]Event, error) {
	seat := t.SeatOf(userID)
	if seat < 0 {
		return nil, ErrUnknownPlayer
	}
	if seat != t.HostSeat {
		return nil, ErrNotHost
	}
	if t.Started() {
		return nil, ErrAlreadyStarted
	}
	if t.Occupied() != domain.PlayerCount {
		return nil, ErrNeedFourPlayers
	}

	game := domain.NewGame(t.Rules, rand.New(rand.NewSource(s.rng.Int63())))
	if err := game.Start(); err != nil {
		return nil, err
	}
	t.Game = game
	t.Finished = false
	t.Log.Add("🟢 Partie lancée !")

	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{Variant: t.Variant, Teams: t.Teams()},
	}}
	return append(events, s.dealEvents(t)...), nil
}

// Bid applies an auction action by the user.
func (s *Service) Bid(t *Table, userID string, action domain.BidAction, value int, trump domain.Suit) ([]Event, error) {
	seat, err := s.seatInGame(t, userID)
	if err != nil {
		return nil, err
	}
	res, err := t.Game.Bid(seat, action, value, trump)
	if err != nil {
		return nil, err
	}

	name := t.Name(seat)
	switch action {
	case domain.BidPass:
		t.Log.Add(fmt.Sprintf("🟦 %s passe", name))
	case domain.BidTake, domain.BidCapot:
		t.Log.Add(fmt.Sprintf("📣 %s annonce %s%s", name, res.Bid.Label(), res.Bid.Trump.Symbol()))
	case domain.BidCoinche:
		t.Log.Add(fmt.Sprintf("📣 COINCHE ! (%s)", name))
	case domain.BidSurcoinche:
		t.Log.Add(fmt.Sprintf("🔥 SURCOINCHE ! (%s)", name))
	}

	events := []Event{{
		Kind: EventBidMade,
		Payload: BidMadePayload{
			Seat:     seat,
			Action:   action,
			Bid:      res.Bid,
			NextSeat: t.Game.CurrentSeat(),
		},
	}}

	switch res.Status {
	case domain.BiddingRedeal:
		t.Log.Add("🔁 Personne n'a annoncé. On redonne.")
		events = append(events, Event{Kind: EventRedeal, Payload: RedealPayload{Dealer: t.Game.Dealer}})
		events = append(events, s.dealEvents(t)...)
	case domain.BiddingContracted:
		c := *res.Contract
		t.Log.Add(fmt.Sprintf("📌 Contrat : %s%s par %s%s", c.Label(), c.Trump.Symbol(), t.Name(c.Taker), coincheSuffix(c.Coinche)))
		events = append(events, Event{
			Kind:    EventContractLocked,
			Payload: ContractLockedPayload{Contract: c, Leader: t.Game.Leader},
		})
	}
	return events, nil
}

// PlayCard lays a card for the user and reports everything it triggered.
func (s *Service) PlayCard(t *Table, userID string, card domain.Card) ([]Event, error) {
	seat, err := s.seatInGame(t, userID)
	if err != nil {
		return nil, err
	}
	res, err := t.Game.PlayCard(seat, card)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventCardPlayed,
		Payload: CardPlayedPayload{Seat: seat, Card: card, NextSeat: t.Game.CurrentSeat()},
	}}

	switch res.Announcement {
	case domain.AnnounceBelote:
		t.Log.Add(fmt.Sprintf("✨ BELOTE ! (%s)", t.Name(seat)))
	case domain.AnnounceRebelote:
		t.Log.Add(fmt.Sprintf("🔥 REBELOTE ! (%s)", t.Name(seat)))
	}
	if res.Announcement != domain.AnnounceNone {
		events = append(events, Event{
			Kind:    EventBelote,
			Payload: BelotePayload{Seat: seat, Announcement: res.Announcement},
		})
	}

	if res.Trick != nil {
		events = append(events, Event{Kind: EventTrickWon, Payload: TrickWonPayload{Trick: *res.Trick}})
	}
	if res.Hand == nil {
		return events, nil
	}

	s.logHandSummary(t, *res.Hand)
	events = append(events, Event{
		Kind:    EventHandScored,
		Payload: HandScoredPayload{Result: *res.Hand, Scores: t.Game.Scores},
	})

	if res.MatchOver {
		t.Finished = true
		over := MatchOverResult(t)
		teams := t.Teams()
		t.Log.Add("—")
		t.Log.Add(fmt.Sprintf("🏆 Félicitations ! Victoire de l’équipe %s 🎉", over.WinnerLabel))
		t.Log.Add(fmt.Sprintf("Score final : %s %d — %s %d", teams.NS, over.Scores.NS, teams.EW, over.Scores.EW))
		return append(events, Event{Kind: EventMatchOver, Payload: over}), nil
	}
	if res.NewDeal {
		events = append(events, s.dealEvents(t)...)
	}
	return events, nil
}

// MatchOverResult summarises a finished match.
func MatchOverResult(t *Table) MatchOverPayload {
	g := t.Game
	teams := t.Teams()
	return MatchOverPayload{
		WinnerTeam:  g.Winner,
		WinnerLabel: teams.Of(g.Winner),
		Teams:       teams,
		Scores:      g.Scores,
		Hands:       g.HandNo,
	}
}

func (s *Service) seatInGame(t *Table, userID string) (int, error) {
	seat := t.SeatOf(userID)
	if seat < 0 {
		return -1, ErrUnknownPlayer
	}
	if !t.Started() {
		return -1, fmt.Errorf("%w: %w", domain.ErrInvalidPhase, ErrNotStarted)
	}
	return seat, nil
}

// dealEvents logs the new deal and addresses each hand to its owner.
func (s *Service) dealEvents(t *Table) []Event {
	g := t.Game
	t.Log.Add(fmt.Sprintf("🃏 Nouvelle donne. Donneur : %s", t.Name(g.Dealer)))

	events := make([]Event, 0, domain.PlayerCount)
	for seat, userID := range t.Seats {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				Seat:   seat,
				Dealer: g.Dealer,
				HandNo: g.HandNo,
				Hand:   g.Hand(seat),
			},
			Recipients: []string{userID},
		})
	}
	return events
}

func (s *Service) logHandSummary(t *Table, hr domain.HandResult) {
	c := hr.Contract
	teams := t.Teams()
	t.Log.Add("—")
	t.Log.Add("🧾 Fin de manche")
	t.Log.Add(fmt.Sprintf("Annonce: %s%s par %s%s", c.Label(), c.Trump.Symbol(), t.Name(c.Taker), coincheSuffix(c.Coinche)))
	t.Log.Add(fmt.Sprintf("Plis (pts): %s %d — %s %d", teams.NS, hr.Points.NS, teams.EW, hr.Points.EW))
	if c.Capot && hr.Made {
		t.Log.Add("🎯 CAPOT RÉUSSI !")
	}
	if c.Capot && !hr.Made {
		t.Log.Add("❌ CAPOT CHUTÉ !")
	}
	if hr.Made {
		t.Log.Add(fmt.Sprintf("✅ Contrat réussi → (+annonce) x%d", hr.Multiplier))
	} else {
		base := domain.HandPoints
		if c.Capot {
			base = domain.CapotPoints
		}
		t.Log.Add(fmt.Sprintf("❌ Contrat chuté → défense %d+annonce x%d", base, hr.Multiplier))
	}
	t.Log.Add(fmt.Sprintf("Total: %s %d — %s %d", teams.NS, t.Game.Scores.NS, teams.EW, t.Game.Scores.EW))
}

func coincheSuffix(l domain.CoincheLevel) string {
	if l == domain.CoincheNone {
		return ""
	}
	return " (" + l.String() + ")"
}
