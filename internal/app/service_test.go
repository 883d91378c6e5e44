package app

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"coinche/internal/domain"
)

var players = []string{"u0", "u1", "u2", "u3"}

func newFullTable(t *testing.T, rules domain.Rules) (*Service, *Table) {
	t.Helper()
	svc := NewService(rand.New(rand.NewSource(42)))
	tbl := NewTable("ABCD", VariantCoinche, rules, DefaultLogSize)
	for i, id := range players {
		if _, err := svc.Join(tbl, id, strings.ToUpper(id)); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
		if tbl.SeatOf(id) != i {
			t.Fatalf("%s seated at %d, want %d", id, tbl.SeatOf(id), i)
		}
	}
	return svc, tbl
}

func startedTable(t *testing.T, rules domain.Rules) (*Service, *Table) {
	t.Helper()
	svc, tbl := newFullTable(t, rules)
	if _, err := svc.Start(tbl, "u0"); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc, tbl
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func lastLine(tbl *Table) string {
	lines := tbl.Log.Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func TestJoinSeatsAndHost(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)))
	tbl := NewTable("T1", VariantBelote, domain.DefaultRules(), 0)

	evs, err := svc.Join(tbl, "a", "  Alice  ")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	p := evs[0].Payload.(PlayerJoinedPayload)
	if p.Seat != 0 || !p.Host || p.Name != "Alice" {
		t.Fatalf("payload = %+v", p)
	}
	if _, err := svc.Join(tbl, "b", ""); err != nil {
		t.Fatalf("join b: %v", err)
	}
	if tbl.Name(1) != "Joueur" {
		t.Fatalf("default name = %q", tbl.Name(1))
	}
	if _, err := svc.Join(tbl, "c", strings.Repeat("é", 30)); err != nil {
		t.Fatalf("join c: %v", err)
	}
	if got := []rune(tbl.Name(2)); len(got) != 18 {
		t.Fatalf("name runes = %d, want 18", len(got))
	}
	if evs, err := svc.Join(tbl, "a", "Alicia"); err != nil || evs != nil || tbl.Name(0) != "Alicia" {
		t.Fatalf("rejoin = %v, %v, name %q", evs, err, tbl.Name(0))
	}
	if _, err := svc.Join(tbl, "d", "Dan"); err != nil {
		t.Fatalf("join d: %v", err)
	}
	if _, err := svc.Join(tbl, "e", "Eve"); !errors.Is(err, ErrTableFull) {
		t.Fatalf("fifth join err = %v", err)
	}
}

func TestLeaveInLobbyFillsLowestSeat(t *testing.T) {
	svc, tbl := newFullTable(t, domain.DefaultRules())
	if _, err := svc.Leave(tbl, "u0"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if tbl.HostSeat != 1 {
		t.Fatalf("host seat = %d, want 1", tbl.HostSeat)
	}
	if _, err := svc.Join(tbl, "u4", "New"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if tbl.SeatOf("u4") != 0 {
		t.Fatalf("u4 seat = %d, want 0", tbl.SeatOf("u4"))
	}
	if _, err := svc.Leave(tbl, "ghost"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("ghost leave err = %v", err)
	}
}

func TestHostEligibleSkipsFilteredUsers(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)))
	tbl := NewTable("T", VariantBelote, domain.DefaultRules(), 0)
	tbl.HostEligible = func(id string) bool { return !strings.HasPrefix(id, "bot") }
	for _, id := range []string{"bot-1", "human"} {
		if _, err := svc.Join(tbl, id, id); err != nil {
			t.Fatalf("join: %v", err)
		}
	}
	if tbl.HostSeat != 1 {
		t.Fatalf("host seat = %d, want 1", tbl.HostSeat)
	}
}

func TestStartRequirements(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)))
	tbl := NewTable("T", VariantBelote, domain.DefaultRules(), 0)
	for _, id := range players[:3] {
		svc.Join(tbl, id, id)
	}
	if _, err := svc.Start(tbl, "u0"); !errors.Is(err, ErrNeedFourPlayers) {
		t.Fatalf("three players err = %v", err)
	}
	svc.Join(tbl, "u3", "u3")
	if _, err := svc.Start(tbl, "u1"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non host err = %v", err)
	}
	if _, err := svc.Start(tbl, "stranger"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("stranger err = %v", err)
	}

	evs, err := svc.Start(tbl, "u0")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if countKind(evs, EventGameStarted) != 1 || countKind(evs, EventHandDealt) != 4 {
		t.Fatalf("events = %+v", evs)
	}
	for _, ev := range evs {
		if ev.Kind != EventHandDealt {
			continue
		}
		p := ev.Payload.(HandDealtPayload)
		if len(ev.Recipients) != 1 || ev.Recipients[0] != tbl.Seats[p.Seat] {
			t.Fatalf("hand for seat %d addressed to %v", p.Seat, ev.Recipients)
		}
		if len(p.Hand) != domain.HandSize {
			t.Fatalf("hand size = %d", len(p.Hand))
		}
	}
	if lastLine(tbl) != "🃏 Nouvelle donne. Donneur : u0" {
		t.Fatalf("last line = %q", lastLine(tbl))
	}
	if _, err := svc.Start(tbl, "u0"); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("restart err = %v", err)
	}
	if _, err := svc.Join(tbl, "late", "Late"); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("late join err = %v", err)
	}
}

func TestBidBeforeStartIsInvalidPhase(t *testing.T) {
	svc, tbl := newFullTable(t, domain.DefaultRules())
	_, err := svc.Bid(tbl, "u1", domain.BidPass, 0, "")
	if !errors.Is(err, domain.ErrInvalidPhase) || !errors.Is(err, ErrNotStarted) {
		t.Fatalf("err = %v", err)
	}
	if ErrorCode(err) != "invalid_phase" {
		t.Fatalf("code = %s", ErrorCode(err))
	}
}

func TestAllPassRedeals(t *testing.T) {
	svc, tbl := startedTable(t, domain.DefaultRules())
	var evs []Event
	for _, id := range []string{"u1", "u2", "u3", "u0"} {
		var err error
		evs, err = svc.Bid(tbl, id, domain.BidPass, 0, "")
		if err != nil {
			t.Fatalf("pass %s: %v", id, err)
		}
	}
	if countKind(evs, EventRedeal) != 1 || countKind(evs, EventHandDealt) != 4 {
		t.Fatalf("events = %+v", evs)
	}
	if tbl.Game.Dealer != 1 {
		t.Fatalf("dealer = %d", tbl.Game.Dealer)
	}
	lines := tbl.Log.Lines()
	if lines[len(lines)-2] != "🔁 Personne n'a annoncé. On redonne." {
		t.Fatalf("log = %v", lines)
	}
}

func TestContractAndCoincheMessages(t *testing.T) {
	svc, tbl := startedTable(t, domain.DefaultRules())
	steps := []BidCommand{
		{UserID: "u1", Action: domain.BidTake, Value: 90, Trump: domain.Hearts},
		{UserID: "u2", Action: domain.BidCoinche},
		{UserID: "u3", Action: domain.BidSurcoinche},
	}
	var evs []Event
	for _, c := range steps {
		var err error
		evs, err = svc.Apply(tbl, c)
		if err != nil {
			t.Fatalf("%+v: %v", c, err)
		}
	}
	if countKind(evs, EventContractLocked) != 1 {
		t.Fatalf("events = %+v", evs)
	}
	want := []string{
		"📣 U1 annonce 90♥",
		"📣 COINCHE ! (U2)",
		"🔥 SURCOINCHE ! (U3)",
		"📌 Contrat : 90♥ par U1 (surcoinche)",
	}
	lines := tbl.Log.Lines()
	got := lines[len(lines)-len(want):]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("log = %q, want %q", got, want)
		}
	}
	if tbl.Game.Phase != domain.PhasePlaying || tbl.Game.CurrentSeat() != 1 {
		t.Fatalf("phase %s turn %d", tbl.Game.Phase, tbl.Game.CurrentSeat())
	}
}

func TestRejectedPlayLeavesTable(t *testing.T) {
	svc, tbl := startedTable(t, domain.DefaultRules())
	svc.Bid(tbl, "u1", domain.BidTake, 80, domain.Spades)
	for _, id := range []string{"u2", "u3", "u0"} {
		svc.Bid(tbl, id, domain.BidPass, 0, "")
	}
	lines := tbl.Log.Len()
	card := tbl.Game.Hands[2][0]
	if _, err := svc.PlayCard(tbl, "u2", card); !errors.Is(err, domain.ErrOutOfTurn) {
		t.Fatalf("err = %v", err)
	}
	if tbl.Log.Len() != lines || len(tbl.Game.Hands[2]) != domain.HandSize {
		t.Fatalf("rejected play changed the table")
	}
}

// playOut drives the table with first-legal plays until pred holds.
func playOut(t *testing.T, svc *Service, tbl *Table, pred func([]Event) bool) []Event {
	t.Helper()
	for i := 0; i < 2000; i++ {
		g := tbl.Game
		seat := g.CurrentSeat()
		if seat < 0 {
			t.Fatalf("no seat on turn in phase %s", g.Phase)
		}
		var evs []Event
		var err error
		if g.Phase == domain.PhaseBidding {
			if g.Bidding.Highest == nil {
				evs, err = svc.Bid(tbl, tbl.Seats[seat], domain.BidTake, 80, domain.Suits[g.HandNo%4])
			} else {
				evs, err = svc.Bid(tbl, tbl.Seats[seat], domain.BidPass, 0, "")
			}
		} else {
			evs, err = svc.PlayCard(tbl, tbl.Seats[seat], g.LegalCards(seat)[0])
		}
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if pred(evs) {
			return evs
		}
	}
	t.Fatalf("condition never reached")
	return nil
}

func TestHandScoredAndNextDeal(t *testing.T) {
	svc, tbl := startedTable(t, domain.DefaultRules())
	evs := playOut(t, svc, tbl, func(evs []Event) bool { return countKind(evs, EventHandScored) > 0 })
	if countKind(evs, EventHandDealt) != 4 || countKind(evs, EventTrickWon) != 1 {
		t.Fatalf("events = %+v", evs)
	}
	if tbl.Game.Dealer != 1 || tbl.Game.Phase != domain.PhaseBidding {
		t.Fatalf("dealer %d phase %s", tbl.Game.Dealer, tbl.Game.Phase)
	}
	found := false
	for _, l := range tbl.Log.Lines() {
		if l == "🧾 Fin de manche" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no hand summary in log")
	}
}

func TestMatchOverOnce(t *testing.T) {
	svc, tbl := startedTable(t, domain.Rules{TargetScore: 300})
	evs := playOut(t, svc, tbl, func(evs []Event) bool { return countKind(evs, EventMatchOver) > 0 })
	if countKind(evs, EventMatchOver) != 1 || countKind(evs, EventHandDealt) != 0 {
		t.Fatalf("events = %+v", evs)
	}
	var over MatchOverPayload
	for _, ev := range evs {
		if ev.Kind == EventMatchOver {
			over = ev.Payload.(MatchOverPayload)
		}
	}
	if over.Scores.Of(over.WinnerTeam) < 300 || over.WinnerLabel != over.Teams.Of(over.WinnerTeam) {
		t.Fatalf("match over = %+v", over)
	}
	if !tbl.Finished || tbl.Game.Phase != domain.PhaseMatchOver {
		t.Fatalf("finished %v phase %s", tbl.Finished, tbl.Game.Phase)
	}
	if _, err := svc.Bid(tbl, "u0", domain.BidPass, 0, ""); !errors.Is(err, domain.ErrInvalidPhase) {
		t.Fatalf("bid after match err = %v", err)
	}
	if !strings.HasPrefix(lastLine(tbl), "Score final : U0 / U2") {
		t.Fatalf("last line = %q", lastLine(tbl))
	}
}

func TestLeaveDuringMatchResets(t *testing.T) {
	svc, tbl := startedTable(t, domain.DefaultRules())
	svc.Bid(tbl, "u1", domain.BidPass, 0, "")
	evs, err := svc.Apply(tbl, LeaveCommand{UserID: "u0", Disconnect: true})
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if countKind(evs, EventPlayerLeft) != 1 || countKind(evs, EventTableReset) != 1 {
		t.Fatalf("events = %+v", evs)
	}
	if got := resetReason(evs); got != ResetPlayerDisconnected {
		t.Fatalf("reset reason = %q, want %q", got, ResetPlayerDisconnected)
	}
	if tbl.Started() || tbl.HostSeat != 1 {
		t.Fatalf("started %v host %d", tbl.Started(), tbl.HostSeat)
	}
	if lines := tbl.Log.Lines(); len(lines) != 1 || lines[0] != "⛔ Un joueur a quitté. Partie arrêtée." {
		t.Fatalf("log = %v", lines)
	}
	snap := BuildTableSnapshot(tbl)
	if snap.Phase != PhaseLobby || len(snap.Seats) != 3 || snap.Scores != (domain.TeamScore{}) {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func resetReason(evs []Event) string {
	for _, ev := range evs {
		if ev.Kind == EventTableReset {
			return ev.Payload.(TableResetPayload).Reason
		}
	}
	return ""
}

func TestLeaveReasons(t *testing.T) {
	tests := []struct {
		name string
		cmd  LeaveCommand
		want string
	}{
		{name: "explicit leave", cmd: LeaveCommand{UserID: "u2"}, want: ResetPlayerLeft},
		{name: "dropped connection", cmd: LeaveCommand{UserID: "u2", Disconnect: true}, want: ResetPlayerDisconnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, tbl := startedTable(t, domain.DefaultRules())
			evs, err := svc.Apply(tbl, tt.cmd)
			if err != nil {
				t.Fatalf("leave: %v", err)
			}
			if got := resetReason(evs); got != tt.want {
				t.Fatalf("reset reason = %q, want %q", got, tt.want)
			}
		})
	}

	svc, tbl := newFullTable(t, domain.DefaultRules())
	evs, err := svc.Apply(tbl, LeaveCommand{UserID: "u3", Disconnect: true})
	if err != nil {
		t.Fatalf("lobby disconnect: %v", err)
	}
	if countKind(evs, EventTableReset) != 0 {
		t.Fatalf("lobby disconnect reset the table: %+v", evs)
	}
}

// rigBeloteHand seats the trump K and Q with u1 on a hand NS takes at 80♥.
func rigBeloteHand(t *testing.T, svc *Service, tbl *Table) {
	t.Helper()
	g := tbl.Game
	g.Dealer = 3
	g.Bidding = domain.NewBidding(3)
	g.Turn = 0
	g.Leader = 0
	g.Hands = [domain.PlayerCount][]domain.Card{
		cards(t, "JH", "9H", "AH", "10H", "7S", "8S", "9S", "10S"),
		cards(t, "KH", "QH", "7D", "8D", "9D", "10D", "JD", "QD"),
		cards(t, "8H", "7H", "JS", "QS", "KS", "AS", "7C", "8C"),
		cards(t, "KD", "AD", "9C", "10C", "JC", "QC", "KC", "AC"),
	}
	if _, err := svc.Bid(tbl, "u0", domain.BidTake, 80, domain.Hearts); err != nil {
		t.Fatalf("take: %v", err)
	}
	for _, id := range []string{"u1", "u2", "u3"} {
		if _, err := svc.Bid(tbl, id, domain.BidPass, 0, ""); err != nil {
			t.Fatalf("pass %s: %v", id, err)
		}
	}
}

func cards(t *testing.T, keys ...string) []domain.Card {
	t.Helper()
	out := make([]domain.Card, 0, len(keys))
	for _, k := range keys {
		c, err := domain.ParseCard(k)
		if err != nil {
			t.Fatalf("parse %s: %v", k, err)
		}
		out = append(out, c)
	}
	return out
}

func TestBeloteAnnouncementsAreLogged(t *testing.T) {
	svc, tbl := startedTable(t, domain.DefaultRules())
	rigBeloteHand(t, svc, tbl)

	plays := []struct {
		user string
		card string
		want string
	}{
		{user: "u0", card: "7S"},
		{user: "u1", card: "KH", want: "✨ BELOTE ! (U1)"},
		{user: "u2", card: "JS"},
		{user: "u3", card: "9C"},
		{user: "u1", card: "QH", want: "🔥 REBELOTE ! (U1)"},
	}
	for _, p := range plays {
		before := tbl.Log.Len()
		evs, err := svc.PlayCard(tbl, p.user, cards(t, p.card)[0])
		if err != nil {
			t.Fatalf("%s plays %s: %v", p.user, p.card, err)
		}
		if p.want == "" {
			if countKind(evs, EventBelote) != 0 {
				t.Fatalf("%s: unexpected belote event", p.card)
			}
			continue
		}
		if countKind(evs, EventBelote) != 1 {
			t.Fatalf("%s: events = %+v", p.card, evs)
		}
		if tbl.Log.Len() != before+1 || lastLine(tbl) != p.want {
			t.Fatalf("%s: last line = %q, want %q", p.card, lastLine(tbl), p.want)
		}
	}
}

func TestSnapshots(t *testing.T) {
	svc, tbl := startedTable(t, domain.DefaultRules())
	snap := BuildTableSnapshot(tbl)
	if snap.Phase != string(domain.PhaseBidding) || snap.CurrentSeat != 1 || snap.Dealer != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Teams.NS != "U0 / U2" || snap.Teams.EW != "U1 / U3" {
		t.Fatalf("teams = %+v", snap.Teams)
	}
	if h := BuildHandSnapshot(tbl, 1); len(h.Hand) != 8 || h.YourTurn || len(h.LegalKeys) != 0 {
		t.Fatalf("bidding hand snapshot = %+v", h)
	}

	svc.Bid(tbl, "u1", domain.BidTake, 100, domain.Clubs)
	svc.Bid(tbl, "u2", domain.BidCoinche, 0, "")
	snap = BuildTableSnapshot(tbl)
	if snap.HighestBid == nil || snap.HighestBid.Value != 100 || snap.Coinche != domain.CoincheDoubled || snap.CoincheBy != 2 {
		t.Fatalf("snapshot bid = %+v", snap)
	}
	for _, id := range []string{"u3", "u0", "u1"} {
		if _, err := svc.Bid(tbl, id, domain.BidPass, 0, ""); err != nil {
			t.Fatalf("pass: %v", err)
		}
	}
	h := BuildHandSnapshot(tbl, 1)
	if !h.YourTurn || len(h.LegalKeys) != 8 {
		t.Fatalf("leader hand snapshot = %+v", h)
	}
	if other := BuildHandSnapshot(tbl, 2); other.YourTurn || len(other.LegalKeys) != 0 {
		t.Fatalf("other hand snapshot = %+v", other)
	}
}

func TestMessageLogBounded(t *testing.T) {
	l := NewMessageLog(3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		l.Add(s)
	}
	got := strings.Join(l.Lines(), "")
	if got != "cde" {
		t.Fatalf("lines = %q, want cde", got)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrOutOfTurn, "out_of_turn"},
		{domain.ErrIllegalBid, "illegal_bid"},
		{domain.ErrIllegalCard, "illegal_card"},
		{ErrNotHost, "not_host"},
		{ErrTableFull, "table_full"},
		{errors.New("boom"), "bad_request"},
	}
	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.want {
			t.Fatalf("ErrorCode(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
