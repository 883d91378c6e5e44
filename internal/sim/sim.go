package sim

import (
	"fmt"
	"math/rand"
	"strings"

	"coinche/internal/bot"
	"coinche/internal/domain"
)

// ActionRecord is one applied move, kept for failure reports.
type ActionRecord struct {
	Hand  int
	Step  int
	Phase domain.Phase
	Seat  int
	Move  bot.Move
}

// Result summarises a self-play run.
type Result struct {
	Hands    int
	Steps    int
	Scores   domain.TeamScore
	Finished bool
	Winner   domain.Team
}

// RunSelfPlay lets bots play up to hands scored deals from seed, checking the
// engine invariants after every move. Even seats play the good strategy and
// odd seats the easy one.
func RunSelfPlay(seed int64, hands int, maxSteps int) (Result, error) {
	g := domain.NewGame(domain.DefaultRules(), rand.New(rand.NewSource(seed)))
	if err := g.Start(); err != nil {
		return Result{}, err
	}

	var brains [domain.PlayerCount]bot.Brain
	for i := range brains {
		level := bot.BotLevelGood
		if i%2 == 1 {
			level = bot.BotLevelEasy
		}
		b, err := bot.NewBrain(level)
		if err != nil {
			return Result{}, err
		}
		brains[i] = b
	}

	var (
		res       Result
		records   []ActionRecord
		rebelotes int
	)
	for step := 0; step < maxSteps; step++ {
		res.Steps = step + 1
		seat := g.CurrentSeat()
		if seat < 0 {
			return res, failure(seed, g, step, seat, records, "no current seat")
		}
		phase := g.Phase
		move, err := brains[seat].CalculateMove(g, seat)
		if err != nil {
			return res, failure(seed, g, step, seat, records, fmt.Sprintf("bot error: %v", err))
		}
		records = append(records, ActionRecord{Hand: g.HandNo, Step: step, Phase: phase, Seat: seat, Move: move})

		prev := g.Scores
		if move.Kind == bot.MoveBid {
			if _, err := g.Bid(seat, move.Action, move.Value, move.Trump); err != nil {
				return res, failure(seed, g, step, seat, records, fmt.Sprintf("bid rejected: %v", err))
			}
		} else {
			pr, err := g.PlayCard(seat, move.Card)
			if err != nil {
				return res, failure(seed, g, step, seat, records, fmt.Sprintf("play rejected: %v", err))
			}
			for _, b := range brains {
				b.OnEvent(domain.Play{Seat: seat, Card: move.Card})
			}
			if pr.Announcement == domain.AnnounceRebelote {
				rebelotes++
			}
			if pr.Hand != nil {
				res.Hands++
				if err := checkHand(*pr.Hand, rebelotes, prev, g.Scores); err != nil {
					return res, failure(seed, g, step, seat, records, err.Error())
				}
				rebelotes = 0
			}
			if pr.MatchOver {
				res.Finished = true
				res.Winner = pr.Winner
			}
		}
		if err := checkInvariants(g); err != nil {
			return res, failure(seed, g, step, seat, records, err.Error())
		}
		res.Scores = g.Scores
		if res.Finished || res.Hands >= hands {
			return res, nil
		}
	}
	return res, nil
}

// checkInvariants verifies the cards in play and the trick shape.
func checkInvariants(g *domain.Game) error {
	switch g.Phase {
	case domain.PhaseMatchOver:
		if g.Scores.Of(g.Winner) < g.Rules.TargetScore {
			return fmt.Errorf("winner %s below target: %d", g.Winner, g.Scores.Of(g.Winner))
		}
		return nil
	case domain.PhaseBidding, domain.PhasePlaying:
	default:
		return fmt.Errorf("unexpected resting phase %s", g.Phase)
	}

	seen := make(map[domain.Card]bool)
	total := 0
	for seat, hand := range g.Hands {
		for _, c := range hand {
			if seen[c] {
				return fmt.Errorf("duplicate card %s in seat %d", c.Key(), seat)
			}
			seen[c] = true
			total++
		}
	}
	for _, p := range g.Trick {
		if seen[p.Card] {
			return fmt.Errorf("card %s both in hand and on table", p.Card.Key())
		}
		seen[p.Card] = true
		total++
	}
	if want := domain.DeckSize - domain.PlayerCount*g.TrickNo; total != want {
		return fmt.Errorf("card count mismatch: %d, want %d", total, want)
	}
	if len(g.Trick) >= domain.PlayerCount {
		return fmt.Errorf("invalid trick size: %d", len(g.Trick))
	}
	if g.Phase == domain.PhasePlaying && g.Contract == nil {
		return fmt.Errorf("playing without a contract")
	}
	return nil
}

// checkHand verifies the point total of a scored deal and that match scores
// only grow by the reported gains.
func checkHand(hr domain.HandResult, rebelotes int, before, after domain.TeamScore) error {
	want := domain.HandPoints + domain.BeloteBonus*rebelotes
	if hr.Sweep != "" {
		want = domain.CapotPoints
	}
	if got := hr.Points.Total(); got != want {
		return fmt.Errorf("hand points %d, want %d (sweep=%q rebelotes=%d)", got, want, hr.Sweep, rebelotes)
	}
	if hr.Tricks.Total() != domain.TricksPerHand {
		return fmt.Errorf("tricks %d, want %d", hr.Tricks.Total(), domain.TricksPerHand)
	}
	if hr.Gains.NS < 0 || hr.Gains.EW < 0 {
		return fmt.Errorf("negative gains %+v", hr.Gains)
	}
	if after.NS != before.NS+hr.Gains.NS || after.EW != before.EW+hr.Gains.EW {
		return fmt.Errorf("scores %+v do not follow %+v + %+v", after, before, hr.Gains)
	}
	return nil
}

func failure(seed int64, g *domain.Game, step int, seat int, records []ActionRecord, reason string) error {
	start := 0
	if len(records) > 20 {
		start = len(records) - 20
	}
	var log strings.Builder
	for _, r := range records[start:] {
		fmt.Fprintf(&log, "[h%d s%d p%d %s] %+v\n", r.Hand, r.Step, r.Seat, r.Phase, r.Move)
	}
	return fmt.Errorf("seed=%d hand=%d step=%d phase=%s seat=%d reason=%s\nlast actions:\n%s",
		seed, g.HandNo, step, g.Phase, seat, reason, log.String())
}
