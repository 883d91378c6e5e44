package domain

const (
	HandPoints     = 162
	CapotPoints    = 252
	LastTrickBonus = 10
	TricksPerHand  = 8
)

// HandResult is the outcome of a completed deal.
type HandResult struct {
	Contract   Contract  `json:"contract"`
	Points     TeamScore `json:"points"`
	Tricks     TeamScore `json:"tricks"`
	Made       bool      `json:"made"`
	Multiplier int       `json:"multiplier"`
	Gains      TeamScore `json:"gains"`
	// Sweep is the team that took all eight tricks, if any.
	Sweep Team `json:"sweep,omitempty"`
}

// ScoreHand applies the contract to the hand's trick points (belote bonus
// included) and trick counts.
//
// A team taking every trick is credited 252 and the other 0, replacing any
// belote bonus. A capot contract is made only by sweeping; any other contract
// is made when the taker's points reach its value. Made contracts score
// (points + value) for the taker and raw points for the defence, failed ones
// give (162 or 252 for capot) + value to the defence. Everything is multiplied
// by the coinche level.
func ScoreHand(c Contract, points, tricks TeamScore) HandResult {
	res := HandResult{
		Contract:   c,
		Points:     points,
		Tricks:     tricks,
		Multiplier: c.Multiplier(),
	}
	for _, t := range []Team{TeamNS, TeamEW} {
		if tricks.Of(t) == TricksPerHand {
			res.Sweep = t
			res.Points.Set(t, CapotPoints)
			res.Points.Set(t.Opponent(), 0)
		}
	}

	taker := c.TakerTeam()
	defence := taker.Opponent()
	if c.Capot {
		res.Made = res.Sweep == taker
	} else {
		res.Made = res.Points.Of(taker) >= c.Value
	}

	if res.Made {
		res.Gains.Set(taker, (res.Points.Of(taker)+c.Value)*res.Multiplier)
		res.Gains.Set(defence, res.Points.Of(defence)*res.Multiplier)
		return res
	}
	base := HandPoints
	if c.Capot {
		base = CapotPoints
	}
	res.Gains.Set(defence, (base+c.Value)*res.Multiplier)
	return res
}
