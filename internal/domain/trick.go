package domain

// TrickResult records a completed trick.
type TrickResult struct {
	Number int    `json:"number"`
	Plays  []Play `json:"plays"`
	Winner int    `json:"winner"`
	Points int    `json:"points"`
}

// resolveTrick closes the four-card trick on the table, credits the winner's
// team (with the last-trick bonus on the eighth) and hands them the lead.
func (g *Game) resolveTrick() TrickResult {
	trump := g.Contract.Trump
	winner := TrickWinner(g.Trick, trump)
	pts := TrickPoints(g.Trick, trump)

	g.TrickNo++
	if g.TrickNo == TricksPerHand {
		pts += LastTrickBonus
	}
	team := TeamOf(winner.Seat)
	g.Points.Add(team, pts)
	g.Tricks.Add(team, 1)

	tr := TrickResult{
		Number: g.TrickNo,
		Plays:  g.Trick,
		Winner: winner.Seat,
		Points: pts,
	}
	g.LastTrick = &tr
	g.Trick = nil
	g.Leader = winner.Seat
	return tr
}

// CurrentWinner returns the seat currently master of the trick in progress.
func (g *Game) CurrentWinner() (int, bool) {
	if len(g.Trick) == 0 || g.Contract == nil {
		return -1, false
	}
	return TrickWinner(g.Trick, g.Contract.Trump).Seat, true
}
