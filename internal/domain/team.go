package domain

// Team is a partnership. Seats 0 and 2 play NS, seats 1 and 3 play EW.
type Team string

const (
	TeamNS Team = "NS"
	TeamEW Team = "EW"
)

// TeamOf derives a seat's team from its parity.
func TeamOf(seat int) Team {
	if seat%2 == 0 {
		return TeamNS
	}
	return TeamEW
}

// Opponent returns the other partnership.
func (t Team) Opponent() Team {
	if t == TeamNS {
		return TeamEW
	}
	return TeamNS
}

// Seats returns the two seats of the team in seat order.
func (t Team) Seats() [2]int {
	if t == TeamNS {
		return [2]int{0, 2}
	}
	return [2]int{1, 3}
}

// NextSeat returns the seat after s in playing order.
func NextSeat(s int) int {
	return (s + 1) % PlayerCount
}

// Partner returns the seat across the table.
func Partner(s int) int {
	return (s + 2) % PlayerCount
}

// SameTeam reports whether two seats are partners (or the same seat).
func SameTeam(a, b int) bool {
	return TeamOf(a) == TeamOf(b)
}

// TeamScore holds one integer per partnership.
type TeamScore struct {
	NS int `json:"NS"`
	EW int `json:"EW"`
}

// Of returns the value for team t.
func (s TeamScore) Of(t Team) int {
	if t == TeamNS {
		return s.NS
	}
	return s.EW
}

// Add increments the value for team t.
func (s *TeamScore) Add(t Team, n int) {
	if t == TeamNS {
		s.NS += n
	} else {
		s.EW += n
	}
}

// Set overwrites the value for team t.
func (s *TeamScore) Set(t Team, n int) {
	if t == TeamNS {
		s.NS = n
	} else {
		s.EW = n
	}
}

// Total is NS + EW.
func (s TeamScore) Total() int {
	return s.NS + s.EW
}
