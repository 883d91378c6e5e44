package app

import (
	"strings"
	"unicode/utf8"

	"coinche/internal/domain"
)

// Variant is the label a table was opened under. Both play the same rules.
type Variant string

const (
	VariantBelote  Variant = "belote"
	VariantCoinche Variant = "coinche"
)

// ParseVariant defaults anything unknown to belote.
func ParseVariant(s string) Variant {
	if Variant(strings.ToLower(strings.TrimSpace(s))) == VariantCoinche {
		return VariantCoinche
	}
	return VariantBelote
}

const (
	maxNameRunes = 18
	defaultName  = "Joueur"
	noName       = "—"
)

// CleanName trims a display name to 18 runes, falling back to "Joueur".
func CleanName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = strings.TrimSpace(string([]rune(name)[:maxNameRunes]))
	}
	if name == "" {
		return defaultName
	}
	return name
}

// Table is one room: four seats, their names, the host and the engine once
// the match is started. A table is owned by a single actor.
type Table struct {
	ID       string
	Variant  Variant
	Rules    domain.Rules
	Seats    [domain.PlayerCount]string
	Names    map[string]string
	HostSeat int
	Game     *domain.Game
	Finished bool
	Log      *MessageLog

	// HostEligible filters which occupants may hold the host seat. Nil allows anyone.
	HostEligible func(userID string) bool
}

// NewTable returns an empty lobby table.
func NewTable(id string, variant Variant, rules domain.Rules, logSize int) *Table {
	return &Table{
		ID:       id,
		Variant:  variant,
		Rules:    rules,
		Names:    make(map[string]string),
		HostSeat: -1,
		Log:      NewMessageLog(logSize),
	}
}

// SeatOf returns the user's seat or -1.
func (t *Table) SeatOf(userID string) int {
	if userID == "" {
		return -1
	}
	for i, id := range t.Seats {
		if id == userID {
			return i
		}
	}
	return -1
}

// Occupied counts filled seats.
func (t *Table) Occupied() int {
	n := 0
	for _, id := range t.Seats {
		if id != "" {
			n++
		}
	}
	return n
}

// OpenSeats counts empty seats.
func (t *Table) OpenSeats() int {
	return domain.PlayerCount - t.Occupied()
}

// Started reports whether a match is in progress or just finished.
func (t *Table) Started() bool {
	return t.Game != nil
}

// Name is the display name at seat, "—" when empty.
func (t *Table) Name(seat int) string {
	if seat < 0 || seat >= domain.PlayerCount {
		return noName
	}
	if n, ok := t.Names[t.Seats[seat]]; ok && n != "" {
		return n
	}
	return noName
}

// TeamLabels names each partnership after its players, "A / C" and "B / D".
type TeamLabels struct {
	NS string `json:"NS"`
	EW string `json:"EW"`
}

// Of returns the label of team tm.
func (l TeamLabels) Of(tm domain.Team) string {
	if tm == domain.TeamNS {
		return l.NS
	}
	return l.EW
}

// Teams builds the team labels from the current seating.
func (t *Table) Teams() TeamLabels {
	return TeamLabels{
		NS: t.Name(0) + " / " + t.Name(2),
		EW: t.Name(1) + " / " + t.Name(3),
	}
}

func (t *Table) hostEligible(userID string) bool {
	return userID != "" && (t.HostEligible == nil || t.HostEligible(userID))
}

// electHost keeps a valid host or promotes the first eligible occupant.
func (t *Table) electHost() {
	if t.HostSeat >= 0 && t.hostEligible(t.Seats[t.HostSeat]) {
		return
	}
	t.HostSeat = -1
	for i, id := range t.Seats {
		if t.hostEligible(id) {
			t.HostSeat = i
			return
		}
	}
}

func (t *Table) lowestFreeSeat() int {
	for i, id := range t.Seats {
		if id == "" {
			return i
		}
	}
	return -1
}
