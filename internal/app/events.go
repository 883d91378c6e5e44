package app

import "coinche/internal/domain"

// EventKind identifies emitted table events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventBidMade        EventKind = "bid_made"
	EventRedeal         EventKind = "redeal"
	EventContractLocked EventKind = "contract_locked"
	EventCardPlayed     EventKind = "card_played"
	EventBelote         EventKind = "belote"
	EventTrickWon       EventKind = "trick_won"
	EventHandScored     EventKind = "hand_scored"
	EventMatchOver      EventKind = "match_over"
	EventTableReset     EventKind = "table_reset"
)

// Event is a table event with optional targeted recipients.
type Event struct {
	Kind       EventKind `json:"kind"`
	Payload    any       `json:"payload"`
	Recipients []string  `json:"-"` // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string `json:"userId"`
	Seat   int    `json:"seat"`
	Name   string `json:"name"`
	Host   bool   `json:"host"`
}

type PlayerLeftPayload struct {
	UserID   string `json:"userId"`
	Seat     int    `json:"seat"`
	HostSeat int    `json:"hostSeat"`
}

type GameStartedPayload struct {
	Variant Variant    `json:"variant"`
	Teams   TeamLabels `json:"teams"`
}

// HandDealtPayload is private to the seat it is addressed to.
type HandDealtPayload struct {
	Seat   int           `json:"seat"`
	Dealer int           `json:"dealer"`
	HandNo int           `json:"handNo"`
	Hand   []domain.Card `json:"hand"`
}

type BidMadePayload struct {
	Seat     int              `json:"seat"`
	Action   domain.BidAction `json:"action"`
	Bid      *domain.Bid      `json:"bid,omitempty"`
	NextSeat int              `json:"nextSeat"`
}

type RedealPayload struct {
	Dealer int `json:"dealer"`
}

type ContractLockedPayload struct {
	Contract domain.Contract `json:"contract"`
	Leader   int             `json:"leader"`
}

type CardPlayedPayload struct {
	Seat     int         `json:"seat"`
	Card     domain.Card `json:"card"`
	NextSeat int         `json:"nextSeat"`
}

type BelotePayload struct {
	Seat         int                 `json:"seat"`
	Announcement domain.Announcement `json:"announcement"`
}

type TrickWonPayload struct {
	Trick domain.TrickResult `json:"trick"`
}

type HandScoredPayload struct {
	Result domain.HandResult `json:"result"`
	Scores domain.TeamScore  `json:"scores"`
}

// MatchOverPayload is emitted once, when a team first reaches the target.
type MatchOverPayload struct {
	WinnerTeam  domain.Team      `json:"winnerTeam"`
	WinnerLabel string           `json:"winnerLabel"`
	Teams       TeamLabels       `json:"teams"`
	Scores      domain.TeamScore `json:"scores"`
	Hands       int              `json:"hands"`
}

type TableResetPayload struct {
	Reason string `json:"reason"`
}
