package ports

import (
	"context"
	"time"
)

// MatchRecord is the archived outcome of a finished match.
type MatchRecord struct {
	MatchID    string
	TableID    string
	Variant    string
	Players    [4]string
	Names      [4]string
	TeamNS     string
	TeamEW     string
	ScoreNS    int
	ScoreEW    int
	Winner     string
	Hands      int
	FinishedAt time.Time
}

// MatchRecorder persists finished matches.
type MatchRecorder interface {
	// RecordMatch stores one finished match. Implementations must be safe to
	// call once per match; the caller never retries.
	RecordMatch(ctx context.Context, rec MatchRecord) error
}
