package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coinche/internal/bot"
	"coinche/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const matchHistoryCollection = "match_history"

// NakamaMatchRecorder implements ports.MatchRecorder with Nakama storage. Each
// human player gets a read-only copy keyed by match id.
type NakamaMatchRecorder struct {
	nk runtime.NakamaModule
}

// NewNakamaMatchRecorder creates a new recorder adapter.
func NewNakamaMatchRecorder(nk runtime.NakamaModule) *NakamaMatchRecorder {
	return &NakamaMatchRecorder{nk: nk}
}

type storedMatch struct {
	MatchID    string    `json:"match_id"`
	TableID    string    `json:"table_id"`
	Variant    string    `json:"variant"`
	Players    [4]string `json:"players"`
	Names      [4]string `json:"names"`
	TeamNS     string    `json:"team_ns"`
	TeamEW     string    `json:"team_ew"`
	ScoreNS    int       `json:"score_ns"`
	ScoreEW    int       `json:"score_ew"`
	Winner     string    `json:"winner"`
	Hands      int       `json:"hands"`
	FinishedAt string    `json:"finished_at"`
}

// RecordMatch writes the match once per human player.
func (a *NakamaMatchRecorder) RecordMatch(ctx context.Context, rec ports.MatchRecord) error {
	if rec.MatchID == "" {
		return fmt.Errorf("match id is required")
	}
	value, err := json.Marshal(storedMatch{
		MatchID:    rec.MatchID,
		TableID:    rec.TableID,
		Variant:    rec.Variant,
		Players:    rec.Players,
		Names:      rec.Names,
		TeamNS:     rec.TeamNS,
		TeamEW:     rec.TeamEW,
		ScoreNS:    rec.ScoreNS,
		ScoreEW:    rec.ScoreEW,
		Winner:     rec.Winner,
		Hands:      rec.Hands,
		FinishedAt: rec.FinishedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	var writes []*runtime.StorageWrite
	for _, userID := range rec.Players {
		if userID == "" || bot.IsBot(userID) {
			continue
		}
		writes = append(writes, &runtime.StorageWrite{
			Collection:      matchHistoryCollection,
			Key:             rec.MatchID,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}
	if len(writes) == 0 {
		return nil
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to store match %s: %w", rec.MatchID, err)
	}
	return nil
}

var _ ports.MatchRecorder = (*NakamaMatchRecorder)(nil)
