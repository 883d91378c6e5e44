package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"coinche/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchRequest optionally narrows the search to one variant label.
type QuickMatchRequest struct {
	Variant string `json:"variant,omitempty"`
}

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// quickMatchQuery finds lobby tables of our game with at least one open seat.
func quickMatchQuery(variant string) string {
	query := fmt.Sprintf("+label.%s:%s +label.%s:%s +label.%s:>=1",
		MatchLabelKey_Game, GameLabel,
		MatchLabelKey_Phase, app.PhaseLobby,
		MatchLabelKey_OpenSeats)
	if variant != "" {
		query += fmt.Sprintf(" +label.%s:%s", MatchLabelKey_Variant, variant)
	}
	return query
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userId, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req QuickMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid payload", codeInvalidArgument)
		}
	}
	variant := ""
	if req.Variant != "" {
		variant = string(app.ParseVariant(req.Variant))
	}

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 3 // ensure < 4 players

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery(variant))
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to list matches: %v", userId, err)
		return "", err
	}

	resp := QuickMatchResponse{}
	if len(matches) > 0 {
		resp.MatchID = matches[0].MatchId
		logger.Info("RpcQuickMatch [User:%s]: Found existing match %s", userId, resp.MatchID)
	} else {
		// Seat and host assignment happen in MatchJoin (server-authoritative).
		params := map[string]interface{}{}
		if variant != "" {
			params["variant"] = variant
		}
		matchID, err := nk.MatchCreate(ctx, MatchNameCoinche, params)
		if err != nil {
			logger.Error("RpcQuickMatch [User:%s]: Failed to create match: %v", userId, err)
			return "", err
		}
		resp = QuickMatchResponse{MatchID: matchID, IsNew: true}
		logger.Info("RpcQuickMatch [User:%s]: Created new match %s", userId, matchID)
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
