package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"coinche/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by runtime errors.
const (
	codeInvalidArgument    = 3
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, voice *app.VoiceService) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcVoiceToken, rpcVoiceToken(voice))
}

// VoiceTokenRequest is the voice_token RPC payload.
type VoiceTokenRequest struct {
	Action  string `json:"action"`
	TableID string `json:"tableId,omitempty"`
}

// VoiceTokenResponse carries a signed token and, for joins, the channel name.
type VoiceTokenResponse struct {
	Token   string `json:"token"`
	Channel string `json:"channel,omitempty"`
}

// rpcVoiceToken signs voice tokens for the calling user.
//
// Payload: {"action":"login"} or {"action":"join","tableId":"ABCD1234"}.
// Returns: VoiceTokenResponse as JSON.
func rpcVoiceToken(voice *app.VoiceService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if userID == "" {
			return "", runtime.NewError("authentication required", codeUnauthenticated)
		}

		var req VoiceTokenRequest
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &req); err != nil {
				return "", runtime.NewError("invalid payload", codeInvalidArgument)
			}
		}
		if req.Action == "" {
			req.Action = app.VoiceActionLogin
		}

		token, err := voice.Token(userID, req.Action, req.TableID)
		switch {
		case errors.Is(err, app.ErrVoiceNotConfigured):
			logger.Error("RpcVoiceToken [User:%s]: %v", userID, err)
			return "", runtime.NewError("voice chat is not configured", codeFailedPrecondition)
		case err != nil:
			logger.Warn("RpcVoiceToken [User:%s]: %v", userID, err)
			return "", runtime.NewError(err.Error(), codeInvalidArgument)
		}

		resp := VoiceTokenResponse{Token: token}
		if req.Action == app.VoiceActionJoin {
			resp.Channel = app.TableChannel(req.TableID)
		}
		b, err := json.Marshal(resp)
		if err != nil {
			return "", runtime.NewError("failed to encode response", codeInternal)
		}
		return string(b), nil
	}
}
