package nakama

import (
	"context"
	"database/sql"

	"coinche/internal/app"
	"coinche/internal/bot"
	"coinche/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if err := config.LoadGameConfig(envOr(env, envGameConfig, defaultGameConfigPath)); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}
	if err := bot.LoadIdentities(envOr(env, envBotIdentities, defaultBotIdentitiesPath)); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	cfg := config.GetGameConfig()
	voice := app.NewVoiceService(
		envOr(env, envVoiceSecret, cfg.VoiceSecret),
		envOr(env, envVoiceIssuer, cfg.VoiceIssuer),
		envOr(env, envVoiceDomain, cfg.VoiceDomain),
	)

	if err := RegisterRPCs(initializer, voice); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameCoinche, NewMatch); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	logger.Info("Coinche Go module loaded.")
	return nil
}
