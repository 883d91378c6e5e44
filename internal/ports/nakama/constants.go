package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby table.
	RpcQuickMatch = "quick_match"
	// RpcVoiceToken signs a voice chat token for the caller.
	RpcVoiceToken = "voice_token"

	// MatchNameCoinche is the authoritative match handler name registered with Nakama.
	MatchNameCoinche = "coinche_match"

	// GameLabel is the game key advertised in match labels.
	GameLabel = "coinche"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStart    int64 = 1
	OpBid      int64 = 2
	OpPlayCard int64 = 3

	// Server -> Client
	OpTableState int64 = 100
	OpYourHand   int64 = 101 // send privately
	OpMatchOver  int64 = 102
	OpError      int64 = 103
	OpEvent      int64 = 104
)

// Runtime environment keys.
const (
	envBotsEnabled      = "coinche_bots_enabled"
	envBotMinDelay      = "coinche_bot_min_delay_sec"
	envBotMaxDelay      = "coinche_bot_max_delay_sec"
	envBotAutoFillDelay = "coinche_bot_auto_fill_delay_sec"
	envGameConfig       = "coinche_game_config"
	envBotIdentities    = "coinche_bot_identities"
	envVoiceIssuer      = "voice_issuer"
	envVoiceDomain      = "voice_domain"
	envVoiceSecret      = "voice_secret"
)

const (
	defaultGameConfigPath    = "data/game_config.json"
	defaultBotIdentitiesPath = "data/bot_identities.json"
)
