package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"coinche/internal/app"
	"coinche/internal/bot"
	"coinche/internal/config"
	"coinche/internal/domain"
	"coinche/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const tickRate = 1 // ticks per second; bot delays are counted in ticks

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID              string                      `json:"match_id"`
	Table                *app.Table                  `json:"-"`                       // Seats, names and the running game
	App                  *app.Service                `json:"-"`                       // Coinche table use-cases
	Tick                 int64                       `json:"tick"`                    // Current tick of the match
	Presences            map[string]runtime.Presence `json:"-"`                       // Map UserId -> Presence for targeted messaging
	BotsEnabled          bool                        `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int                         `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                         `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                       `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent       `json:"-"`                       // Active bot agents
	Recorder             ports.MatchRecorder         `json:"-"`                       // Finished match archive

	rng *rand.Rand
}

// newMatchState builds a lobby table from the game configuration.
func newMatchState(matchID string, variant app.Variant, cfg *config.GameConfig, rng *rand.Rand) *MatchState {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if matchID == "" {
		matchID = uuid.NewString()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	table := app.NewTable(tableIDFromMatch(matchID), variant, domain.Rules{TargetScore: cfg.TargetScore}, cfg.LogSize)
	table.HostEligible = func(userID string) bool { return !isBotUserId(userID) }

	return &MatchState{
		MatchID:          matchID,
		Table:            table,
		App:              app.NewService(rand.New(rand.NewSource(rng.Int63()))),
		Presences:        make(map[string]runtime.Presence),
		BotMinDelay:      cfg.BotMinDelaySeconds,
		BotMaxDelay:      cfg.BotMaxDelaySeconds,
		BotAutoFillDelay: cfg.BotAutoFillDelaySeconds,
		Bots:             make(map[string]*bot.Agent),
		rng:              rng,
	}
}

// tableIDFromMatch derives the short table code players see from a Nakama
// match id ("<uuid>.<node>").
func tableIDFromMatch(matchID string) string {
	id := strings.ReplaceAll(strings.SplitN(matchID, ".", 2)[0], "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Table.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// findFirstBotSeat returns the first seat held by a bot or -1.
func findFirstBotSeat(seats []string) int {
	for i, userId := range seats {
		if isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if err := bot.LoadIdentities(envOr(env, envBotIdentities, defaultBotIdentitiesPath)); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig(envOr(env, envGameConfig, defaultGameConfigPath)); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}

	variant := app.VariantCoinche
	if v, ok := params["variant"].(string); ok {
		variant = app.ParseVariant(v)
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := newMatchState(matchID, variant, config.GetGameConfig(), nil)
	if nk != nil {
		state.Recorder = NewNakamaMatchRecorder(nk)
	}
	applyBotEnv(state, env)

	label, err := buildLabel(state.Table)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: Table %s (%s) ready, bots enabled: %v", state.Table.ID, variant, state.BotsEnabled)
	return state, tickRate, label
}

// applyBotEnv lets the runtime environment override the configured bot timings.
func applyBotEnv(state *MatchState, env map[string]string) {
	if val, ok := env[envBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env[envBotMinDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.BotMinDelay = i
		}
	}
	if val, ok := env[envBotMaxDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env[envBotAutoFillDelay]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 0 {
			state.BotAutoFillDelay = i
		}
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}
}

func envOr(env map[string]string, key, fallback string) string {
	if val := env[key]; val != "" {
		return val
	}
	return fallback
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	table := matchState.Table
	if table.SeatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if table.Started() {
		return state, false, "Match already started"
	}
	// A full lobby still admits humans while a bot holds a seat.
	if table.OpenSeats() <= 0 && findFirstBotSeat(table.Seats[:]) < 0 {
		return state, false, "Match full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	table := matchState.Table
	var events []app.Event
	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if table.SeatOf(userID) < 0 && table.OpenSeats() == 0 && !table.Started() {
			if seat := findFirstBotSeat(table.Seats[:]); seat >= 0 {
				botID := table.Seats[seat]
				logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", botID, userID, seat)
				left, err := matchState.App.Leave(table, botID)
				if err != nil {
					logger.Error("MatchJoin: Failed to remove bot %s: %v", botID, err)
				}
				delete(matchState.Bots, botID)
				events = append(events, left...)
			}
		}

		joined, err := matchState.App.Join(table, userID, p.GetUsername())
		if err != nil {
			logger.Warn("MatchJoin: User %s could not be seated: %v", userID, err)
			mh.sendError(matchState, dispatcher, logger, userID, err)
			continue
		}
		events = append(events, joined...)
		logger.Debug("MatchJoin: User %s seated at %d.", userID, table.SeatOf(userID))
	}

	mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	mh.publishState(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	var events []app.Event
	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		left, err := matchState.App.Apply(matchState.Table, app.LeaveCommand{UserID: userID, Disconnect: true})
		if err != nil {
			logger.Debug("MatchLeave: User %s had no seat: %v", userID, err)
			continue
		}
		logger.Debug("MatchLeave: User %s left.", userID)
		events = append(events, left...)
	}
	matchState.BotWaitUntil = 0

	if shouldTerminateNoHumans(matchState.Table.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	mh.publishState(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		cmd, err := decodeCommand(msg)
		if err != nil {
			logger.Warn("MatchLoop: Bad message from %s (opcode %d): %v", msg.GetUserId(), msg.GetOpCode(), err)
			mh.sendError(matchState, dispatcher, logger, msg.GetUserId(), err)
			continue
		}
		mh.applyCommand(ctx, matchState, dispatcher, logger, cmd)
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// BidRequest is the OpBid payload.
type BidRequest struct {
	Action string `json:"action"`
	Value  int    `json:"value,omitempty"`
	Trump  string `json:"trump,omitempty"`
}

// PlayCardRequest is the OpPlayCard payload, a card key such as "10H".
type PlayCardRequest struct {
	Card string `json:"card"`
}

// ErrorMessage is the OpError payload.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeCommand turns a client message into a table command.
func decodeCommand(msg runtime.MatchData) (app.Command, error) {
	userID := msg.GetUserId()
	switch msg.GetOpCode() {
	case OpStart:
		return app.StartCommand{UserID: userID}, nil
	case OpBid:
		var req BidRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			return nil, fmt.Errorf("invalid bid payload: %w", err)
		}
		cmd := app.BidCommand{UserID: userID, Action: domain.BidAction(req.Action), Value: req.Value}
		if req.Trump != "" {
			suit, err := domain.ParseSuit(req.Trump)
			if err != nil {
				return nil, err
			}
			cmd.Trump = suit
		}
		return cmd, nil
	case OpPlayCard:
		var req PlayCardRequest
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			return nil, fmt.Errorf("invalid play payload: %w", err)
		}
		card, err := domain.ParseCard(req.Card)
		if err != nil {
			return nil, err
		}
		return app.PlayCardCommand{UserID: userID, Card: card}, nil
	}
	return nil, fmt.Errorf("unknown opcode %d", msg.GetOpCode())
}

// applyCommand runs cmd and fans out the result. Rejections go back to the
// sender only.
func (mh *matchHandler) applyCommand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, cmd app.Command) bool {
	events, err := state.App.Apply(state.Table, cmd)
	if err != nil {
		logger.Warn("applyCommand: %T from %s rejected: %v", cmd, cmd.Actor(), err)
		mh.sendError(state, dispatcher, logger, cmd.Actor(), err)
		return false
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.publishState(state, dispatcher, logger)
	return true
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	table := state.Table

	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if !table.Started() {
		if state.GetHumanPlayerCount() == 1 && table.OpenSeats() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				mh.fillWithBots(ctx, state, dispatcher, logger)
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Handle bot turns in-game
	g := table.Game
	if g.Phase != domain.PhaseBidding && g.Phase != domain.PhasePlaying {
		state.BotWaitUntil = 0
		return
	}
	seat := g.CurrentSeat()
	if seat < 0 || !isBotUserId(table.Seats[seat]) {
		state.BotWaitUntil = 0
		return
	}
	botID := table.Seats[seat]

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if span := state.BotMaxDelay - state.BotMinDelay; span > 0 {
			delay += state.rng.Intn(span + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay*tickRate)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", botID, seat, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, err := state.agentFor(botID)
	if err != nil {
		logger.Error("processBots: Failed to create agent for %s: %v", botID, err)
		return
	}
	move, err := agent.Play(g, seat)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", botID, err)
		return
	}

	var cmd app.Command
	if move.Kind == bot.MoveBid {
		cmd = app.BidCommand{UserID: botID, Action: move.Action, Value: move.Value, Trump: move.Trump}
	} else {
		cmd = app.PlayCardCommand{UserID: botID, Card: move.Card}
	}
	mh.applyCommand(ctx, state, dispatcher, logger, cmd)
}

// fillWithBots seats a distinct bot identity in every empty seat.
func (mh *matchHandler) fillWithBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	table := state.Table
	var events []app.Event
	for i := 0; table.OpenSeats() > 0 && i < 64; i++ {
		identity := bot.GetBotIdentity(i)
		if table.SeatOf(identity.UserID) >= 0 {
			continue
		}
		joined, err := state.App.Join(table, identity.UserID, bot.GetBotDisplayName(identity.UserID))
		if err != nil {
			logger.Error("processBots: Failed to seat bot %s: %v", identity.UserID, err)
			break
		}
		if _, err := state.agentFor(identity.UserID); err != nil {
			logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
		}
		logger.Info("processBots: Added bot %s (%s) to seat %d", table.Names[identity.UserID], identity.UserID, table.SeatOf(identity.UserID))
		events = append(events, joined...)
	}
	if len(events) > 0 {
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		mh.publishState(state, dispatcher, logger)
	}
}

func (ms *MatchState) agentFor(botID string) (*bot.Agent, error) {
	if agent, ok := ms.Bots[botID]; ok {
		return agent, nil
	}
	agent, err := bot.NewAgent(botID)
	if err != nil {
		return nil, err
	}
	ms.Bots[botID] = agent
	return agent, nil
}

// dispatchEvents forwards table events to presences and bots. Private events
// never reach anyone but their recipients.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.notifyBots(state, ev)

		bytes, err := json.Marshal(ev)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// Intended recipients that are not connected (bots) must not turn into a broadcast.
			if len(recipients) == 0 {
				continue
			}
		}
		dispatcher.BroadcastMessage(OpEvent, bytes, recipients, nil, true)

		if ev.Kind == app.EventMatchOver {
			mh.handleMatchOver(ctx, state, dispatcher, logger, ev)
		}
	}
}

func (mh *matchHandler) notifyBots(state *MatchState, ev app.Event) {
	var payload interface{}
	switch p := ev.Payload.(type) {
	case app.CardPlayedPayload:
		payload = domain.Play{Seat: p.Seat, Card: p.Card}
	case app.TrickWonPayload:
		payload = p.Trick
	case app.GameStartedPayload, app.TableResetPayload:
		payload = bot.GameReset{}
	default:
		return
	}
	for _, agent := range state.Bots {
		agent.OnGameEvent(payload)
	}
}

func (mh *matchHandler) handleMatchOver(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	result, ok := ev.Payload.(app.MatchOverPayload)
	if !ok {
		return
	}
	bytes, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to marshal match over: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchOver, bytes, nil, nil, true)
	logger.Info("Match %s over: %s wins %d-%d after %d hands", state.MatchID, result.WinnerLabel, result.Scores.NS, result.Scores.EW, result.Hands)

	if state.Recorder == nil {
		return
	}
	if err := state.Recorder.RecordMatch(ctx, buildMatchRecord(state, result)); err != nil {
		logger.Error("Failed to record match %s: %v", state.MatchID, err)
	}
}

func buildMatchRecord(state *MatchState, result app.MatchOverPayload) ports.MatchRecord {
	table := state.Table
	rec := ports.MatchRecord{
		MatchID:    state.MatchID,
		TableID:    table.ID,
		Variant:    string(table.Variant),
		Players:    table.Seats,
		TeamNS:     result.Teams.NS,
		TeamEW:     result.Teams.EW,
		ScoreNS:    result.Scores.NS,
		ScoreEW:    result.Scores.EW,
		Winner:     string(result.WinnerTeam),
		Hands:      result.Hands,
		FinishedAt: time.Now(),
	}
	for seat := range table.Seats {
		rec.Names[seat] = table.Name(seat)
	}
	return rec
}

// publishState sends the public table view to everyone, each connected
// player's private hand, and refreshes the label.
func (mh *matchHandler) publishState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	table := state.Table
	bytes, err := json.Marshal(app.BuildTableSnapshot(table))
	if err != nil {
		logger.Error("publishState: Failed to marshal table: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpTableState, bytes, nil, nil, true)

	for seat, userID := range table.Seats {
		p, ok := state.Presences[userID]
		if userID == "" || !ok {
			continue
		}
		hand, err := json.Marshal(app.BuildHandSnapshot(table, seat))
		if err != nil {
			logger.Error("publishState: Failed to marshal hand of seat %d: %v", seat, err)
			continue
		}
		dispatcher.BroadcastMessage(OpYourHand, hand, []runtime.Presence{p}, nil, true)
	}

	mh.updateLabel(state, dispatcher, logger)
}

// sendError sends an ErrorMessage to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Debug("Cannot send error to %s: Presence not found", userID)
		return
	}
	bytes, mErr := json.Marshal(ErrorMessage{Code: app.ErrorCode(err), Message: err.Error()})
	if mErr != nil {
		logger.Error("Failed to marshal error: %v", mErr)
		return
	}
	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state.Table)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

// MatchSignal answers with the public table snapshot.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	bytes, err := json.Marshal(app.BuildTableSnapshot(matchState.Table))
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal table: %v", err)
		return state, ""
	}
	return state, string(bytes)
}
