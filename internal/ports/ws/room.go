package ws

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"coinche/internal/app"
	"coinche/internal/config"
	"coinche/internal/domain"
	"coinche/internal/ports"

	"go.uber.org/zap"
)

const (
	inboxSize     = 64
	recordTimeout = 5 * time.Second
)

var ErrRoomClosed = errors.New("room is closed")

type envelope struct {
	client *Client
	cmd    app.Command
	reply  chan error
}

// Room owns one table. Every command goes through its inbox and is applied by
// the room goroutine, so the table is never shared.
type Room struct {
	Code string

	table    *app.Table
	svc      *app.Service
	clients  map[string]*Client
	recorder ports.MatchRecorder
	logger   *zap.Logger
	onEmpty  func(code string)

	inbox chan envelope
	done  chan struct{}

	mu   sync.RWMutex
	info RoomInfo
}

func newRoom(code string, variant app.Variant, cfg *config.GameConfig, seed int64, recorder ports.MatchRecorder, logger *zap.Logger, onEmpty func(string)) *Room {
	r := &Room{
		Code:     code,
		table:    app.NewTable(code, variant, domain.Rules{TargetScore: cfg.TargetScore}, cfg.LogSize),
		svc:      app.NewService(rand.New(rand.NewSource(seed))),
		clients:  make(map[string]*Client),
		recorder: recorder,
		logger:   logger.With(zap.String("room", code)),
		onEmpty:  onEmpty,
		inbox:    make(chan envelope, inboxSize),
		done:     make(chan struct{}),
	}
	r.refreshInfo()
	return r
}

// Info returns the latest lobby listing of the room.
func (r *Room) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// Done is closed once the room goroutine has exited.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Submit queues cmd and waits for it to be applied. client is attached to the
// room when cmd is a successful join.
func (r *Room) Submit(client *Client, cmd app.Command) error {
	reply := make(chan error, 1)
	select {
	case r.inbox <- envelope{client: client, cmd: cmd, reply: reply}:
	case <-r.done:
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) run(ctx context.Context) {
	defer close(r.done)
	r.logger.Debug("room opened")
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("room stopped", zap.Error(ctx.Err()))
			return
		case env := <-r.inbox:
			err := r.handle(ctx, env)
			env.reply <- err
			if r.table.Occupied() == 0 {
				r.logger.Debug("room closed, no players left")
				if r.onEmpty != nil {
					r.onEmpty(r.Code)
				}
				return
			}
		}
	}
}

func (r *Room) handle(ctx context.Context, env envelope) error {
	events, err := r.svc.Apply(r.table, env.cmd)
	if err != nil {
		r.logger.Debug("command rejected",
			zap.String("user", env.cmd.Actor()),
			zap.String("command", commandName(env.cmd)),
			zap.Error(err))
		return err
	}
	r.refreshInfo()

	switch c := env.cmd.(type) {
	case app.JoinCommand:
		if env.client != nil {
			r.clients[c.UserID] = env.client
			env.client.Send(ServerMessage{Type: MsgRoomJoined, Code: r.Code})
		}
	case app.LeaveCommand:
		delete(r.clients, c.UserID)
	}

	r.dispatch(ctx, events)
	r.publish()
	return nil
}

// dispatch forwards events, keeping private ones private.
func (r *Room) dispatch(ctx context.Context, events []app.Event) {
	for i := range events {
		ev := events[i]
		msg := ServerMessage{Type: MsgEvent, Event: &ev}
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if c, ok := r.clients[uid]; ok {
					c.Send(msg)
				}
			}
		} else {
			r.broadcast(msg)
		}

		if ev.Kind == app.EventMatchOver {
			if result, ok := ev.Payload.(app.MatchOverPayload); ok {
				r.broadcast(ServerMessage{Type: MsgMatchOver, Result: &result})
				r.record(ctx, result)
			}
		}
	}
}

func (r *Room) publish() {
	state := app.BuildTableSnapshot(r.table)
	r.broadcast(ServerMessage{Type: MsgTableState, State: &state})
	for seat, uid := range r.table.Seats {
		c, ok := r.clients[uid]
		if uid == "" || !ok {
			continue
		}
		hand := app.BuildHandSnapshot(r.table, seat)
		c.Send(ServerMessage{Type: MsgYourHand, Hand: &hand})
	}
}

func (r *Room) broadcast(msg ServerMessage) {
	for _, c := range r.clients {
		c.Send(msg)
	}
}

func (r *Room) record(ctx context.Context, result app.MatchOverPayload) {
	r.logger.Info("match over",
		zap.String("winner", result.WinnerLabel),
		zap.Int("scoreNS", result.Scores.NS),
		zap.Int("scoreEW", result.Scores.EW),
		zap.Int("hands", result.Hands))
	if r.recorder == nil {
		return
	}

	rec := ports.MatchRecord{
		MatchID:    newMatchID(),
		TableID:    r.table.ID,
		Variant:    string(r.table.Variant),
		Players:    r.table.Seats,
		TeamNS:     result.Teams.NS,
		TeamEW:     result.Teams.EW,
		ScoreNS:    result.Scores.NS,
		ScoreEW:    result.Scores.EW,
		Winner:     string(result.WinnerTeam),
		Hands:      result.Hands,
		FinishedAt: time.Now(),
	}
	for seat := range r.table.Seats {
		rec.Names[seat] = r.table.Name(seat)
	}

	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := r.recorder.RecordMatch(ctx, rec); err != nil {
		r.logger.Error("failed to record match", zap.String("match", rec.MatchID), zap.Error(err))
	}
}

func (r *Room) refreshInfo() {
	info := RoomInfo{
		Code:    r.Code,
		Variant: r.table.Variant,
		Players: r.table.Occupied(),
		Open:    r.table.OpenSeats(),
		Started: r.table.Started(),
	}
	r.mu.Lock()
	r.info = info
	r.mu.Unlock()
}

func commandName(cmd app.Command) string {
	switch cmd.(type) {
	case app.JoinCommand:
		return MsgJoinRoom
	case app.LeaveCommand:
		return MsgLeaveRoom
	case app.StartCommand:
		return MsgStart
	case app.BidCommand:
		return MsgBid
	case app.PlayCardCommand:
		return MsgPlayCard
	}
	return "unknown"
}
