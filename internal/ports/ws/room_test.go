package ws

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"coinche/internal/app"
	"coinche/internal/config"
	"coinche/internal/domain"
	"coinche/internal/ports"

	"go.uber.org/zap"
)

type recordingRecorder struct {
	records []ports.MatchRecord
}

func (r *recordingRecorder) RecordMatch(ctx context.Context, rec ports.MatchRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, config.Defaults(), nil, zap.NewNop())
}

func testClient(h *Hub, id string) *Client {
	return newClient(h, Identity{UserID: id, Name: strings.ToUpper(id)}, nil, zap.NewNop())
}

func expect(t *testing.T, c *Client, typ string) ServerMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-c.send:
			if msg.Type == typ {
				return msg
			}
		case <-deadline:
			t.Fatalf("%s: no %s message", c.UserID, typ)
		}
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func seatFour(t *testing.T, h *Hub) (*Room, []*Client) {
	t.Helper()
	room := h.CreateRoom(app.VariantCoinche)
	clients := make([]*Client, 4)
	for i := range clients {
		clients[i] = testClient(h, "u"+string(rune('0'+i)))
		clients[i].joinRoom(room)
		if clients[i].room != room {
			t.Fatalf("client %d not seated", i)
		}
		expect(t, clients[i], MsgRoomJoined)
	}
	return room, clients
}

func TestHubCreatesShortCodes(t *testing.T) {
	h := newTestHub(t)
	room := h.CreateRoom(app.VariantBelote)
	if len(room.Code) != roomCodeLen || room.Code != strings.ToUpper(room.Code) {
		t.Fatalf("code = %q", room.Code)
	}
	got, ok := h.Room(strings.ToLower(room.Code))
	if !ok || got != room {
		t.Fatal("lookup should be case-insensitive")
	}
	rooms := h.Rooms()
	if len(rooms) != 1 || rooms[0].Variant != app.VariantBelote || rooms[0].Open != 4 {
		t.Fatalf("rooms = %+v", rooms)
	}
}

func TestRoomStartDealsPrivateHands(t *testing.T) {
	h := newTestHub(t)
	room, clients := seatFour(t, h)
	for _, c := range clients {
		drain(c)
	}

	if err := room.Submit(clients[0], app.StartCommand{UserID: "u0"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, c := range clients {
		hand := expect(t, c, MsgYourHand).Hand
		if hand.Seat != i || len(hand.Hand) != domain.HandSize {
			t.Fatalf("seat %d hand = %+v", i, hand)
		}
	}
	if info := room.Info(); !info.Started || info.Players != 4 || info.Open != 0 {
		t.Fatalf("info = %+v", info)
	}
}

func TestRoomRejectsWithoutSideEffects(t *testing.T) {
	h := newTestHub(t)
	room, clients := seatFour(t, h)
	for _, c := range clients {
		drain(c)
	}

	err := room.Submit(clients[1], app.StartCommand{UserID: "u1"})
	if !errors.Is(err, app.ErrNotHost) {
		t.Fatalf("err = %v, want ErrNotHost", err)
	}
	select {
	case msg := <-clients[0].send:
		t.Fatalf("unexpected broadcast %s", msg.Type)
	default:
	}
}

func TestClientHandleErrors(t *testing.T) {
	h := newTestHub(t)
	c := testClient(h, "u0")

	tests := []struct {
		name string
		msg  ClientMessage
		code string
	}{
		{name: "StartOutsideRoom", msg: ClientMessage{Type: MsgStart}, code: "not_in_room"},
		{name: "LeaveOutsideRoom", msg: ClientMessage{Type: MsgLeaveRoom}, code: "not_in_room"},
		{name: "UnknownRoom", msg: ClientMessage{Type: MsgJoinRoom, Code: "ZZZZ"}, code: "room_not_found"},
		{name: "UnknownType", msg: ClientMessage{Type: "dance"}, code: "unknown_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drain(c)
			c.handle(tt.msg)
			if got := expect(t, c, MsgError).Error.Code; got != tt.code {
				t.Fatalf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestClientCreateRoomAndBadCard(t *testing.T) {
	h := newTestHub(t)
	c := testClient(h, "u0")

	c.handle(ClientMessage{Type: MsgCreateRoom, Variant: "coinche"})
	joined := expect(t, c, MsgRoomJoined)
	if c.room == nil || joined.Code != c.room.Code {
		t.Fatalf("joined = %+v", joined)
	}
	state := expect(t, c, MsgTableState).State
	if state.HostSeat != 0 || len(state.Seats) != 1 || state.Seats[0].Name != "U0" {
		t.Fatalf("state = %+v", state)
	}

	c.handle(ClientMessage{Type: MsgCreateRoom})
	if got := expect(t, c, MsgError).Error.Code; got != "already_in_room" {
		t.Fatalf("code = %s", got)
	}

	c.handle(ClientMessage{Type: MsgPlayCard, Card: "1X"})
	if got := expect(t, c, MsgError).Error.Code; got != "bad_request" {
		t.Fatalf("code = %s", got)
	}

	c.handle(ClientMessage{Type: MsgStart})
	if got := expect(t, c, MsgError).Error.Code; got != "need_four_players" {
		t.Fatalf("code = %s", got)
	}
}

func TestRoomClosesWhenEmpty(t *testing.T) {
	h := newTestHub(t)
	c := testClient(h, "u0")
	c.handle(ClientMessage{Type: MsgCreateRoom})
	room := c.room
	if room == nil {
		t.Fatal("room not joined")
	}

	c.handle(ClientMessage{Type: MsgLeaveRoom})
	if c.room != nil {
		t.Fatal("client still bound to room")
	}
	select {
	case <-room.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("room did not stop")
	}
	if _, ok := h.Room(room.Code); ok {
		t.Fatal("room still registered")
	}
	if err := room.Submit(c, app.JoinCommand{UserID: "u1"}); !errors.Is(err, ErrRoomClosed) {
		t.Fatalf("err = %v, want ErrRoomClosed", err)
	}
}

func TestClientCloseLeavesRoom(t *testing.T) {
	h := newTestHub(t)
	room, clients := seatFour(t, h)
	if err := room.Submit(clients[0], app.StartCommand{UserID: "u0"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	drain(clients[0])

	clients[2].close()

	state := expect(t, clients[0], MsgTableState).State
	if state.Phase != app.PhaseLobby || len(state.Seats) != 3 {
		t.Fatalf("state after disconnect = %+v", state)
	}
	if info := room.Info(); info.Started || info.Open != 1 {
		t.Fatalf("info = %+v", info)
	}
	clients[2].Send(ServerMessage{Type: MsgTableState})
}

func TestRoomDispatchKeepsPrivateEventsPrivate(t *testing.T) {
	rec := &recordingRecorder{}
	room := newRoom("ABCD", app.VariantCoinche, config.Defaults(), 1, rec, zap.NewNop(), nil)
	h := newTestHub(t)
	a, b := testClient(h, "a"), testClient(h, "b")
	room.clients["a"] = a
	room.clients["b"] = b
	room.table.Seats = [4]string{"a", "b", "", ""}

	room.dispatch(context.Background(), []app.Event{
		{Kind: app.EventHandDealt, Recipients: []string{"a"}},
		{Kind: app.EventMatchOver, Payload: app.MatchOverPayload{WinnerTeam: domain.TeamNS, Scores: domain.TeamScore{NS: 1600}, Hands: 9}},
	})

	if ev := expect(t, a, MsgEvent).Event; ev.Kind != app.EventHandDealt {
		t.Fatalf("a first event = %s", ev.Kind)
	}
	if ev := expect(t, b, MsgEvent).Event; ev.Kind != app.EventMatchOver {
		t.Fatalf("b saw %s, private event leaked", ev.Kind)
	}
	if res := expect(t, b, MsgMatchOver).Result; res.Scores.NS != 1600 {
		t.Fatalf("result = %+v", res)
	}
	if len(rec.records) != 1 {
		t.Fatalf("records = %d", len(rec.records))
	}
	if got := rec.records[0]; got.TableID != "ABCD" || got.Winner != "NS" || got.Players[1] != "b" || got.MatchID == "" {
		t.Fatalf("record = %+v", got)
	}
}
