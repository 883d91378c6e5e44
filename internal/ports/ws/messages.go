package ws

import "coinche/internal/app"

// Client message types.
const (
	MsgCreateRoom = "create_room"
	MsgJoinRoom   = "join_room"
	MsgLeaveRoom  = "leave_room"
	MsgListRooms  = "list_rooms"
	MsgStart      = "start"
	MsgBid        = "bid"
	MsgPlayCard   = "play_card"
)

// Server message types.
const (
	MsgRoomsList  = "rooms_list"
	MsgRoomJoined = "room_joined"
	MsgTableState = "table_state"
	MsgYourHand   = "your_hand"
	MsgEvent      = "event"
	MsgMatchOver  = "match_over"
	MsgError      = "error"
)

// ClientMessage is the envelope every client frame is decoded into.
type ClientMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Variant string `json:"variant,omitempty"`
	Action  string `json:"action,omitempty"`
	Value   int    `json:"value,omitempty"`
	Trump   string `json:"trump,omitempty"`
	Card    string `json:"card,omitempty"`
}

type ServerMessage struct {
	Type   string                `json:"type"`
	Code   string                `json:"code,omitempty"`
	Rooms  []RoomInfo            `json:"rooms,omitempty"`
	State  *app.TableSnapshot    `json:"state,omitempty"`
	Hand   *app.HandSnapshot     `json:"hand,omitempty"`
	Event  *app.Event            `json:"event,omitempty"`
	Result *app.MatchOverPayload `json:"result,omitempty"`
	Error  *ErrorView            `json:"error,omitempty"`
}

type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomInfo is the lobby listing entry of a room.
type RoomInfo struct {
	Code    string      `json:"code"`
	Variant app.Variant `json:"variant"`
	Players int         `json:"players"`
	Open    int         `json:"open"`
	Started bool        `json:"started"`
}

func errorMessage(code, message string) ServerMessage {
	return ServerMessage{Type: MsgError, Error: &ErrorView{Code: code, Message: message}}
}
