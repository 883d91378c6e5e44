package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"coinche/internal/app"
	"coinche/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer     = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection. Only the read loop touches room.
type Client struct {
	Identity

	hub    *Hub
	conn   *websocket.Conn
	send   chan ServerMessage
	logger *zap.Logger
	room   *Room
	closed atomic.Bool
}

func newClient(hub *Hub, id Identity, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		Identity: id,
		hub:      hub,
		conn:     conn,
		send:     make(chan ServerMessage, sendBuffer),
		logger:   logger.With(zap.String("user", id.UserID)),
	}
}

// Send queues msg without blocking; a full buffer drops the message.
func (c *Client) Send(msg ServerMessage) {
	if c.closed.Load() {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("ws client channel full", zap.String("type", msg.Type))
	}
}

// readPump handles client frames until the connection drops.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("ws read error", zap.Error(err))
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.Send(errorMessage("bad_request", "invalid json"))
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("ws write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close leaves the current room as a disconnect and stops the writer.
func (c *Client) close() {
	if c.room != nil {
		_ = c.room.Submit(c, app.LeaveCommand{UserID: c.UserID, Disconnect: true})
		c.room = nil
	}
	if c.closed.CompareAndSwap(false, true) {
		close(c.send)
	}
}

func (c *Client) handle(msg ClientMessage) {
	switch msg.Type {
	case MsgListRooms:
		c.Send(ServerMessage{Type: MsgRoomsList, Rooms: c.hub.Rooms()})
	case MsgCreateRoom:
		if c.room != nil {
			c.Send(errorMessage("already_in_room", "leave your current room first"))
			return
		}
		c.joinRoom(c.hub.CreateRoom(app.ParseVariant(msg.Variant)))
	case MsgJoinRoom:
		if c.room != nil {
			c.Send(errorMessage("already_in_room", "leave your current room first"))
			return
		}
		room, ok := c.hub.Room(msg.Code)
		if !ok {
			c.Send(errorMessage("room_not_found", fmt.Sprintf("no room %q", msg.Code)))
			return
		}
		c.joinRoom(room)
	case MsgLeaveRoom:
		if c.room == nil {
			c.Send(errorMessage("not_in_room", "join a room first"))
			return
		}
		if err := c.submit(app.LeaveCommand{UserID: c.UserID}); err == nil {
			c.room = nil
		}
	case MsgStart, MsgBid, MsgPlayCard:
		if c.room == nil {
			c.Send(errorMessage("not_in_room", "join a room first"))
			return
		}
		cmd, err := c.command(msg)
		if err != nil {
			c.Send(errorMessage("bad_request", err.Error()))
			return
		}
		_ = c.submit(cmd)
	default:
		c.Send(errorMessage("unknown_type", "unknown message type"))
	}
}

func (c *Client) joinRoom(room *Room) {
	err := room.Submit(c, app.JoinCommand{UserID: c.UserID, Name: c.Name})
	if err != nil {
		c.reportError(err)
		return
	}
	c.room = room
}

func (c *Client) submit(cmd app.Command) error {
	err := c.room.Submit(c, cmd)
	if errors.Is(err, ErrRoomClosed) {
		c.room = nil
	}
	if err != nil {
		c.reportError(err)
	}
	return err
}

func (c *Client) reportError(err error) {
	if errors.Is(err, ErrRoomClosed) {
		c.Send(errorMessage("room_closed", err.Error()))
		return
	}
	c.Send(errorMessage(app.ErrorCode(err), err.Error()))
}

// command turns a game frame into a table command for this client.
func (c *Client) command(msg ClientMessage) (app.Command, error) {
	switch msg.Type {
	case MsgStart:
		return app.StartCommand{UserID: c.UserID}, nil
	case MsgBid:
		cmd := app.BidCommand{UserID: c.UserID, Action: domain.BidAction(msg.Action), Value: msg.Value}
		if msg.Trump != "" {
			suit, err := domain.ParseSuit(msg.Trump)
			if err != nil {
				return nil, err
			}
			cmd.Trump = suit
		}
		return cmd, nil
	case MsgPlayCard:
		card, err := domain.ParseCard(msg.Card)
		if err != nil {
			return nil, err
		}
		return app.PlayCardCommand{UserID: c.UserID, Card: card}, nil
	}
	return nil, fmt.Errorf("unsupported message %q", msg.Type)
}
