package ws

import (
	"encoding/json"
	"time"

	"pokerroom-service/internal/service/room"
	appErr "pokerroom-service/pkg/errors"
	"pokerroom-service/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readDeadline  = 60 * time.Second
	sendQueueSize = 16
)

type client struct {
	conn     *websocket.Conn
	playerID string
	name     string
	rooms    *room.Service

	rt        *room.Runtime
	send      chan room.OutgoingMessage
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, playerID, name string, rooms *room.Service) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})
	return &client{
		conn:      conn,
		playerID:  playerID,
		name:      name,
		rooms:     rooms,
		send:      make(chan room.OutgoingMessage, sendQueueSize),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run() {
	go c.writePump()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		if c.rt != nil {
			c.rt.Unsubscribe(c.playerID)
		}
		close(c.send)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("playerID", c.playerID))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.sendError("invalid payload")
			continue
		}
		if incoming.Type == "" {
			continue
		}

		if err := c.handleEvent(incoming.Type, incoming.Data); err != nil {
			c.sendError(err.Error())
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("playerID", c.playerID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (c *client) handleEvent(eventType string, data json.RawMessage) error {
	switch eventType {
	case "create_room":
		return c.handleCreateRoom(data)
	case "join_room":
		return c.handleJoinRoom(data)
	case "kick_player":
		return c.handleKickPlayer(data)
	case "start_game":
		return c.handleStartGame(data)
	case "place_bet":
		return c.handlePlaceBet(data)
	case "update_card":
		return c.handleUpdateCard(data)
	case "end_game":
		return c.handleEndGame(data)
	case "reset_game":
		return c.handleResetGame(data)
	case "ping":
		c.enqueue(room.OutgoingMessage{Type: room.EventPong, Data: map[string]string{"message": "pong"}})
		return nil
	default:
		return appErr.ErrInvalidAction
	}
}

func (c *client) handleCreateRoom(data json.RawMessage) error {
	if c.rt != nil {
		return appErr.ErrAlreadyInRoom
	}
	var payload struct {
		Name string `json:"name"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrInvalidAction
		}
	}
	name := payload.Name
	if name == "" {
		name = c.name
	}

	rt, err := c.rooms.Create(c.playerID, name)
	if err != nil {
		return err
	}
	c.attach(rt)
	rt.Reply(c.playerID, room.EventRoomCreated, map[string]interface{}{
		"roomId": rt.ID(),
		"isHost": true,
	})
	return nil
}

func (c *client) handleJoinRoom(data json.RawMessage) error {
	if c.rt != nil {
		return appErr.ErrAlreadyInRoom
	}
	var payload struct {
		RoomID string `json:"roomId"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return appErr.ErrInvalidAction
	}
	name := payload.Name
	if name == "" {
		name = c.name
	}

	rt, err := c.rooms.Join(payload.RoomID, c.playerID, name)
	if err != nil {
		return err
	}
	c.attach(rt)
	rt.Reply(c.playerID, room.EventRoomJoined, map[string]interface{}{
		"roomId": rt.ID(),
		"isHost": false,
	})
	return nil
}

func (c *client) handleKickPlayer(data json.RawMessage) error {
	var payload struct {
		RoomID   string `json:"roomId"`
		TargetID string `json:"targetId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return appErr.ErrInvalidAction
	}
	rt, err := c.currentRoom(payload.RoomID)
	if err != nil {
		return err
	}
	return rt.Kick(c.playerID, payload.TargetID)
}

func (c *client) handleStartGame(data json.RawMessage) error {
	var payload struct {
		RoomID string `json:"roomId"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrInvalidAction
		}
	}
	rt, err := c.currentRoom(payload.RoomID)
	if err != nil {
		return err
	}
	return rt.Start()
}

func (c *client) handlePlaceBet(data json.RawMessage) error {
	var payload struct {
		RoomID string `json:"roomId"`
		Action string `json:"action"`
		Amount int64  `json:"amount"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return appErr.ErrInvalidAction
	}
	rt, err := c.currentRoom(payload.RoomID)
	if err != nil {
		return err
	}
	return rt.PlaceBet(c.playerID, room.Action(payload.Action), payload.Amount)
}

func (c *client) handleUpdateCard(data json.RawMessage) error {
	var payload struct {
		RoomID    string          `json:"roomId"`
		CardIndex int             `json:"cardIndex"`
		CardData  json.RawMessage `json:"cardData"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return appErr.ErrInvalidAction
	}
	rt, err := c.currentRoom(payload.RoomID)
	if err != nil {
		return err
	}
	return rt.UpdateCard(payload.CardIndex, payload.CardData)
}

func (c *client) handleEndGame(data json.RawMessage) error {
	var payload struct {
		RoomID   string `json:"roomId"`
		WinnerID string `json:"winnerId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return appErr.ErrInvalidAction
	}
	rt, err := c.currentRoom(payload.RoomID)
	if err != nil {
		return err
	}
	return rt.EndGame(payload.WinnerID)
}

func (c *client) handleResetGame(data json.RawMessage) error {
	var payload struct {
		RoomID string `json:"roomId"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			return appErr.ErrInvalidAction
		}
	}
	rt, err := c.currentRoom(payload.RoomID)
	if err != nil {
		return err
	}
	return rt.Reset()
}

func (c *client) attach(rt *room.Runtime) {
	c.rt = rt
	rt.Subscribe(c.playerID, c.send)
}

// currentRoom resolves the room an event addresses. A roomId in the payload
// must match the room this connection is attached to.
func (c *client) currentRoom(roomID string) (*room.Runtime, error) {
	if c.rt == nil {
		return nil, appErr.ErrNotInRoom
	}
	if roomID != "" && roomID != c.rt.ID() {
		return nil, appErr.ErrRoomNotFound
	}
	return c.rt, nil
}

func (c *client) sendError(msg string) {
	c.enqueue(room.OutgoingMessage{
		Type: room.EventError,
		Data: map[string]string{"message": msg},
	})
}

func (c *client) enqueue(msg room.OutgoingMessage) {
	select {
	case c.send <- msg:
	default:
		logger.Log.Warn("ws send queue full", zap.String("playerID", c.playerID))
	}
}
