package errors

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// statuses or websocket error frames.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomIDExhausted     = errors.New("could not allocate a room id")
	ErrRoomFull            = errors.New("room is full")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotInRoom           = errors.New("player not in room")
	ErrAlreadyInRoom       = errors.New("already in a room")
	ErrOutOfTurn           = errors.New("not your turn")
	ErrInvalidAction       = errors.New("invalid action")
	ErrGameNotStarted      = errors.New("game not started")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrInvalidCardSlot     = errors.New("invalid community card slot")
)
