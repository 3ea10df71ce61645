package room

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleDealer Role = "dealer"
	RolePlayer Role = "player"
)

type PlayerStatus string

const (
	StatusDealerOnly PlayerStatus = "dealer_only"
	StatusActive     PlayerStatus = "active"
	StatusFolded     PlayerStatus = "folded"
)

type GameStatus string

const (
	GameWaiting GameStatus = "waiting"
	GamePlaying GameStatus = "playing"
)

// CommunityCardSlots is the fixed board size. Card contents are opaque
// tokens owned by the client; the server only stores and rebroadcasts them.
const CommunityCardSlots = 5

type Player struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Role     Role         `json:"role"`
	Status   PlayerStatus `json:"status"`
	Chip     int64        `json:"chip"`
	RoundBet int64        `json:"roundBet"`
	TotalBet int64        `json:"totalBet"`
}

type Action string

const (
	ActionFold  Action = "fold"
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionBet   Action = "bet"
)

// Outbound event types. Names follow the client protocol.
const (
	EventRoomCreated  = "room_created"
	EventRoomJoined   = "room_joined"
	EventPlayers      = "update_players"
	EventKicked       = "kicked"
	EventGameStarted  = "game_started"
	EventGameState    = "update_game_state"
	EventBoard        = "update_board"
	EventGameOver     = "game_over"
	EventResetToLobby = "reset_to_lobby"
	EventError        = "error"
	EventPong         = "pong"
)

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

// GameStatePayload is broadcast after every betting action.
type GameStatePayload struct {
	Pot           int64    `json:"pot"`
	LastActionMsg string   `json:"lastActionMsg"`
	CurrentTurn   *string  `json:"currentTurn"`
	HighestBet    int64    `json:"highestBet"`
	RoundComplete bool     `json:"roundComplete"`
	PlayersData   []Player `json:"playersData"`
}

type GameStartedPayload struct {
	BigBlindID string   `json:"bigBlindId"`
	Players    []Player `json:"players"`
	TurnIndex  int      `json:"turnIndex"`
}

type GameOverPayload struct {
	WinnerID    string   `json:"winnerId"`
	Pot         int64    `json:"pot"`
	PlayersData []Player `json:"playersData"`
}

// Journal receives best-effort records of play. Implementations must not
// block the caller; failures are theirs to log.
type Journal interface {
	RecordAction(roomID, playerID string, action Action, amount, potAfter int64)
	RecordHand(roomID, winnerID string, pot int64, players json.RawMessage, startedAt, endedAt time.Time)
}

// Directory is the live-room index shown in the lobby. Rooms keep working
// when it is unavailable.
type Directory interface {
	Claim(roomID string) bool
	Publish(roomID, hostName string, playerCount int, status string)
}

type Options struct {
	RoomIDLength int
	MaxPlayers   int
	TurnSeconds  int // 0 disables the turn timer
}

func (o Options) withDefaults() Options {
	if o.RoomIDLength <= 0 {
		o.RoomIDLength = 4
	}
	if o.MaxPlayers <= 0 {
		o.MaxPlayers = 9
	}
	return o
}
