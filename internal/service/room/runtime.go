package room

import (
	"encoding/json"
	"sync"
	"time"

	appErr "pokerroom-service/pkg/errors"
	"pokerroom-service/pkg/logger"

	"go.uber.org/zap"
)

// Runtime holds the live state of one room. The mutex is the room's
// serialization point: every operation runs to completion under it before
// the next is admitted.
type Runtime struct {
	id     string
	hostID string

	players        []Player
	pot            int64
	communityCards []json.RawMessage
	gameStatus     GameStatus
	turnIndex      int
	bigBlindID     string
	highestBet     int64
	actionsCount   int

	handStartedAt time.Time
	seq           int64
	subscribers   map[string]chan<- OutgoingMessage
	timer         *time.Timer

	mu sync.Mutex

	opts    Options
	journal Journal
	dir     Directory
}

func newRuntime(id, hostID, hostName string, opts Options, journal Journal, dir Directory) *Runtime {
	rt := &Runtime{
		id:             id,
		hostID:         hostID,
		communityCards: make([]json.RawMessage, CommunityCardSlots),
		gameStatus:     GameWaiting,
		turnIndex:      -1,
		subscribers:    make(map[string]chan<- OutgoingMessage),
		opts:           opts,
		journal:        journal,
		dir:            dir,
	}
	rt.players = append(rt.players, Player{
		ID:     hostID,
		Name:   hostName,
		Role:   RoleDealer,
		Status: StatusDealerOnly,
	})
	return rt
}

func (rt *Runtime) ID() string { return rt.id }

func (rt *Runtime) HostID() string { return rt.hostID }

func (rt *Runtime) Status() GameStatus {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.gameStatus
}

func (rt *Runtime) BigBlindID() string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.bigBlindID
}

// TurnIndex is the current actor's seat, or -1 when no one is to act.
func (rt *Runtime) TurnIndex() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.turnIndex
}

func (rt *Runtime) Pot() int64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.pot
}

func (rt *Runtime) HighestBet() int64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.highestBet
}

// Subscribe registers a delivery channel for playerID and immediately pushes
// the current roster and board so a freshly attached client can render.
func (rt *Runtime) Subscribe(playerID string, ch chan<- OutgoingMessage) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.subscribers[playerID] = ch
	rt.pushLocked(playerID, EventPlayers, rt.playersSnapshotLocked())
	rt.pushLocked(playerID, EventBoard, rt.communityCards)
}

func (rt *Runtime) Unsubscribe(playerID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.dropSubscriberLocked(playerID)
}

// dropSubscriberLocked stops delivery. The channel belongs to the
// subscriber and is never closed here.
func (rt *Runtime) dropSubscriberLocked(playerID string) {
	delete(rt.subscribers, playerID)
}

// Reply pushes a message to a single subscriber.
func (rt *Runtime) Reply(playerID, eventType string, data interface{}) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pushLocked(playerID, eventType, data)
}

// Join appends a new active player at the end of the seating order.
func (rt *Runtime) Join(playerID, name string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if len(rt.players) >= rt.opts.MaxPlayers {
		return appErr.ErrRoomFull
	}
	rt.players = append(rt.players, Player{
		ID:     playerID,
		Name:   name,
		Role:   RolePlayer,
		Status: StatusActive,
	})
	rt.broadcastLocked(EventPlayers, rt.playersSnapshotLocked())
	rt.publishDirectoryLocked()
	return nil
}

// Kick removes targetID from the roster. Host only. The turn pointer is
// re-derived from the acting player's identity, never from the old index.
func (rt *Runtime) Kick(requesterID, targetID string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if requesterID != rt.hostID {
		return appErr.ErrUnauthorized
	}
	removeIdx := rt.indexOfLocked(targetID)
	if removeIdx < 0 {
		return appErr.ErrNotInRoom
	}

	actorID := ""
	if rt.turnIndex >= 0 && rt.turnIndex < len(rt.players) {
		actorID = rt.players[rt.turnIndex].ID
	}

	rt.players = append(rt.players[:removeIdx], rt.players[removeIdx+1:]...)

	switch {
	case actorID == "":
		// no actor before the kick, nothing to re-derive
	case actorID == targetID:
		// the actor was removed; hand the turn to the next eligible seat
		rt.turnIndex = rt.nextTurnLocked(removeIdx - 1)
	default:
		rt.turnIndex = rt.indexOfLocked(actorID)
	}

	rt.pushLocked(targetID, EventKicked, map[string]string{"roomId": rt.id})
	rt.dropSubscriberLocked(targetID)
	rt.broadcastLocked(EventPlayers, rt.playersSnapshotLocked())
	rt.publishDirectoryLocked()
	return nil
}

// Players returns a copy of the roster in seating order.
func (rt *Runtime) Players() []Player {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.playersSnapshotLocked()
}

func (rt *Runtime) playersSnapshotLocked() []Player {
	return append([]Player(nil), rt.players...)
}

func (rt *Runtime) indexOfLocked(playerID string) int {
	for i := range rt.players {
		if rt.players[i].ID == playerID {
			return i
		}
	}
	return -1
}

func (rt *Runtime) playerLocked(playerID string) *Player {
	if i := rt.indexOfLocked(playerID); i >= 0 {
		return &rt.players[i]
	}
	return nil
}

func (rt *Runtime) nextSeqLocked() int64 {
	rt.seq++
	return rt.seq
}

func (rt *Runtime) pushLocked(playerID string, eventType string, data interface{}) {
	ch, ok := rt.subscribers[playerID]
	if !ok {
		return
	}
	msg := OutgoingMessage{Type: eventType, Seq: rt.nextSeqLocked(), Data: data}
	select {
	case ch <- msg:
	default:
		logger.Log.Warn("subscriber channel full",
			zap.String("playerID", playerID),
			zap.String("roomID", rt.id),
		)
	}
}

func (rt *Runtime) broadcastLocked(eventType string, data interface{}) {
	msg := OutgoingMessage{Type: eventType, Seq: rt.nextSeqLocked(), Data: data}
	for pid, ch := range rt.subscribers {
		select {
		case ch <- msg:
		default:
			logger.Log.Warn("subscriber channel full",
				zap.String("playerID", pid),
				zap.String("roomID", rt.id),
			)
		}
	}
}

func (rt *Runtime) publishDirectory() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.publishDirectoryLocked()
}

func (rt *Runtime) publishDirectoryLocked() {
	if rt.dir == nil {
		return
	}
	hostName := ""
	if host := rt.playerLocked(rt.hostID); host != nil {
		hostName = host.Name
	}
	// roster minus the dealer seat
	count := 0
	for i := range rt.players {
		if rt.players[i].Role == RolePlayer {
			count++
		}
	}
	go rt.dir.Publish(rt.id, hostName, count, string(rt.gameStatus))
}
