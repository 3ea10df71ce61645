package room

import (
	"encoding/json"
	"math/rand"
	"time"

	appErr "pokerroom-service/pkg/errors"
	"pokerroom-service/pkg/logger"

	"go.uber.org/zap"
)

// Start deals in everyone with the player role, picks a random big blind to
// open the action, and moves the room to the playing state. Requires at
// least two non-dealer players.
func (rt *Runtime) Start() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	candidates := make([]int, 0, len(rt.players))
	for i := range rt.players {
		if rt.players[i].Role == RolePlayer {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) < 2 {
		return appErr.ErrInsufficientPlayers
	}

	for _, i := range candidates {
		rt.players[i].Status = StatusActive
		rt.players[i].RoundBet = 0
		rt.players[i].TotalBet = 0
	}

	bbIndex := candidates[rand.Intn(len(candidates))]
	rt.bigBlindID = rt.players[bbIndex].ID
	rt.turnIndex = bbIndex
	rt.gameStatus = GamePlaying
	rt.pot = 0
	rt.highestBet = 0
	rt.actionsCount = 0
	rt.communityCards = make([]json.RawMessage, CommunityCardSlots)
	rt.handStartedAt = time.Now()

	if rt.opts.TurnSeconds > 0 {
		rt.resetTurnTimerLocked()
	}

	rt.broadcastLocked(EventGameStarted, GameStartedPayload{
		BigBlindID: rt.bigBlindID,
		Players:    rt.playersSnapshotLocked(),
		TurnIndex:  rt.turnIndex,
	})
	rt.publishDirectoryLocked()
	return nil
}

// UpdateCard stores an opaque card token in one of the five board slots and
// rebroadcasts the board. Display state only; betting state is untouched.
func (rt *Runtime) UpdateCard(index int, card json.RawMessage) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if index < 0 || index >= CommunityCardSlots {
		return appErr.ErrInvalidCardSlot
	}
	rt.communityCards[index] = card
	rt.broadcastLocked(EventBoard, rt.communityCards)
	return nil
}

// EndGame announces the externally determined winner. Financial state is not
// mutated here; settlement belongs to the client flow.
func (rt *Runtime) EndGame(winnerID string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	players := rt.playersSnapshotLocked()
	rt.broadcastLocked(EventGameOver, GameOverPayload{
		WinnerID:    winnerID,
		Pot:         rt.pot,
		PlayersData: players,
	})

	if rt.journal != nil {
		snapshot, err := json.Marshal(players)
		if err != nil {
			logger.Log.Warn("marshal roster snapshot", zap.String("roomID", rt.id), zap.Error(err))
		} else {
			go rt.journal.RecordHand(rt.id, winnerID, rt.pot, snapshot, rt.handStartedAt, time.Now())
		}
	}
	return nil
}

// Reset returns the room to the lobby. Roster and fold statuses survive; the
// next Start clears them. Safe to call repeatedly.
func (rt *Runtime) Reset() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.pot = 0
	rt.highestBet = 0
	rt.actionsCount = 0
	rt.communityCards = make([]json.RawMessage, CommunityCardSlots)
	rt.gameStatus = GameWaiting
	rt.cancelTimerLocked()

	rt.broadcastLocked(EventResetToLobby, map[string]string{"roomId": rt.id})
	rt.publishDirectoryLocked()
	return nil
}
