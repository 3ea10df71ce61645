package room

import (
	"fmt"
	"time"

	appErr "pokerroom-service/pkg/errors"
	"pokerroom-service/pkg/logger"

	"go.uber.org/zap"
)

// PlaceBet applies one betting action by playerID. Validation happens before
// any mutation; a rejected action leaves the room untouched.
func (rt *Runtime) PlaceBet(playerID string, action Action, amount int64) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.applyActionLocked(playerID, action, amount, "")
}

func (rt *Runtime) applyActionLocked(playerID string, action Action, amount int64, msgSuffix string) error {
	if rt.gameStatus != GamePlaying {
		return appErr.ErrGameNotStarted
	}
	if rt.turnIndex < 0 || len(rt.players) == 0 {
		return appErr.ErrOutOfTurn
	}
	// a kick may have shrunk the roster under a stale index
	if rt.turnIndex >= len(rt.players) {
		rt.turnIndex = 0
	}
	actor := &rt.players[rt.turnIndex]
	if actor.ID != playerID {
		return appErr.ErrOutOfTurn
	}

	var msg string
	var recorded int64
	switch action {
	case ActionFold:
		actor.Status = StatusFolded
		msg = fmt.Sprintf("%s folds", actor.Name)
	case ActionCheck:
		msg = fmt.Sprintf("%s checks", actor.Name)
	case ActionCall:
		// the engine recomputes the call amount; caller input is ignored
		diff := rt.highestBet - actor.RoundBet
		if diff < 0 {
			diff = 0
		}
		if diff > 0 {
			rt.pot += diff
			actor.RoundBet += diff
			actor.TotalBet += diff
		}
		recorded = diff
		msg = fmt.Sprintf("%s calls %d", actor.Name, diff)
	case ActionBet:
		if amount < 0 {
			return appErr.ErrInvalidAction
		}
		rt.pot += amount
		actor.RoundBet += amount
		actor.TotalBet += amount
		if actor.RoundBet > rt.highestBet {
			rt.highestBet = actor.RoundBet
		}
		recorded = amount
		msg = fmt.Sprintf("%s bets %d", actor.Name, amount)
	default:
		return appErr.ErrInvalidAction
	}
	msg += msgSuffix

	rt.actionsCount++

	next := rt.nextTurnLocked(rt.turnIndex)
	var currentTurn *string
	if next != -1 {
		rt.turnIndex = next
		id := rt.players[next].ID
		currentTurn = &id
	}

	roundComplete := false
	if active := rt.activeCountLocked(); rt.actionsCount >= active {
		roundComplete = true
		rt.actionsCount = 0
	}

	if rt.opts.TurnSeconds > 0 {
		if next != -1 {
			rt.resetTurnTimerLocked()
		} else {
			rt.cancelTimerLocked()
		}
	}

	if rt.journal != nil {
		go rt.journal.RecordAction(rt.id, playerID, action, recorded, rt.pot)
	}

	rt.broadcastLocked(EventGameState, GameStatePayload{
		Pot:           rt.pot,
		LastActionMsg: msg,
		CurrentTurn:   currentTurn,
		HighestBet:    rt.highestBet,
		RoundComplete: roundComplete,
		PlayersData:   rt.playersSnapshotLocked(),
	})
	return nil
}

// nextTurnLocked finds the next seat eligible to act, scanning at most one
// full rotation from (from+1). Returns -1 when no seat qualifies.
func (rt *Runtime) nextTurnLocked(from int) int {
	n := len(rt.players)
	if n == 0 {
		return -1
	}
	idx := (from + 1) % n
	for steps := 0; steps < n; steps++ {
		p := rt.players[idx]
		if p.Role == RolePlayer && p.Status == StatusActive {
			return idx
		}
		idx = (idx + 1) % n
	}
	return -1
}

// activeCountLocked counts seats still in the hand: non-dealer and not folded.
func (rt *Runtime) activeCountLocked() int {
	count := 0
	for i := range rt.players {
		if rt.players[i].Role == RolePlayer && rt.players[i].Status != StatusFolded {
			count++
		}
	}
	return count
}

func (rt *Runtime) resetTurnTimerLocked() {
	rt.cancelTimerLocked()
	d := time.Duration(rt.opts.TurnSeconds) * time.Second
	rt.timer = time.AfterFunc(d, rt.onTurnTimeout)
}

func (rt *Runtime) cancelTimerLocked() {
	if rt.timer != nil {
		rt.timer.Stop()
		rt.timer = nil
	}
}

// onTurnTimeout folds the current actor in their stead.
func (rt *Runtime) onTurnTimeout() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.gameStatus != GamePlaying {
		return
	}
	if rt.turnIndex < 0 || rt.turnIndex >= len(rt.players) {
		return
	}
	actorID := rt.players[rt.turnIndex].ID
	logger.Log.Warn("turn timeout auto-fold",
		zap.String("roomID", rt.id),
		zap.String("playerID", actorID),
	)
	if err := rt.applyActionLocked(actorID, ActionFold, 0, " (timeout)"); err != nil {
		logger.Log.Warn("auto-fold failed", zap.String("roomID", rt.id), zap.Error(err))
	}
}
