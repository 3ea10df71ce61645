package room_test

import (
	"encoding/json"
	"testing"
	"time"

	"pokerroom-service/internal/service/room"
	appErr "pokerroom-service/pkg/errors"
)

func TestStartRequiresTwoPlayers(t *testing.T) {
	rt := newRoom(t, 1, room.Options{})

	if err := rt.Start(); err != appErr.ErrInsufficientPlayers {
		t.Fatalf("expected ErrInsufficientPlayers, got %v", err)
	}
	if rt.Status() != room.GameWaiting {
		t.Fatalf("failed start must leave the room waiting")
	}
}

func TestStartResetsHandState(t *testing.T) {
	rt := newRoom(t, 3, room.Options{})
	startWithBigBlind(t, rt, "p1")

	// dirty the state mid-hand
	if err := rt.PlaceBet("p1", room.ActionBet, 40); err != nil {
		t.Fatalf("bet failed: %v", err)
	}
	if err := rt.PlaceBet("p2", room.ActionFold, 0); err != nil {
		t.Fatalf("fold failed: %v", err)
	}

	if err := rt.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if rt.Status() != room.GamePlaying || rt.Pot() != 0 || rt.HighestBet() != 0 {
		t.Fatalf("start must zero the hand state")
	}
	bbFound := false
	for _, p := range rt.Players() {
		if p.Role == room.RoleDealer {
			continue
		}
		if p.Status != room.StatusActive || p.RoundBet != 0 || p.TotalBet != 0 {
			t.Fatalf("player not reset: %+v", p)
		}
		if p.ID == rt.BigBlindID() {
			bbFound = true
		}
	}
	if !bbFound {
		t.Fatalf("big blind %q is not one of the players", rt.BigBlindID())
	}
	idx := rt.TurnIndex()
	if idx < 0 || rt.Players()[idx].ID != rt.BigBlindID() {
		t.Fatalf("turn must open on the big blind")
	}
}

func TestUpdateCardIsDisplayOnly(t *testing.T) {
	rt := newRoom(t, 2, room.Options{})
	startWithBigBlind(t, rt, "p1")
	if err := rt.PlaceBet("p1", room.ActionBet, 25); err != nil {
		t.Fatalf("bet failed: %v", err)
	}

	ch := make(chan room.OutgoingMessage, 64)
	rt.Subscribe("p2", ch)
	drainFor(t, ch, room.EventBoard) // the snapshot pushed at subscribe time

	if err := rt.UpdateCard(2, json.RawMessage(`"KH"`)); err != nil {
		t.Fatalf("update card failed: %v", err)
	}
	msg := drainFor(t, ch, room.EventBoard)
	board := msg.Data.([]json.RawMessage)
	if len(board) != room.CommunityCardSlots || string(board[2]) != `"KH"` {
		t.Fatalf("unexpected board: %v", board)
	}
	if rt.Pot() != 25 || rt.HighestBet() != 25 {
		t.Fatalf("board updates must not touch betting state")
	}

	if err := rt.UpdateCard(5, json.RawMessage(`"AS"`)); err != appErr.ErrInvalidCardSlot {
		t.Fatalf("expected ErrInvalidCardSlot, got %v", err)
	}
}

func TestEndGamePackagesResult(t *testing.T) {
	rt := newRoom(t, 2, room.Options{})
	startWithBigBlind(t, rt, "p1")
	if err := rt.PlaceBet("p1", room.ActionBet, 70); err != nil {
		t.Fatalf("bet failed: %v", err)
	}

	ch := make(chan room.OutgoingMessage, 64)
	rt.Subscribe("p2", ch)

	if err := rt.EndGame("p1"); err != nil {
		t.Fatalf("end game failed: %v", err)
	}
	msg := drainFor(t, ch, room.EventGameOver)
	payload := msg.Data.(room.GameOverPayload)
	if payload.WinnerID != "p1" || payload.Pot != 70 || len(payload.PlayersData) != 3 {
		t.Fatalf("unexpected game over payload: %+v", payload)
	}
	// end does not settle anything itself
	if rt.Pot() != 70 || rt.Status() != room.GamePlaying {
		t.Fatalf("end game must not mutate room state")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	rt := newRoom(t, 2, room.Options{})
	startWithBigBlind(t, rt, "p1")
	if err := rt.PlaceBet("p1", room.ActionBet, 10); err != nil {
		t.Fatalf("bet failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := rt.Reset(); err != nil {
			t.Fatalf("reset %d failed: %v", i, err)
		}
		if rt.Status() != room.GameWaiting || rt.Pot() != 0 || rt.HighestBet() != 0 {
			t.Fatalf("reset %d left dirty state", i)
		}
	}
	// roster and fold statuses survive a reset
	if len(rt.Players()) != 3 {
		t.Fatalf("reset must not clear the roster")
	}
}

type recordedHand struct {
	roomID   string
	winnerID string
	pot      int64
	players  json.RawMessage
}

type recordedAction struct {
	playerID string
	action   room.Action
	amount   int64
	potAfter int64
}

type fakeJournal struct {
	hands   chan recordedHand
	actions chan recordedAction
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{
		hands:   make(chan recordedHand, 8),
		actions: make(chan recordedAction, 8),
	}
}

func (j *fakeJournal) RecordAction(roomID, playerID string, action room.Action, amount, potAfter int64) {
	j.actions <- recordedAction{playerID: playerID, action: action, amount: amount, potAfter: potAfter}
}

func (j *fakeJournal) RecordHand(roomID, winnerID string, pot int64, players json.RawMessage, startedAt, endedAt time.Time) {
	j.hands <- recordedHand{roomID: roomID, winnerID: winnerID, pot: pot, players: players}
}

func TestPlayJournalsActionsAndHands(t *testing.T) {
	journal := newFakeJournal()
	svc := room.NewService(journal, nil, room.Options{})
	rt, err := svc.Create("host", "Dealer")
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	for _, id := range []string{"p1", "p2"} {
		if err := rt.Join(id, id); err != nil {
			t.Fatalf("join failed: %v", err)
		}
	}
	startWithBigBlind(t, rt, "p1")

	if err := rt.PlaceBet("p1", room.ActionBet, 15); err != nil {
		t.Fatalf("bet failed: %v", err)
	}
	select {
	case rec := <-journal.actions:
		if rec.playerID != "p1" || rec.action != room.ActionBet || rec.amount != 15 || rec.potAfter != 15 {
			t.Fatalf("unexpected action record: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatalf("action was never journaled")
	}

	if err := rt.EndGame("p1"); err != nil {
		t.Fatalf("end game failed: %v", err)
	}
	select {
	case rec := <-journal.hands:
		if rec.roomID != rt.ID() || rec.winnerID != "p1" || rec.pot != 15 {
			t.Fatalf("unexpected hand record: %+v", rec)
		}
		var players []room.Player
		if err := json.Unmarshal(rec.players, &players); err != nil || len(players) != 3 {
			t.Fatalf("bad roster snapshot: %v %s", err, rec.players)
		}
	case <-time.After(time.Second):
		t.Fatalf("hand was never journaled")
	}
}
