package room_test

import (
	"fmt"
	"os"
	"testing"

	"pokerroom-service/internal/service/room"
	appErr "pokerroom-service/pkg/errors"
	"pokerroom-service/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// newRoom builds a room with a dealer host and n joined players. Player ids
// are "p1".."pn", the host is "host".
func newRoom(t *testing.T, n int, opts room.Options) *room.Runtime {
	t.Helper()

	svc := room.NewService(nil, nil, opts)
	rt, err := svc.Create("host", "Dealer")
	if err != nil {
		t.Fatalf("create room failed: %v", err)
	}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("p%d", i)
		if err := rt.Join(id, fmt.Sprintf("Player %d", i)); err != nil {
			t.Fatalf("join %s failed: %v", id, err)
		}
	}
	return rt
}

// startWithBigBlind restarts the hand until the draw lands on wantID.
func startWithBigBlind(t *testing.T, rt *room.Runtime, wantID string) {
	t.Helper()
	for i := 0; i < 500; i++ {
		if err := rt.Start(); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if rt.BigBlindID() == wantID {
			return
		}
	}
	t.Fatalf("big blind never landed on %s", wantID)
}

// drainFor pops buffered messages until one of the wanted type appears.
func drainFor(t *testing.T, ch chan room.OutgoingMessage, eventType string) room.OutgoingMessage {
	t.Helper()
	for {
		select {
		case msg := <-ch:
			if msg.Type == eventType {
				return msg
			}
		default:
			t.Fatalf("no buffered %s event", eventType)
			return room.OutgoingMessage{}
		}
	}
}

func TestCreateRoomSeatsDealer(t *testing.T) {
	rt := newRoom(t, 0, room.Options{})

	if len(rt.ID()) != 4 {
		t.Fatalf("expected 4-digit room id, got %q", rt.ID())
	}
	players := rt.Players()
	if len(players) != 1 {
		t.Fatalf("expected 1 seat, got %d", len(players))
	}
	host := players[0]
	if host.ID != "host" || host.Role != room.RoleDealer || host.Status != room.StatusDealerOnly {
		t.Fatalf("unexpected dealer seat: %+v", host)
	}
	if rt.Status() != room.GameWaiting || rt.TurnIndex() != -1 {
		t.Fatalf("new room should be waiting with no actor")
	}
}

func TestJoinPreservesSeatingOrder(t *testing.T) {
	rt := newRoom(t, 3, room.Options{})

	players := rt.Players()
	want := []string{"host", "p1", "p2", "p3"}
	for i, id := range want {
		if players[i].ID != id {
			t.Fatalf("seat %d: expected %s, got %s", i, id, players[i].ID)
		}
	}
	for _, p := range players[1:] {
		if p.Role != room.RolePlayer || p.Status != room.StatusActive {
			t.Fatalf("joiner should be an active player: %+v", p)
		}
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	svc := room.NewService(nil, nil, room.Options{})
	if _, err := svc.Create("host", "Dealer"); err != nil {
		t.Fatalf("create room failed: %v", err)
	}

	_, err := svc.Join("0000000", "p1", "Player 1")
	if err != appErr.ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinRoomFull(t *testing.T) {
	rt := newRoom(t, 1, room.Options{MaxPlayers: 2})

	if err := rt.Join("p2", "Player 2"); err != appErr.ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if len(rt.Players()) != 2 {
		t.Fatalf("failed join must not mutate roster")
	}
}

func TestKickRequiresHost(t *testing.T) {
	rt := newRoom(t, 2, room.Options{})

	if err := rt.Kick("p1", "p2"); err != appErr.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := rt.Kick("host", "nobody"); err != appErr.ErrNotInRoom {
		t.Fatalf("expected ErrNotInRoom, got %v", err)
	}
	if err := rt.Kick("host", "p2"); err != nil {
		t.Fatalf("host kick failed: %v", err)
	}
	for _, p := range rt.Players() {
		if p.ID == "p2" {
			t.Fatalf("p2 should be removed")
		}
	}
}

func TestKickRederivesTurnByIdentity(t *testing.T) {
	rt := newRoom(t, 3, room.Options{})
	startWithBigBlind(t, rt, "p3") // actor at seat 3

	if err := rt.Kick("host", "p1"); err != nil {
		t.Fatalf("kick failed: %v", err)
	}
	// roster is now host,p2,p3; the actor must still be p3
	idx := rt.TurnIndex()
	players := rt.Players()
	if idx != 2 || players[idx].ID != "p3" {
		t.Fatalf("turn should follow p3 to seat 2, got index %d", idx)
	}
}

func TestKickCurrentActorAdvancesTurn(t *testing.T) {
	rt := newRoom(t, 3, room.Options{})
	startWithBigBlind(t, rt, "p1")

	if err := rt.Kick("host", "p1"); err != nil {
		t.Fatalf("kick failed: %v", err)
	}
	// roster is now host,p2,p3; the turn passes to the next eligible seat
	idx := rt.TurnIndex()
	players := rt.Players()
	if idx < 0 || players[idx].ID != "p2" {
		t.Fatalf("turn should pass to p2, got index %d", idx)
	}
}

func TestSubscribePushesRosterAndBoard(t *testing.T) {
	rt := newRoom(t, 1, room.Options{})

	ch := make(chan room.OutgoingMessage, 64)
	rt.Subscribe("p1", ch)

	msg := drainFor(t, ch, room.EventPlayers)
	players, ok := msg.Data.([]room.Player)
	if !ok || len(players) != 2 {
		t.Fatalf("unexpected roster payload: %+v", msg.Data)
	}
	drainFor(t, ch, room.EventBoard)
}

func TestKickedPlayerIsNotified(t *testing.T) {
	rt := newRoom(t, 2, room.Options{})

	ch := make(chan room.OutgoingMessage, 64)
	rt.Subscribe("p2", ch)

	if err := rt.Kick("host", "p2"); err != nil {
		t.Fatalf("kick failed: %v", err)
	}
	drainFor(t, ch, room.EventKicked)
}

func TestRoomIDCollisionGivesUp(t *testing.T) {
	svc := room.NewService(nil, rejectAllDirectory{}, room.Options{})

	_, err := svc.Create("host", "Dealer")
	if err != appErr.ErrRoomIDExhausted {
		t.Fatalf("expected ErrRoomIDExhausted, got %v", err)
	}
}

type rejectAllDirectory struct{}

func (rejectAllDirectory) Claim(string) bool                   { return false }
func (rejectAllDirectory) Publish(string, string, int, string) {}
