package room

import (
	"sync"

	appErr "pokerroom-service/pkg/errors"
	"pokerroom-service/pkg/logger"
	"pokerroom-service/pkg/utils/random"

	"go.uber.org/zap"
)

const maxIDAttempts = 64

// Service is the room registry: the only owner of live room state. Rooms are
// created here and live until the process exits.
type Service struct {
	rooms   sync.Map // roomID -> *Runtime
	opts    Options
	journal Journal
	dir     Directory
}

func NewService(journal Journal, dir Directory, opts Options) *Service {
	return &Service{
		opts:    opts.withDefaults(),
		journal: journal,
		dir:     dir,
	}
}

// Create allocates a room with a fresh numeric id, retrying on collision
// against the live registry (and the directory claim, when one is wired).
// The creator becomes the dealer seat.
func (s *Service) Create(hostID, hostName string) (*Runtime, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := random.Numeric(s.opts.RoomIDLength)
		if _, exists := s.rooms.Load(id); exists {
			continue
		}
		if s.dir != nil && !s.dir.Claim(id) {
			continue
		}
		rt := newRuntime(id, hostID, hostName, s.opts, s.journal, s.dir)
		if _, loaded := s.rooms.LoadOrStore(id, rt); loaded {
			continue
		}
		rt.publishDirectory()
		logger.Log.Info("room created",
			zap.String("roomID", id),
			zap.String("hostID", hostID),
		)
		return rt, nil
	}
	return nil, appErr.ErrRoomIDExhausted
}

// Get looks up a live room.
func (s *Service) Get(roomID string) (*Runtime, error) {
	if v, ok := s.rooms.Load(roomID); ok {
		return v.(*Runtime), nil
	}
	return nil, appErr.ErrRoomNotFound
}

// Join appends a player to an existing room.
func (s *Service) Join(roomID, playerID, name string) (*Runtime, error) {
	rt, err := s.Get(roomID)
	if err != nil {
		return nil, err
	}
	if err := rt.Join(playerID, name); err != nil {
		return nil, err
	}
	return rt, nil
}
