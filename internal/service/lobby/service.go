package lobby

import (
	"context"
	"encoding/json"
	"time"

	"pokerroom-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	roomKeyPrefix = "lobby:room:"
	claimPrefix   = "lobby:claim:"
	indexKey      = "lobby:rooms"
)

type Config struct {
	EntryTTL  time.Duration
	ClaimTTL  time.Duration
	OpTimeout time.Duration
}

func defaultConfig() Config {
	return Config{
		EntryTTL:  10 * time.Minute,
		ClaimTTL:  time.Hour,
		OpTimeout: 2 * time.Second,
	}
}

// RoomInfo is the lobby view of a live room.
type RoomInfo struct {
	RoomID      string `json:"roomId"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	Status      string `json:"status"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Service maintains the live-room directory in redis. Everything here is
// derived data; when redis is down, listings degrade to empty and rooms
// keep playing.
type Service struct {
	rdb *redis.Client
	cfg Config
}

func NewService(rdb *redis.Client) *Service {
	return &Service{rdb: rdb, cfg: defaultConfig()}
}

// Claim reserves a room id. A false return means the id is taken somewhere
// (this process or another one sharing the redis).
func (s *Service) Claim(roomID string) bool {
	ctx, cancel := s.opContext()
	defer cancel()

	ok, err := s.rdb.SetNX(ctx, claimPrefix+roomID, 1, s.cfg.ClaimTTL).Result()
	if err != nil {
		logger.Log.Warn("lobby claim failed", zap.String("roomID", roomID), zap.Error(err))
		// do not block room creation on a redis outage
		return true
	}
	return ok
}

// Publish upserts the directory entry for a room and refreshes its TTL.
func (s *Service) Publish(roomID, hostName string, playerCount int, status string) {
	info := RoomInfo{
		RoomID:      roomID,
		HostName:    hostName,
		PlayerCount: playerCount,
		Status:      status,
		UpdatedAt:   time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return
	}

	ctx, cancel := s.opContext()
	defer cancel()

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, roomKeyPrefix+roomID, payload, s.cfg.EntryTTL)
	pipe.Expire(ctx, claimPrefix+roomID, s.cfg.ClaimTTL)
	pipe.SAdd(ctx, indexKey, roomID)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warn("lobby publish failed", zap.String("roomID", roomID), zap.Error(err))
	}
}

// List returns the directory entries that are still live. Index members
// whose entries have expired are pruned along the way.
func (s *Service) List(ctx context.Context) ([]RoomInfo, error) {
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	infos := make([]RoomInfo, 0, len(ids))
	for _, id := range ids {
		raw, err := s.rdb.Get(ctx, roomKeyPrefix+id).Bytes()
		if err == redis.Nil {
			s.rdb.SRem(ctx, indexKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		var info RoomInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *Service) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.OpTimeout)
}
