package history

import (
	"context"
	"encoding/json"
	"time"

	"pokerroom-service/internal/model"
	"pokerroom-service/internal/service/room"
	"pokerroom-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service journals completed hands and individual betting actions. Writes
// are best effort: a failed insert is logged and play continues.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) RecordAction(roomID, playerID string, action room.Action, amount, potAfter int64) {
	rec := model.ActionRecord{
		RoomID:   roomID,
		PlayerID: playerID,
		Action:   string(action),
		Amount:   amount,
		PotAfter: potAfter,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		logger.Log.Warn("record action failed",
			zap.String("roomID", roomID),
			zap.Error(err),
		)
	}
}

func (s *Service) RecordHand(roomID, winnerID string, pot int64, players json.RawMessage, startedAt, endedAt time.Time) {
	rec := model.HandRecord{
		RoomID:      roomID,
		WinnerID:    winnerID,
		Pot:         pot,
		PlayersJSON: []byte(players),
		StartedAt:   startedAt,
		EndedAt:     endedAt,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		logger.Log.Warn("record hand failed",
			zap.String("roomID", roomID),
			zap.Error(err),
		)
	}
}

type ListResult struct {
	Items []model.HandRecord `json:"items"`
	Total int64              `json:"total"`
}

func (s *Service) ListHands(ctx context.Context, roomID string, page, size int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	query := s.db.WithContext(ctx).Model(&model.HandRecord{})
	if roomID != "" {
		query = query.Where("room_id = ?", roomID)
	}

	var result ListResult
	if err := query.Count(&result.Total).Error; err != nil {
		return ListResult{}, err
	}
	err := query.Order("id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&result.Items).Error
	if err != nil {
		return ListResult{}, err
	}
	return result, nil
}
