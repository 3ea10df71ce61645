package model

import (
	"time"

	"gorm.io/datatypes"
)

// Hand and action journal. Rooms themselves are process-resident; these rows
// are derived records written after the fact and never read back into play.

type HandRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	RoomID      string `gorm:"index;size:16"`
	WinnerID    string `gorm:"size:64"`
	Pot         int64
	PlayersJSON datatypes.JSON `gorm:"type:jsonb"` // roster snapshot at hand end
	StartedAt   time.Time
	EndedAt     time.Time
	CreatedAt   time.Time
}

type ActionRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	RoomID    string `gorm:"index;size:16"`
	PlayerID  string `gorm:"size:64"`
	Action    string `gorm:"size:16"` // fold/check/call/bet
	Amount    int64
	PotAfter  int64
	CreatedAt time.Time
}
