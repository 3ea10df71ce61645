package service

import (
	"pokerroom-service/internal/config"
	"pokerroom-service/internal/service/history"
	"pokerroom-service/internal/service/lobby"
	"pokerroom-service/internal/service/room"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Room    *room.Service
	History *history.Service
	Lobby   *lobby.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	historySvc := history.NewService(db)
	lobbySvc := lobby.NewService(rdb)

	gameCfg := config.GlobalConfig.Game
	roomSvc := room.NewService(historySvc, lobbySvc, room.Options{
		RoomIDLength: gameCfg.RoomIDLength,
		MaxPlayers:   gameCfg.MaxPlayers,
		TurnSeconds:  gameCfg.TurnSeconds,
	})

	return &Container{
		Room:    roomSvc,
		History: historySvc,
		Lobby:   lobbySvc,
	}
}
