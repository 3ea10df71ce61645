package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"pokerroom-service/internal/middleware"
	"pokerroom-service/internal/service"
	"pokerroom-service/internal/ws"
	pkgAuth "pokerroom-service/pkg/auth"
	"pokerroom-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Room)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/pokerRoom/v1")
	{
		v1.POST("/session", handler.CreateSession)
		v1.GET("/rooms", handler.ListRooms)

		handsGroup := v1.Group("/hands")
		handsGroup.Use(middleware.AuthRequired())
		{
			handsGroup.GET("", handler.ListHands)
		}
	}

	r.GET("/ws", wsHandler.HandleWS)
}

type sessionBody struct {
	Name string `json:"name" binding:"required"`
}

// CreateSession issues a guest identity. No credentials involved: the token
// only pins a generated player id to a display name.
func (h *Handler) CreateSession(c *gin.Context) {
	var body sessionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.Error(c, http.StatusBadRequest, "name is required")
		return
	}

	playerID := uuid.NewString()
	token, expireAt, err := pkgAuth.GenerateGuestToken(playerID, name)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to issue session")
		return
	}

	response.Success(c, gin.H{
		"playerId": playerID,
		"name":     name,
		"token":    token,
		"expireAt": expireAt,
	})
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.services.Lobby.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	response.Success(c, gin.H{"rooms": rooms})
}

func (h *Handler) ListHands(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	roomID := strings.TrimSpace(c.Query("roomId"))

	result, err := h.services.History.ListHands(c.Request.Context(), roomID, page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.Success(c, gin.H{
		"items": result.Items,
		"total": result.Total,
		"page":  page,
		"size":  size,
	})
}

func parsePositiveIntQuery(c *gin.Context, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return parsed, nil
}
