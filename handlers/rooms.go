package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"police_training_backend/middleware"
	"police_training_backend/models"
	"police_training_backend/store"
)

type RoomHandler struct {
	rooms    *store.Rooms
	resolver *ScenarioResolver
	log      *zap.Logger
}

func NewRoomHandler(rooms *store.Rooms, resolver *ScenarioResolver, log *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, resolver: resolver, log: log}
}

type roomResponse struct {
	models.Room
	Scenarios []models.ScenarioSummary `json:"scenarios"`
}

func (h *RoomHandler) GetRooms(c *gin.Context) {
	rooms, err := h.rooms.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		internalError(c, h.log, "Failed to fetch rooms", err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkScenarios(c, req.ScenarioIDs) {
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		internalError(c, h.log, "Failed to create room", err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && room.OwnerID != middleware.UserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to fetch room", err)
		return
	}
	h.respond(c, room)
}

func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	var req models.RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkScenarios(c, req.ScenarioIDs) {
		return
	}

	room, err := h.rooms.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to update room", err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	err := h.rooms.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to delete room", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// JoinRoom looks a room up by its join code for any logged-in user.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	room, err := h.rooms.ByCode(c.Request.Context(), strings.ToUpper(c.Param("code")))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to fetch room", err)
		return
	}
	h.respond(c, room)
}

// respond attaches summaries of the room's scenarios that the caller can play.
func (h *RoomHandler) respond(c *gin.Context, room models.Room) {
	resp := roomResponse{Room: room, Scenarios: make([]models.ScenarioSummary, 0, len(room.ScenarioIDs))}
	for _, id := range room.ScenarioIDs {
		s, err := h.resolver.Resolve(c.Request.Context(), id, middleware.UserID(c))
		if errors.Is(err, errScenarioNotFound) {
			continue
		}
		if err != nil {
			internalError(c, h.log, "Failed to load scenario", err)
			return
		}
		resp.Scenarios = append(resp.Scenarios, s.Summary())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RoomHandler) checkScenarios(c *gin.Context, ids []string) bool {
	for _, id := range ids {
		_, err := h.resolver.Resolve(c.Request.Context(), id, middleware.UserID(c))
		if errors.Is(err, errScenarioNotFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown scenario: " + id})
			return false
		}
		if err != nil {
			internalError(c, h.log, "Failed to load scenario", err)
			return false
		}
	}
	return true
}
