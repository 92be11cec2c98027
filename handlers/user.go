package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"police_training_backend/middleware"
	"police_training_backend/models"
	"police_training_backend/store"
)

type UserHandler struct {
	users   *store.Users
	results *store.Results
	log     *zap.Logger
}

func NewUserHandler(users *store.Users, results *store.Results, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, results: results, log: log}
}

type profileResponse struct {
	User           models.User            `json:"user"`
	CompletedCount int                    `json:"completed_count"`
	AveragePercent int                    `json:"average_percentage"`
	Scenarios      []models.ScenarioStats `json:"scenarios"`
}

// GetUserInfo fetches the user's profile with a summary of their training progress.
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	user, err := h.users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to fetch user info", err)
		return
	}

	stats, err := h.results.Stats(ctx, userID)
	if err != nil {
		internalError(c, h.log, "Failed to fetch user info", err)
		return
	}

	resp := profileResponse{User: user, Scenarios: stats, CompletedCount: len(stats)}
	// Average of the best attempt per scenario
	total := 0
	for _, st := range stats {
		total += st.BestPercentage
	}
	if len(stats) > 0 {
		resp.AveragePercent = total / len(stats)
	}
	c.JSON(http.StatusOK, resp)
}
