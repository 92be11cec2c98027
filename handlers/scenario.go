package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"police_training_backend/middleware"
	"police_training_backend/models"
	"police_training_backend/scenario"
	"police_training_backend/store"
)

type ScenarioHandler struct {
	resolver *ScenarioResolver
	results  *store.Results
	sessions *scenario.SessionStore
	log      *zap.Logger
}

func NewScenarioHandler(resolver *ScenarioResolver, results *store.Results, sessions *scenario.SessionStore, log *zap.Logger) *ScenarioHandler {
	return &ScenarioHandler{resolver: resolver, results: results, sessions: sessions, log: log}
}

func (h *ScenarioHandler) GetScenarios(c *gin.Context) {
	all, err := h.resolver.List(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "Failed to fetch scenarios", err)
		return
	}

	category := strings.ToLower(c.Query("category"))
	summaries := make([]models.ScenarioSummary, 0, len(all))
	for _, s := range all {
		if category != "" && strings.ToLower(s.Category) != category {
			continue
		}
		summaries = append(summaries, s.Summary())
	}
	c.JSON(http.StatusOK, summaries)
}

// GetScenarioByID returns the scenario without answer keys.
func (h *ScenarioHandler) GetScenarioByID(c *gin.Context) {
	s, ok := h.resolve(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, scenario.PlayerView(s))
}

// Evaluate scores a full answer sheet in one request and records the result.
func (h *ScenarioHandler) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.resolve(c, c.Param("id"))
	if !ok {
		return
	}

	result, err := scenario.Evaluate(s, req.Answers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.saveResult(c, http.StatusCreated, result)
}

func (h *ScenarioHandler) StartSession(c *gin.Context) {
	s, ok := h.resolve(c, c.Param("id"))
	if !ok {
		return
	}

	state, err := h.sessions.Start(middleware.UserID(c), s)
	if err != nil {
		internalError(c, h.log, "Failed to start scenario", err)
		return
	}
	h.log.Debug("Play session started", zap.String("session", state.SessionID), zap.String("scenario", s.ID))
	c.JSON(http.StatusCreated, state)
}

func (h *ScenarioHandler) GetSession(c *gin.Context) {
	state, err := h.sessions.Get(c.Param("id"), middleware.UserID(c))
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ScenarioHandler) Answer(c *gin.Context) {
	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessions.Do(c.Param("id"), middleware.UserID(c), func(s *scenario.Session) error {
		return s.Answer(req.OptionID)
	})
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Next advances the session. The call that moves past the last scene stores
// the result and returns it with the final state. When storing fails the
// session stays finished but unsaved, and the next call retries the save.
func (h *ScenarioHandler) Next(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	state, err := h.sessions.Do(c.Param("id"), userID, func(s *scenario.Session) error {
		if s.Finished() && s.Saved() {
			return scenario.ErrFinished
		}
		if !s.Finished() {
			if err := s.Next(); err != nil {
				return err
			}
			if !s.Finished() {
				return nil
			}
		}
		return h.persist(ctx, userID, s)
	})
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ScenarioHandler) Back(c *gin.Context) {
	state, err := h.sessions.Do(c.Param("id"), middleware.UserID(c), func(s *scenario.Session) error {
		return s.Back()
	})
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ScenarioHandler) GetSessionResult(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	var result models.ScenarioResult
	_, err := h.sessions.Do(c.Param("id"), userID, func(s *scenario.Session) error {
		if s.Finished() && !s.Saved() {
			if err := h.persist(ctx, userID, s); err != nil {
				return err
			}
		}
		var err error
		result, err = s.Result()
		return err
	})
	if err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ScenarioHandler) GetResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	results, err := h.results.ListByUser(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		internalError(c, h.log, "Failed to fetch results", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *ScenarioHandler) GetStats(c *gin.Context) {
	stats, err := h.results.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		internalError(c, h.log, "Failed to fetch statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ScenarioHandler) resolve(c *gin.Context, id string) (models.Scenario, bool) {
	s, err := h.resolver.Resolve(c.Request.Context(), id, middleware.UserID(c))
	if errors.Is(err, errScenarioNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scenario not found"})
		return models.Scenario{}, false
	}
	if err != nil {
		internalError(c, h.log, "Failed to load scenario", err)
		return models.Scenario{}, false
	}
	return s, true
}

// persist stores a finished session's result once.
func (h *ScenarioHandler) persist(ctx context.Context, userID int64, s *scenario.Session) error {
	result, err := s.Result()
	if err != nil {
		return err
	}
	saved, err := h.results.Save(ctx, userID, result)
	if err != nil {
		return err
	}
	return s.MarkSaved(saved)
}

func (h *ScenarioHandler) saveResult(c *gin.Context, status int, result models.ScenarioResult) {
	saved, err := h.results.Save(c.Request.Context(), middleware.UserID(c), result)
	if err != nil {
		internalError(c, h.log, "Failed to save result", err)
		return
	}
	c.JSON(status, saved)
}

func (h *ScenarioHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scenario.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
	case errors.Is(err, scenario.ErrUnknownOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, scenario.ErrUnanswered),
		errors.Is(err, scenario.ErrNotStarted),
		errors.Is(err, scenario.ErrFinished),
		errors.Is(err, scenario.ErrInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		internalError(c, h.log, "Failed to update session", err)
	}
}
