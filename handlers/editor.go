package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"police_training_backend/content"
	"police_training_backend/middleware"
	"police_training_backend/models"
	"police_training_backend/scenario"
	"police_training_backend/store"
)

// EditorHandler manages the scenarios a user authors.
type EditorHandler struct {
	scenarios *store.Scenarios
	log       *zap.Logger
}

func NewEditorHandler(scenarios *store.Scenarios, log *zap.Logger) *EditorHandler {
	return &EditorHandler{scenarios: scenarios, log: log}
}

func (h *EditorHandler) GetMyScenarios(c *gin.Context) {
	list, err := h.scenarios.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		internalError(c, h.log, "Failed to fetch scenarios", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *EditorHandler) CreateScenario(c *gin.Context) {
	var draft models.Scenario
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft.ID = uuid.NewString()
	draft.OwnerID = middleware.UserID(c)
	draft.Published = false

	if problems := validateDraft(draft); len(problems) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid scenario", "errors": problems})
		return
	}

	created, err := h.scenarios.Create(c.Request.Context(), draft)
	if err != nil {
		internalError(c, h.log, "Failed to create scenario", err)
		return
	}
	h.log.Info("Scenario created", zap.String("scenario", created.ID), zap.Int64("owner", created.OwnerID))
	c.JSON(http.StatusCreated, created)
}

func (h *EditorHandler) GetScenario(c *gin.Context) {
	s, err := h.scenarios.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && s.OwnerID != middleware.UserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scenario not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to fetch scenario", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *EditorHandler) UpdateScenario(c *gin.Context) {
	var draft models.Scenario
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	draft.ID = c.Param("id")

	if problems := validateDraft(draft); len(problems) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid scenario", "errors": problems})
		return
	}

	updated, err := h.scenarios.Update(c.Request.Context(), middleware.UserID(c), draft)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scenario not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to update scenario", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EditorHandler) DeleteScenario(c *gin.Context) {
	err := h.scenarios.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scenario not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to delete scenario", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PublishScenario makes the scenario playable by every user. Routed for
// instructors and admins only.
func (h *EditorHandler) PublishScenario(c *gin.Context) {
	var req struct {
		Published *bool `json:"published"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	published := req.Published == nil || *req.Published

	err := h.scenarios.SetPublished(c.Request.Context(), middleware.UserID(c), c.Param("id"), published)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scenario not found"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to publish scenario", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "published": published})
}

// ValidateScenario checks a draft without saving it.
func (h *EditorHandler) ValidateScenario(c *gin.Context) {
	var draft models.Scenario
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if draft.ID == "" {
		draft.ID = "draft"
	}
	problems := validateDraft(draft)
	c.JSON(http.StatusOK, gin.H{"valid": len(problems) == 0, "errors": problems})
}

func validateDraft(draft models.Scenario) []string {
	problems := []string{}

	raw, err := json.Marshal(draft)
	if err != nil {
		return append(problems, err.Error())
	}
	if err := content.ValidateScenarioJSON(raw); err != nil {
		problems = append(problems, err.Error())
	}

	var verr *scenario.ValidationError
	if err := scenario.Validate(draft); errors.As(err, &verr) {
		problems = append(problems, verr.Problems...)
	} else if err != nil {
		problems = append(problems, err.Error())
	}
	return problems
}
