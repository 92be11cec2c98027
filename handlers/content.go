package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"police_training_backend/content"
	"police_training_backend/models"
)

type ContentHandler struct {
	catalog *content.Catalog
}

func NewContentHandler(catalog *content.Catalog) *ContentHandler {
	return &ContentHandler{catalog: catalog}
}

type courseResponse struct {
	models.Course
	Scenarios []models.ScenarioSummary `json:"scenarios"`
	Laws      []models.Law             `json:"laws"`
}

func (h *ContentHandler) GetLaws(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Laws(c.Query("q")))
}

func (h *ContentHandler) GetLawByID(c *gin.Context) {
	law, err := h.catalog.Law(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Law not found"})
		return
	}
	c.JSON(http.StatusOK, law)
}

func (h *ContentHandler) GetCourses(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Courses())
}

// GetCourseByID expands the course with its scenarios and laws.
func (h *ContentHandler) GetCourseByID(c *gin.Context) {
	course, err := h.catalog.Course(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	resp := courseResponse{
		Course:    course,
		Scenarios: make([]models.ScenarioSummary, 0, len(course.ScenarioIDs)),
		Laws:      make([]models.Law, 0, len(course.LawIDs)),
	}
	// References were checked when the catalog was loaded
	for _, id := range course.ScenarioIDs {
		if s, err := h.catalog.Scenario(id); err == nil {
			resp.Scenarios = append(resp.Scenarios, s.Summary())
		}
	}
	for _, id := range course.LawIDs {
		if law, err := h.catalog.Law(id); err == nil {
			resp.Laws = append(resp.Laws, law)
		}
	}
	c.JSON(http.StatusOK, resp)
}
