package routes

import (
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"police_training_backend/config"
	"police_training_backend/content"
	"police_training_backend/handlers"
	"police_training_backend/logger"
	"police_training_backend/middleware"
	"police_training_backend/models"
	"police_training_backend/scenario"
	"police_training_backend/store"
)

// Deps are the long-lived services the routes are built from.
type Deps struct {
	DB       *sql.DB
	Store    *store.Store
	Catalog  *content.Catalog
	Sessions *scenario.SessionStore
	Log      *zap.Logger
}

// NewRouter builds the engine with recovery, request logging and CORS.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(deps.Log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.AllowMethods = []string{
		"GET",
		"POST",
		"PUT",
		"DELETE",
		"PATCH",
	}
	r.Use(cors.New(corsConfig))

	SetupRoutes(r, cfg, deps)
	if cfg.StaticDir != "" {
		serveStatic(r, cfg.StaticDir)
	}
	return r
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, cfg *config.Config, deps Deps) {
	tokens := middleware.NewTokenService(deps.Store.RefreshTokens(), middleware.TokenOptions{
		Secret:       []byte(cfg.JWTSecret),
		AccessTTL:    cfg.AccessTokenTTL,
		RefreshTTL:   cfg.RefreshTokenTTL,
		CookieDomain: cfg.CookieDomain,
		CookieSecure: cfg.CookieSecure,
	})
	resolver := handlers.NewScenarioResolver(deps.Catalog, deps.Store.Scenarios())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Log)
	authHandler := handlers.NewAuthHandler(deps.Store.Users(), tokens, deps.Log)
	userHandler := handlers.NewUserHandler(deps.Store.Users(), deps.Store.Results(), deps.Log)
	contentHandler := handlers.NewContentHandler(deps.Catalog)
	scenarioHandler := handlers.NewScenarioHandler(resolver, deps.Store.Results(), deps.Sessions, deps.Log)
	editorHandler := handlers.NewEditorHandler(deps.Store.Scenarios(), deps.Log)
	roomHandler := handlers.NewRoomHandler(deps.Store.Rooms(), resolver, deps.Log)

	r.GET("/healthz", healthHandler.HealthCheck)

	api := r.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout)

	api.GET("/laws", contentHandler.GetLaws)
	api.GET("/laws/:id", contentHandler.GetLawByID)
	api.GET("/courses", contentHandler.GetCourses)
	api.GET("/courses/:id", contentHandler.GetCourseByID)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens, deps.Log))
	{
		protected.GET("/auth/validate", authHandler.Validate)
		protected.GET("/me", userHandler.GetUserInfo)

		// Scenario player routes
		protected.GET("/scenarios", scenarioHandler.GetScenarios)
		protected.GET("/scenarios/:id", scenarioHandler.GetScenarioByID)
		protected.POST("/scenarios/:id/evaluate", scenarioHandler.Evaluate)
		protected.POST("/scenarios/:id/play", scenarioHandler.StartSession)
		protected.GET("/play/sessions/:id", scenarioHandler.GetSession)
		protected.POST("/play/sessions/:id/answer", scenarioHandler.Answer)
		protected.POST("/play/sessions/:id/next", scenarioHandler.Next)
		protected.POST("/play/sessions/:id/back", scenarioHandler.Back)
		protected.GET("/play/sessions/:id/result", scenarioHandler.GetSessionResult)
		protected.GET("/results", scenarioHandler.GetResults)
		protected.GET("/results/stats", scenarioHandler.GetStats)

		// Editor routes
		protected.GET("/editor/scenarios", editorHandler.GetMyScenarios)
		protected.POST("/editor/scenarios", editorHandler.CreateScenario)
		protected.POST("/editor/validate", editorHandler.ValidateScenario)
		protected.GET("/editor/scenarios/:id", editorHandler.GetScenario)
		protected.PUT("/editor/scenarios/:id", editorHandler.UpdateScenario)
		protected.DELETE("/editor/scenarios/:id", editorHandler.DeleteScenario)
		protected.POST("/editor/scenarios/:id/publish",
			middleware.RequireRole(models.RoleInstructor, models.RoleAdmin),
			editorHandler.PublishScenario)

		// Room routes
		protected.GET("/rooms", roomHandler.GetRooms)
		protected.POST("/rooms", roomHandler.CreateRoom)
		protected.GET("/rooms/join/:code", roomHandler.JoinRoom)
		protected.GET("/rooms/:id", roomHandler.GetRoom)
		protected.PUT("/rooms/:id", roomHandler.UpdateRoom)
		protected.DELETE("/rooms/:id", roomHandler.DeleteRoom)
	}
}

// serveStatic serves the marketing pages and client bundle. Unknown non-API
// paths fall back to index.html so client-side routes work on reload.
func serveStatic(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		file := filepath.Join(dir, filepath.Clean("/"+path))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	})
}
