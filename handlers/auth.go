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

type AuthHandler struct {
	users  *store.Users
	tokens *middleware.TokenService
	log    *zap.Logger
}

func NewAuthHandler(users *store.Users, tokens *middleware.TokenService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := middleware.HashPassword(req.Password)
	if err != nil {
		internalError(c, h.log, "Failed to process password", err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, req.Username, hashedPassword, models.RoleTrainee)
	if errors.Is(err, store.ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to create user", err)
		return
	}

	h.log.Info("User registered", zap.Int64("user_id", user.ID))
	h.issue(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.ByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		internalError(c, h.log, "Failed to verify credentials", err)
		return
	}
	if err != nil || !middleware.VerifyPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.issue(c, http.StatusOK, user)
}

// RefreshToken rotates the refresh token. It is read from the cookie, or from
// the JSON body for clients that cannot send cookies.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshCookie)
	if refreshToken == "" {
		var req models.RefreshRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is required"})
		return
	}

	ctx := c.Request.Context()
	userID, err := h.tokens.ConsumeRefreshToken(ctx, refreshToken)
	if errors.Is(err, middleware.ErrInvalidToken) {
		h.tokens.ClearCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to verify refresh token", err)
		return
	}

	user, err := h.users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		h.tokens.ClearCookies(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to load user", err)
		return
	}

	h.issue(c, http.StatusOK, user)
}

// Logout always succeeds; it revokes the refresh token if the browser still has one.
func (h *AuthHandler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie(middleware.RefreshCookie); err == nil && refreshToken != "" {
		if err := h.tokens.InvalidateRefreshToken(c.Request.Context(), refreshToken); err != nil {
			h.log.Warn("Error invalidating refresh token", zap.Error(err))
		}
	}
	h.tokens.ClearCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Validate runs behind AuthMiddleware and reports who the token belongs to.
func (h *AuthHandler) Validate(c *gin.Context) {
	user, err := h.users.ByID(c.Request.Context(), middleware.UserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	if err != nil {
		internalError(c, h.log, "Failed to load user", err)
		return
	}
	c.JSON(http.StatusOK, models.ValidateResponse{Valid: true, User: user})
}

func (h *AuthHandler) issue(c *gin.Context, status int, user models.User) {
	pair, err := h.tokens.Issue(c.Request.Context(), user)
	if err != nil {
		internalError(c, h.log, "Failed to generate tokens", err)
		return
	}
	h.tokens.SetCookies(c, pair)
	c.JSON(status, models.AuthResponse{User: user, ExpiresAt: pair.AccessExpiresAt})
}
