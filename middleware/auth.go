package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"police_training_backend/models"
	"police_training_backend/store"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	refreshCookiePath = "/api/auth"
	issuer            = "police-training"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenPair is what a successful login hands to the browser.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenService handles token generation and validation
type TokenService struct {
	refreshTokens *store.RefreshTokens
	secret        []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	cookieDomain  string
	cookieSecure  bool
	now           func() time.Time
}

type TokenOptions struct {
	Secret       []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	CookieDomain string
	CookieSecure bool
}

// NewTokenService creates a new token service
func NewTokenService(refreshTokens *store.RefreshTokens, opts TokenOptions) *TokenService {
	return &TokenService{
		refreshTokens: refreshTokens,
		secret:        opts.Secret,
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		cookieDomain:  opts.CookieDomain,
		cookieSecure:  opts.CookieSecure,
		now:           time.Now,
	}
}

// Issue signs an access token for the user and persists a new refresh token.
func (s *TokenService) Issue(ctx context.Context, user models.User) (TokenPair, error) {
	now := s.now()
	pair := TokenPair{
		AccessExpiresAt:  now.Add(s.accessTTL),
		RefreshExpiresAt: now.Add(s.refreshTTL),
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: jwt.NewNumericDate(pair.AccessExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := accessToken.SignedString(s.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	pair.AccessToken = signed

	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return TokenPair{}, err
	}
	pair.RefreshToken = hex.EncodeToString(bytes)

	if err := s.refreshTokens.Save(ctx, user.ID, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// ParseAccessToken verifies the signature and expiry of an access token.
func (s *TokenService) ParseAccessToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken checks if a refresh token is valid and returns the user ID
func (s *TokenService) ValidateRefreshToken(ctx context.Context, refreshToken string) (int64, error) {
	userID, err := s.refreshTokens.Lookup(ctx, refreshToken)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrInvalidToken
	}
	return userID, err
}

// ConsumeRefreshToken validates a refresh token and revokes it in one step,
// so a token can be rotated at most once.
func (s *TokenService) ConsumeRefreshToken(ctx context.Context, refreshToken string) (int64, error) {
	userID, err := s.refreshTokens.Consume(ctx, refreshToken)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrInvalidToken
	}
	return userID, err
}

// InvalidateRefreshToken invalidates a refresh token
func (s *TokenService) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	return s.refreshTokens.Delete(ctx, refreshToken)
}

// SetCookies writes both tokens as http-only cookies.
func (s *TokenService) SetCookies(c *gin.Context, pair TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, pair.AccessToken, int(s.accessTTL.Seconds()), "/", s.cookieDomain, s.cookieSecure, true)
	c.SetCookie(RefreshCookie, pair.RefreshToken, int(s.refreshTTL.Seconds()), refreshCookiePath, s.cookieDomain, s.cookieSecure, true)
}

func (s *TokenService) ClearCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", s.cookieDomain, s.cookieSecure, true)
	c.SetCookie(RefreshCookie, "", -1, refreshCookiePath, s.cookieDomain, s.cookieSecure, true)
}

// accessTokenFrom prefers the cookie and falls back to a Bearer header.
func accessTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(AccessCookie); err == nil && token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware creates a gin middleware for JWT authentication
func AuthMiddleware(tokens *TokenService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := accessTokenFrom(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		claims, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			log.Debug("Token validation failed", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("userRole")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// UserID returns the authenticated user set by AuthMiddleware.
func UserID(c *gin.Context) int64 {
	return c.GetInt64("userID")
}

// VerifyPassword checks if a password matches the hashed version
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// HashPassword creates a bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
