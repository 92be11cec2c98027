package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleTrainee    = "trainee"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Username string `json:"username" binding:"required,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"` // "-" means this field won't be included in JSON
	CreatedAt    time.Time `json:"created_at"`
}

type AuthResponse struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
	User  User `json:"user"`
}
