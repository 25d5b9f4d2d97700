package dto

import (
	"time"

	"github.com/lifelink-dev/bloodlink-api/internal/models"
)

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and the authenticated identity.
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	ExpiresIn   int64           `json:"expiresIn"`
	IssuedAt    time.Time       `json:"issuedAt"`
	User        models.UserInfo `json:"user"`
}
