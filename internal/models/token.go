package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated identity through request contexts.
type JWTClaims struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
