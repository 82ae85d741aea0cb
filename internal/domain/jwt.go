package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// PlatePalClaims are the custom claims carried by app access tokens
type PlatePalClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
