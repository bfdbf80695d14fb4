package auth

import "time"

// TokenService defines the interface for token creation and validation.
type TokenService interface {
	CreateToken(userID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
