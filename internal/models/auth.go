package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload sealed into the admin session cookie.
type SessionClaims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}
