package models

import "github.com/golang-jwt/jwt/v5"

// User is an API account stored in users.json. PasswordHash is a bcrypt hash
// and never serialized into responses.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash,omitempty"`
	IsAdmin      bool   `json:"isAdmin"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// JWTClaims is the token payload issued at login.
type JWTClaims struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}
