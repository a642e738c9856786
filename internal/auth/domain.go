package auth

import "time"

// User holds the credential columns of an account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	ResetExpires *time.Time
}

// SigninResult is returned to a client that authenticated successfully.
type SigninResult struct {
	Auth        bool      `json:"auth"`
	Type        string    `json:"type"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Roles       []string  `json:"roles"`
}

// TokenType is the scheme clients prefix the access token with.
const TokenType = "Bearer"
