package models

import "time"

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh and /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthSession is what the auth service returns for valid credentials
type AuthSession struct {
	Username           string    `json:"username"`
	IsAdmin            bool      `json:"isAdmin"`
	Roles              []string  `json:"roles"`
	SessionToken       string    `json:"sessionToken"`
	SessionTokenExpiry time.Time `json:"sessionTokenExpiry"`
}

// RefreshSession is the server side record behind a refresh token
type RefreshSession struct {
	Username           string    `json:"username"`
	IsAdmin            bool      `json:"is_admin"`
	Roles              []string  `json:"roles"`
	SessionTokenExpiry time.Time `json:"session_token_expiry"`
	SecretHash         string    `json:"secret_hash"`
}

// TokenResponse is returned by the login and refresh endpoints
type TokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
