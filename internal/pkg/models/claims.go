package models

import "time"

// Claims are the verified identity facts carried by an access token
type Claims struct {
	Issuer    string    `json:"issuer"`
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsAdmin   bool      `json:"isAdmin"`
	Roles     []string  `json:"roles"`
}

// HasRole reports whether the role list contains role
func (c *Claims) HasRole(role string) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Caller is the identity forwarded to upstream executors
type Caller struct {
	Username string   `json:"username"`
	IsAdmin  bool     `json:"isAdmin"`
	Roles    []string `json:"roles"`
}

// AsCaller strips the token bookkeeping fields
func (c *Claims) AsCaller() Caller {
	return Caller{
		Username: c.Subject,
		IsAdmin:  c.IsAdmin,
		Roles:    c.Roles,
	}
}
