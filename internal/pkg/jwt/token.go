package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// tokenClaims is the wire form of models.Claims
type tokenClaims struct {
	IsAdmin bool     `json:"is_admin"`
	Roles   []string `json:"roles"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 access tokens. It holds only read-only
// state and is safe for concurrent use.
type Manager struct {
	secret   []byte
	issuer   string
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewManager creates a Manager from the JWT config
func NewManager(cfg models.JWTConfig) *Manager {
	return &Manager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		lifetime: cfg.Lifetime,
		now:      time.Now,
		// time checks are done in Verify against the injected clock
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation()),
	}
}

// WithClock replaces the time source, for tests
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Lifetime is the configured token lifetime
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// Issue builds claims valid for exactly lifetime from now, truncated to the second
func (m *Manager) Issue(username string, isAdmin bool, roles []string, issuer string, lifetime time.Duration) *models.Claims {
	issuedAt := m.now().UTC().Truncate(time.Second)
	if roles == nil {
		roles = []string{}
	}
	return &models.Claims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(lifetime),
		IsAdmin:   isAdmin,
		Roles:     roles,
	}
}

// IssueFromUpstreamAuth issues claims for an auth service session. The token
// must expire strictly before the upstream session does.
func (m *Manager) IssueFromUpstreamAuth(session *models.AuthSession) (*models.Claims, error) {
	claims := m.Issue(session.Username, session.IsAdmin, session.Roles, m.issuer, m.lifetime)
	if !claims.ExpiresAt.Before(session.SessionTokenExpiry) {
		return nil, apperror.ExpiryTooShort()
	}
	return claims, nil
}

// Sign encodes claims as a compact HS256 token
func (m *Manager) Sign(claims *models.Claims) (string, error) {
	tc := tokenClaims{
		IsAdmin: claims.IsAdmin,
		Roles:   claims.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    claims.Issuer,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token. Malformed tokens, bad
// signatures, other algorithms and tokens without a usable iat/exp pair fail
// with InvalidToken; tokens at or past their expiry fail with Expired.
func (m *Manager) Verify(token string) (*models.Claims, error) {
	tc := &tokenClaims{}
	parsed, err := m.parser.ParseWithClaims(token, tc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperror.InvalidToken(err)
	}
	if !parsed.Valid {
		return nil, apperror.InvalidToken(errors.New("token not valid"))
	}
	if tc.ExpiresAt == nil || tc.IssuedAt == nil {
		return nil, apperror.InvalidToken(errors.New("missing iat or exp"))
	}

	issuedAt := tc.IssuedAt.Time.UTC()
	expiresAt := tc.ExpiresAt.Time.UTC()
	if !issuedAt.Before(expiresAt) {
		return nil, apperror.InvalidToken(errors.New("iat is not before exp"))
	}
	if !m.now().Before(expiresAt) {
		return nil, apperror.Expired()
	}

	roles := tc.Roles
	if roles == nil {
		roles = []string{}
	}
	return &models.Claims{
		Issuer:    tc.Issuer,
		Subject:   tc.Subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		IsAdmin:   tc.IsAdmin,
		Roles:     roles,
	}, nil
}
