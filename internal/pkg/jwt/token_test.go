package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 500, time.UTC)

func getTestConfig() models.JWTConfig {
	return models.JWTConfig{
		Secret:   "test-secret-key-for-jwt-signing",
		Issuer:   "arbiter-test",
		Lifetime: 15 * time.Minute,
	}
}

func newTestManager(now time.Time) *Manager {
	return NewManager(getTestConfig()).WithClock(func() time.Time { return now })
}

func TestIssue_VerifyRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		username string
		isAdmin  bool
		roles    []string
		lifetime time.Duration
	}{
		{name: "admin with roles", username: "alice", isAdmin: true, roles: []string{"editor", "runner"}, lifetime: 5 * time.Minute},
		{name: "regular user without roles", username: "bob", isAdmin: false, roles: nil, lifetime: time.Hour},
		{name: "role order is kept", username: "carol", roles: []string{"runner", "editor", "auditor"}, lifetime: 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(fixedNow)

			issued := m.Issue(tt.username, tt.isAdmin, tt.roles, "arbiter-test", tt.lifetime)
			token, err := m.Sign(issued)
			require.NoError(t, err)

			claims, err := m.Verify(token)
			require.NoError(t, err)

			assert.Equal(t, tt.username, claims.Subject)
			assert.Equal(t, tt.isAdmin, claims.IsAdmin)
			if tt.roles == nil {
				assert.Empty(t, claims.Roles)
			} else {
				assert.Equal(t, tt.roles, claims.Roles)
			}
			assert.Equal(t, "arbiter-test", claims.Issuer)
			assert.Equal(t, fixedNow.Truncate(time.Second), claims.IssuedAt)
			assert.Equal(t, tt.lifetime, claims.ExpiresAt.Sub(claims.IssuedAt))
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	issuer := newTestManager(fixedNow)
	claims := issuer.Issue("alice", false, nil, "arbiter-test", time.Minute)
	token, err := issuer.Sign(claims)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr *apperror.Error
	}{
		{name: "one second before expiry is valid", now: claims.ExpiresAt.Add(-time.Second)},
		{name: "exactly at expiry is expired", now: claims.ExpiresAt, wantErr: apperror.ErrExpired},
		{name: "after expiry is expired", now: claims.ExpiresAt.Add(time.Hour), wantErr: apperror.ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestManager(tt.now).Verify(token)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "alice", got.Subject)
				return
			}
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify_InvalidToken(t *testing.T) {
	m := newTestManager(fixedNow)
	valid, err := m.Sign(m.Issue("alice", true, nil, "arbiter-test", time.Minute))
	require.NoError(t, err)

	otherSecret := NewManager(models.JWTConfig{Secret: "another-secret"}).WithClock(func() time.Time { return fixedNow })
	forged, err := otherSecret.Sign(m.Issue("alice", true, nil, "arbiter-test", time.Minute))
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(fixedNow),
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Minute)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(fixedNow),
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Minute)),
	}).SignedString([]byte(getTestConfig().Secret))
	require.NoError(t, err)

	missingExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "alice",
		IssuedAt: jwt.NewNumericDate(fixedNow),
	}).SignedString([]byte(getTestConfig().Secret))
	require.NoError(t, err)

	inverted, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Minute)),
	}).SignedString([]byte(getTestConfig().Secret))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: forged},
		{name: "alg none", token: noneToken},
		{name: "other hmac algorithm", token: hs512},
		{name: "missing exp", token: missingExp},
		{name: "iat after exp", token: inverted},
		{name: "tampered payload", token: tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := m.Verify(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, apperror.ErrInvalidToken)
		})
	}
}

func TestIssueFromUpstreamAuth(t *testing.T) {
	tests := []struct {
		name          string
		sessionExpiry time.Time
		wantErr       bool
	}{
		{name: "session expiring before token is rejected", sessionExpiry: fixedNow.Add(5 * time.Minute), wantErr: true},
		{name: "session expiring with token is rejected", sessionExpiry: fixedNow.Truncate(time.Second).Add(15 * time.Minute), wantErr: true},
		{name: "session one day out is accepted", sessionExpiry: fixedNow.Add(24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(fixedNow)
			session := &models.AuthSession{
				Username:           "alice",
				IsAdmin:            true,
				Roles:              []string{"editor"},
				SessionToken:       "upstream-session",
				SessionTokenExpiry: tt.sessionExpiry,
			}

			claims, err := m.IssueFromUpstreamAuth(session)
			if tt.wantErr {
				assert.Nil(t, claims)
				assert.ErrorIs(t, err, apperror.ErrExpiryTooShort)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Subject)
			assert.Equal(t, "arbiter-test", claims.Issuer)
			assert.True(t, claims.IsAdmin)
			assert.Equal(t, []string{"editor"}, claims.Roles)
			assert.True(t, claims.ExpiresAt.Before(tt.sessionExpiry))
		})
	}
}

func BenchmarkVerify(b *testing.B) {
	m := newTestManager(fixedNow)
	token, err := m.Sign(m.Issue("alice", false, []string{"editor"}, "arbiter-test", time.Minute))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Verify(token)
	}
}
