package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/jwt"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/piresc/arbiter/services/gateway/mocks"
)

type authFixture struct {
	uc          *GatewayUC
	authGW      *mocks.MockAuthGW
	sessionRepo *mocks.MockSessionRepo
	tokens      *jwt.Manager
}

func newAuthFixture(t *testing.T) *authFixture {
	ctrl := gomock.NewController(t)
	f := &authFixture{
		authGW:      mocks.NewMockAuthGW(ctrl),
		sessionRepo: mocks.NewMockSessionRepo(ctrl),
	}
	cfg := testConfig(constants.ExecutorLocal)
	f.tokens = jwt.NewManager(cfg.JWT).WithClock(func() time.Time { return fixedNow })
	f.uc = NewGatewayUC(cfg, f.tokens, nil, f.sessionRepo, nil, f.authGW, nil, nil, nil)
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func upstreamSession(expiresIn time.Duration) *models.AuthSession {
	return &models.AuthSession{
		Username:           "ada",
		IsAdmin:            false,
		Roles:              []string{"editor"},
		SessionToken:       "upstream-token",
		SessionTokenExpiry: fixedNow.Add(expiresIn),
	}
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.authGW.EXPECT().Authenticate(gomock.Any(), "ada", "pw").Return(upstreamSession(time.Hour), nil)

	var storedID string
	var stored *models.RefreshSession
	f.sessionRepo.EXPECT().
		SaveRefreshSession(gomock.Any(), gomock.Any(), gomock.Any(), time.Hour).
		DoAndReturn(func(_ context.Context, id string, session *models.RefreshSession, _ time.Duration) error {
			storedID, stored = id, session
			return nil
		})

	resp, err := f.uc.Login(context.Background(), &models.LoginRequest{Username: "ada", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(300), resp.ExpiresIn)

	claims, err := f.tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Subject)
	assert.Equal(t, []string{"editor"}, claims.Roles)

	id, secret, ok := strings.Cut(resp.RefreshToken, ".")
	require.True(t, ok)
	assert.Equal(t, storedID, id)
	assert.NotEmpty(t, secret)
	assert.NotContains(t, stored.SecretHash, secret, "only the hash is stored")
	assert.Equal(t, fixedNow.Add(time.Hour), stored.SessionTokenExpiry)
}

func TestLogin_Failures(t *testing.T) {
	testCases := []struct {
		name      string
		req       *models.LoginRequest
		mockSetup func(f *authFixture)
		wantErr   error
	}{
		{
			name:    "missing password",
			req:     &models.LoginRequest{Username: "ada"},
			wantErr: apperror.ErrInvalidParams,
		},
		{
			name: "rejected credentials",
			req:  &models.LoginRequest{Username: "ada", Password: "bad"},
			mockSetup: func(f *authFixture) {
				f.authGW.EXPECT().Authenticate(gomock.Any(), "ada", "bad").Return(nil, apperror.Unauthorized("wrong password"))
			},
			wantErr: apperror.ErrUnauthorized,
		},
		{
			name: "auth service down",
			req:  &models.LoginRequest{Username: "ada", Password: "pw"},
			mockSetup: func(f *authFixture) {
				f.authGW.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, apperror.BadGateway(errors.New("dial tcp")))
			},
			wantErr: apperror.ErrBadGateway,
		},
		{
			name: "upstream session shorter than the token",
			req:  &models.LoginRequest{Username: "ada", Password: "pw"},
			mockSetup: func(f *authFixture) {
				f.authGW.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Return(upstreamSession(time.Minute), nil)
			},
			wantErr: apperror.ErrExpiryTooShort,
		},
		{
			name: "session store failure",
			req:  &models.LoginRequest{Username: "ada", Password: "pw"},
			mockSetup: func(f *authFixture) {
				f.authGW.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Return(upstreamSession(time.Hour), nil)
				f.sessionRepo.EXPECT().SaveRefreshSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			wantErr: apperror.ErrUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t)
			if tc.mockSetup != nil {
				tc.mockSetup(f)
			}

			resp, err := f.uc.Login(context.Background(), tc.req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

// login runs a successful login and captures what was stored
func login(t *testing.T, f *authFixture, expiresIn time.Duration) (string, *models.RefreshSession) {
	t.Helper()
	f.authGW.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Return(upstreamSession(expiresIn), nil)

	var stored *models.RefreshSession
	f.sessionRepo.EXPECT().
		SaveRefreshSession(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, session *models.RefreshSession, _ time.Duration) error {
			stored = session
			return nil
		})

	resp, err := f.uc.Login(context.Background(), &models.LoginRequest{Username: "ada", Password: "pw"})
	require.NoError(t, err)
	return resp.RefreshToken, stored
}

func TestRefresh_RoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	refreshToken, stored := login(t, f, time.Hour)
	id, _, _ := strings.Cut(refreshToken, ".")

	f.sessionRepo.EXPECT().GetRefreshSession(gomock.Any(), id).Return(stored, nil)

	resp, err := f.uc.Refresh(context.Background(), refreshToken)
	require.NoError(t, err)

	assert.Empty(t, resp.RefreshToken)
	claims, err := f.tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Subject)
}

func TestRefresh_Failures(t *testing.T) {
	t.Run("malformed token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.uc.Refresh(context.Background(), "no-dot-here")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("id is not a uuid", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.uc.Refresh(context.Background(), "abc.secret")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("unknown or expired", func(t *testing.T) {
		f := newAuthFixture(t)
		f.sessionRepo.EXPECT().GetRefreshSession(gomock.Any(), gomock.Any()).Return(nil, models.ErrNotFound)

		_, err := f.uc.Refresh(context.Background(), "6f1c2b1e-3f7a-4c9d-9a55-0f1f3e2d4c5b.secret")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		f := newAuthFixture(t)
		refreshToken, stored := login(t, f, time.Hour)
		id, _, _ := strings.Cut(refreshToken, ".")
		f.sessionRepo.EXPECT().GetRefreshSession(gomock.Any(), id).Return(stored, nil)

		_, err := f.uc.Refresh(context.Background(), id+".forged")
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("session about to expire", func(t *testing.T) {
		f := newAuthFixture(t)
		refreshToken, stored := login(t, f, time.Hour)
		stored.SessionTokenExpiry = fixedNow.Add(time.Minute)
		f.sessionRepo.EXPECT().GetRefreshSession(gomock.Any(), gomock.Any()).Return(stored, nil)

		_, err := f.uc.Refresh(context.Background(), refreshToken)
		assert.ErrorIs(t, err, apperror.ErrExpiryTooShort)
	})
}

func TestLogout(t *testing.T) {
	t.Run("revokes the refresh session", func(t *testing.T) {
		f := newAuthFixture(t)
		refreshToken, stored := login(t, f, time.Hour)
		id, _, _ := strings.Cut(refreshToken, ".")

		gomock.InOrder(
			f.sessionRepo.EXPECT().GetRefreshSession(gomock.Any(), id).Return(stored, nil),
			f.sessionRepo.EXPECT().DeleteRefreshSession(gomock.Any(), id).Return(nil),
			f.sessionRepo.EXPECT().GetRefreshSession(gomock.Any(), id).Return(nil, models.ErrNotFound),
		)

		require.NoError(t, f.uc.Logout(context.Background(), refreshToken))

		_, err := f.uc.Refresh(context.Background(), refreshToken)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("already gone is not an error", func(t *testing.T) {
		f := newAuthFixture(t)
		f.sessionRepo.EXPECT().GetRefreshSession(gomock.Any(), gomock.Any()).Return(nil, models.ErrNotFound)

		assert.NoError(t, f.uc.Logout(context.Background(), "6f1c2b1e-3f7a-4c9d-9a55-0f1f3e2d4c5b.secret"))
	})

	t.Run("malformed token", func(t *testing.T) {
		f := newAuthFixture(t)
		assert.ErrorIs(t, f.uc.Logout(context.Background(), "junk"), apperror.ErrUnauthorized)
	})
}
