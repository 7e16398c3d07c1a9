package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const refreshSecretBytes = 32

// Login exchanges credentials for an access token and a refresh token that
// lives as long as the upstream session
func (uc *GatewayUC) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperror.InvalidParams(errors.New("username and password are required"))
	}

	session, err := uc.authGW.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	resp, err := uc.issueAccessToken(session)
	if err != nil {
		return nil, err
	}

	refreshToken, err := uc.storeRefreshSession(ctx, session)
	if err != nil {
		return nil, err
	}
	resp.RefreshToken = refreshToken

	logger.Info("User logged in",
		logger.String("username", session.Username),
		logger.Bool("is_admin", session.IsAdmin))
	return resp, nil
}

// Refresh issues a new access token for a valid refresh token. The refresh
// token itself stays valid until the upstream session expires.
func (uc *GatewayUC) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	_, stored, err := uc.loadRefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return uc.issueAccessToken(&models.AuthSession{
		Username:           stored.Username,
		IsAdmin:            stored.IsAdmin,
		Roles:              stored.Roles,
		SessionTokenExpiry: stored.SessionTokenExpiry,
	})
}

// Logout revokes a refresh token. Unknown or expired tokens are already
// revoked, so they succeed too.
func (uc *GatewayUC) Logout(ctx context.Context, refreshToken string) error {
	id, _, err := uc.loadRefreshSession(ctx, refreshToken)
	if errors.Is(err, errRefreshSessionGone) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := uc.sessionRepo.DeleteRefreshSession(ctx, id); err != nil {
		return apperror.Unknown(err)
	}
	return nil
}

func (uc *GatewayUC) issueAccessToken(session *models.AuthSession) (*models.TokenResponse, error) {
	claims, err := uc.tokens.IssueFromUpstreamAuth(session)
	if err != nil {
		return nil, err
	}
	token, err := uc.tokens.Sign(claims)
	if err != nil {
		return nil, apperror.Unknown(err)
	}
	return &models.TokenResponse{
		TokenType:   constants.TokenTypeBearer,
		AccessToken: token,
		ExpiresIn:   int64(claims.ExpiresAt.Sub(claims.IssuedAt).Seconds()),
	}, nil
}

// storeRefreshSession saves session under a new id and returns "<id>.<secret>".
// Only a bcrypt hash of the secret is stored.
func (uc *GatewayUC) storeRefreshSession(ctx context.Context, session *models.AuthSession) (string, error) {
	ttl := session.SessionTokenExpiry.Sub(uc.now())
	if ttl <= 0 {
		return "", apperror.ExpiryTooShort()
	}

	raw := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", apperror.Unknown(fmt.Errorf("failed to generate refresh secret: %w", err))
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Unknown(fmt.Errorf("failed to hash refresh secret: %w", err))
	}

	id := uuid.NewString()
	err = uc.sessionRepo.SaveRefreshSession(ctx, id, &models.RefreshSession{
		Username:           session.Username,
		IsAdmin:            session.IsAdmin,
		Roles:              session.Roles,
		SessionTokenExpiry: session.SessionTokenExpiry,
		SecretHash:         string(hash),
	}, ttl)
	if err != nil {
		return "", apperror.Unknown(err)
	}
	return id + "." + secret, nil
}

var errRefreshSessionGone = apperror.Unauthorized("refresh token expired or revoked")

// loadRefreshSession parses and checks a refresh token against its stored hash
func (uc *GatewayUC) loadRefreshSession(ctx context.Context, refreshToken string) (string, *models.RefreshSession, error) {
	id, secret, ok := strings.Cut(refreshToken, ".")
	if !ok || secret == "" {
		return "", nil, apperror.Unauthorized("malformed refresh token")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", nil, apperror.Unauthorized("malformed refresh token")
	}

	stored, err := uc.sessionRepo.GetRefreshSession(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return "", nil, errRefreshSessionGone
	}
	if err != nil {
		return "", nil, apperror.Unknown(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.SecretHash), []byte(secret)); err != nil {
		logger.Warn("Refresh token secret mismatch", logger.String("token_id", id))
		return "", nil, apperror.Unauthorized("invalid refresh token")
	}
	return id, stored, nil
}
