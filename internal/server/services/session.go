package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// Auth event names reported to metrics.
const (
	EventLogin        = "login"
	EventRefresh      = "refresh"
	EventLogout       = "logout"
	EventAuthenticate = "authenticate"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// SessionManager owns the session lifecycle:
// - Register: create a regular account
// - Login: verify credentials and mint a token pair
// - Refresh: rotate the refresh token, single use
// - Logout: revoke the refresh token
// - Authenticate: resolve an access token to an Identity
type SessionManager struct {
	runner     dbx.TxRunner
	repos      repomanager.RepositoryManager
	hasher     PasswordHasher
	codec      *auth.Codec
	tokens     *RefreshTokenStore
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        logging.Logger
	metrics    *metrics.Metrics

	dummyHash func() string
}

func NewSessionManager(
	runner dbx.TxRunner,
	m repomanager.RepositoryManager,
	hasher PasswordHasher,
	codec *auth.Codec,
	cfg *config.Config,
	log logging.Logger,
	mt *metrics.Metrics,
) *SessionManager {
	return &SessionManager{
		runner:     runner,
		repos:      m,
		hasher:     hasher,
		codec:      codec,
		tokens:     NewRefreshTokenStore(m, hasher, cfg.RefreshTokenValidityDuration),
		accessTTL:  cfg.AccessTokenValidityDuration,
		refreshTTL: cfg.RefreshTokenValidityDuration,
		log:        log,
		metrics:    mt,
		// Verified against when the username is unknown, so a miss costs
		// as much as a wrong password.
		dummyHash: sync.OnceValue(func() string {
			h, _ := hasher.Hash(context.Background(), "taskkeeper-dummy-password")
			return h
		}),
	}
}

// Tokens exposes the refresh token store used for rotation.
func (s *SessionManager) Tokens() *RefreshTokenStore { return s.tokens }

func validateCredentials(username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrorInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: malformed email", common.ErrorInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorInvalidInput)
	}
	return nil
}

// Register creates a regular user. A taken username or email yields
// common.ErrorConflict.
func (s *SessionManager) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := validateCredentials(username, email, password); err != nil {
		return nil, err
	}

	repo := s.repos.Users(s.runner.Conn())

	taken, err := repo.Taken(ctx, username, email, 0)
	if err != nil {
		return nil, internalError(ctx, s.log, "register", err)
	}
	if taken {
		return nil, common.ErrorConflict
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, internalError(ctx, s.log, "register", err)
	}

	var user *models.User
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repos.Users(tx).Create(ctx, &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         common.RoleUser,
		})
		return err
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "register", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login checks username and password and stores a fresh refresh token for
// the user, replacing any previous one.
func (s *SessionManager) Login(ctx context.Context, username, password string) (pair *TokenPair, err error) {
	defer func() { s.metrics.AuthEvent(EventLogin, err) }()

	user, err := s.repos.Users(s.runner.Conn()).GetByUsername(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		if dummy := s.dummyHash(); dummy != "" {
			_, _ = s.hasher.Verify(ctx, password, dummy)
		}
		return nil, common.ErrAuthenticationFailed
	}
	if err != nil {
		return nil, internalError(ctx, s.log, "login", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, internalError(ctx, s.log, "login", err)
	}
	if !ok {
		return nil, common.ErrAuthenticationFailed
	}

	pair, err = s.issuePair(user)
	if err != nil {
		return nil, internalError(ctx, s.log, "login", err)
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.tokens.Save(ctx, tx, user.ID, pair.RefreshToken)
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "login", err)
	}

	return pair, nil
}

// Refresh trades a live refresh token for a new pair. The old token is
// revoked and the new one saved in the same transaction, so a failure
// anywhere leaves the old token usable and two concurrent refreshes of the
// same token cannot both succeed.
func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer func() { s.metrics.AuthEvent(EventRefresh, err) }()

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != common.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", common.ErrInvalidToken)
	}

	user, err := s.subject(ctx, claims)
	if err != nil {
		return nil, err
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.tokens.Revoke(ctx, tx, user.ID, refreshToken); err != nil {
			return err
		}

		var err error
		pair, err = s.issuePair(user)
		if err != nil {
			return err
		}

		return s.tokens.Save(ctx, tx, user.ID, pair.RefreshToken)
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "refresh", err)
	}

	return pair, nil
}

// Logout revokes refreshToken. Revoking a token that is no longer stored
// yields common.ErrTokenNotFound.
func (s *SessionManager) Logout(ctx context.Context, refreshToken string) (err error) {
	defer func() { s.metrics.AuthEvent(EventLogout, err) }()

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return err
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.tokens.Revoke(ctx, tx, userID, refreshToken)
	})
	if err != nil {
		return internalError(ctx, s.log, "logout", err)
	}

	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// Authenticate resolves an access token to the caller. The role comes from
// the stored account, not from the token, so demotions apply immediately.
func (s *SessionManager) Authenticate(ctx context.Context, accessToken string) (id models.Identity, err error) {
	defer func() { s.metrics.AuthEvent(EventAuthenticate, err) }()

	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return models.Identity{}, err
	}
	if claims.Type != common.TokenTypeAccess {
		return models.Identity{}, fmt.Errorf("%w: not an access token", common.ErrInvalidToken)
	}

	user, err := s.subject(ctx, claims)
	if err != nil {
		return models.Identity{}, err
	}

	return models.Identity{ID: user.ID, Role: user.Role}, nil
}

// subject loads the account named by the sub claim; a vanished account makes
// the token invalid.
func (s *SessionManager) subject(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users(s.runner.Conn()).GetByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: unknown subject", common.ErrInvalidToken)
	}
	if err != nil {
		return nil, internalError(ctx, s.log, "load token subject", err)
	}
	return user, nil
}

func (s *SessionManager) issuePair(user *models.User) (*TokenPair, error) {
	access, err := s.codec.Issue(user.ID, user.Role, common.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Issue(user.ID, user.Role, common.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: common.BearerTokenType}, nil
}
