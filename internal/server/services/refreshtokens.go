package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// PasswordHasher hashes secrets into self-describing strings and verifies
// candidates against them. cryptox.Hasher is the production implementation.
type PasswordHasher interface {
	Hash(ctx context.Context, secret string) (string, error)
	Verify(ctx context.Context, secret, encoded string) (bool, error)
}

// RefreshTokenStore keeps the single refresh token of each user as a hash.
// Every method works on the handle it is given, so callers decide the
// transaction boundaries.
type RefreshTokenStore struct {
	repos  repomanager.RepositoryManager
	hasher PasswordHasher
	ttl    time.Duration
	now    func() time.Time
}

func NewRefreshTokenStore(m repomanager.RepositoryManager, hasher PasswordHasher, ttl time.Duration) *RefreshTokenStore {
	return &RefreshTokenStore{repos: m, hasher: hasher, ttl: ttl, now: time.Now}
}

// Save replaces whatever token userID had with raw.
func (s *RefreshTokenStore) Save(ctx context.Context, tx dbx.DBTX, userID int64, raw string) error {
	hash, err := s.hasher.Hash(ctx, raw)
	if err != nil {
		return err
	}
	return s.repos.RefreshTokens(tx).Upsert(ctx, userID, hash, s.now().Add(s.ttl))
}

// Validate returns the stored row when raw is the live token of userID.
// Absent, expired and mismatching tokens all yield common.ErrTokenNotFound.
func (s *RefreshTokenStore) Validate(ctx context.Context, tx dbx.DBTX, userID int64, raw string) (*models.RefreshToken, error) {
	stored, err := s.repos.RefreshTokens(tx).FindByUser(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	if stored.Expired(s.now()) {
		return nil, common.ErrTokenNotFound
	}

	ok, err := s.hasher.Verify(ctx, raw, stored.TokenHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrTokenNotFound
	}

	return stored, nil
}

// Revoke deletes raw if it is still the live token of userID. When two
// callers race on the same token only one of them gets a nil error.
func (s *RefreshTokenStore) Revoke(ctx context.Context, tx dbx.DBTX, userID int64, raw string) error {
	stored, err := s.Validate(ctx, tx, userID, raw)
	if err != nil {
		return err
	}

	deleted, err := s.repos.RefreshTokens(tx).DeleteIfMatches(ctx, userID, stored.TokenHash)
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrTokenNotFound
	}
	return nil
}
