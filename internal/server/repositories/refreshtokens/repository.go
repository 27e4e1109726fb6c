// Package refreshtokens declares the server-side repository contract for the
// refresh token of each user. A user has at most one stored token, kept only
// as an argon2id hash.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	// Upsert stores tokenHash as the only token of userID, replacing any
	// previous one.
	Upsert(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error

	// FindByUser returns the stored token of userID, or common.ErrorNotFound.
	// Inside a transaction the row stays locked until commit or rollback.
	FindByUser(ctx context.Context, userID int64) (*models.RefreshToken, error)

	// DeleteIfMatches removes the token of userID only while its hash is
	// still tokenHash, and reports whether a row was removed. Two callers
	// racing on the same hash cannot both succeed.
	DeleteIfMatches(ctx context.Context, userID int64, tokenHash string) (bool, error)
}
