package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// MemoryRepository keeps one token per user behind a mutex; DeleteIfMatches
// compares and deletes under the same lock.
type MemoryRepository struct {
	mu     sync.Mutex
	rows   map[int64]models.RefreshToken
	nextID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[int64]models.RefreshToken)}
}

func (r *MemoryRepository) Upsert(_ context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[userID]
	if !ok {
		r.nextID++
		row = models.RefreshToken{ID: r.nextID, UserID: userID}
	}
	row.TokenHash = tokenHash
	row.ExpiresAt = expiresAt
	row.CreatedAt = time.Now().UTC()
	r.rows[userID] = row
	return nil
}

func (r *MemoryRepository) FindByUser(_ context.Context, userID int64) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &row, nil
}

func (r *MemoryRepository) DeleteIfMatches(_ context.Context, userID int64, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[userID]
	if !ok || row.TokenHash != tokenHash {
		return false, nil
	}
	delete(r.rows, userID)
	return true, nil
}

// DeleteByUser drops the token of userID, if any.
func (r *MemoryRepository) DeleteByUser(_ context.Context, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, userID)
}
