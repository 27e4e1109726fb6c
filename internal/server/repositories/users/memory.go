package users

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories"
)

// MemoryRepository keeps users in process memory. Values are copied in and
// out so callers never share state with the store.
type MemoryRepository struct {
	mu       sync.RWMutex
	rows     map[int64]models.User
	nextID   int64
	onDelete func(ctx context.Context, id int64)
}

// NewMemoryRepository returns an empty store. onDelete, if set, runs after a
// user is removed and outside the store lock; it stands in for ON DELETE
// CASCADE.
func NewMemoryRepository(onDelete func(ctx context.Context, id int64)) *MemoryRepository {
	return &MemoryRepository{rows: make(map[int64]models.User), onDelete: onDelete}
}

func (r *MemoryRepository) conflicts(username, email string, exceptID int64) bool {
	for id, u := range r.rows {
		if id != exceptID && (u.Username == username || u.Email == email) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(user.Username, user.Email, 0) {
		return nil, common.ErrorConflict
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.rows[user.ID] = *user
	return user, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.rows {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Taken(_ context.Context, username, email string, exceptID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conflicts(username, email, exceptID), nil
}

func (r *MemoryRepository) List(_ context.Context, f models.UserFilter) ([]*models.User, error) {
	r.mu.RLock()
	matched := make([]*models.User, 0, len(r.rows))
	for _, u := range r.rows {
		if f.OnlyID != 0 && u.ID != f.OnlyID {
			continue
		}
		if !repositories.ContainsFold(u.Username, f.Username) || !repositories.ContainsFold(u.Email, f.Email) {
			continue
		}
		u := u
		matched = append(matched, &u)
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.User) int { return cmp.Compare(a.ID, b.ID) })
	return repositories.Paginate(matched, f.Page), nil
}

func (r *MemoryRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if r.conflicts(user.Username, user.Email, user.ID) {
		return nil, common.ErrorConflict
	}

	current.Username = user.Username
	current.Email = user.Email
	current.PasswordHash = user.PasswordHash
	current.Phone = user.Phone
	r.rows[user.ID] = current
	return &current, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	_, ok := r.rows[id]
	delete(r.rows, id)
	r.mu.Unlock()

	if !ok {
		return common.ErrorNotFound
	}
	if r.onDelete != nil {
		r.onDelete(ctx, id)
	}
	return nil
}
