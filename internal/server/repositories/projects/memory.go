package projects

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

type MemoryRepository struct {
	mu       sync.RWMutex
	rows     map[int64]models.Project
	nextID   int64
	onDelete func(ctx context.Context, id int64)
}

// NewMemoryRepository returns an empty store; onDelete runs after each
// removed project, outside the lock.
func NewMemoryRepository(onDelete func(ctx context.Context, id int64)) *MemoryRepository {
	return &MemoryRepository{rows: make(map[int64]models.Project), onDelete: onDelete}
}

func (r *MemoryRepository) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	r.rows[p.ID] = *p
	return p, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) List(_ context.Context, f models.ProjectFilter) ([]*models.Project, error) {
	r.mu.RLock()
	matched := make([]*models.Project, 0, len(r.rows))
	for _, p := range r.rows {
		if f.OwnerID != 0 && p.OwnerID != f.OwnerID {
			continue
		}
		if !repositories.ContainsFold(p.Title, f.Title) {
			continue
		}
		p := p
		matched = append(matched, &p)
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Project) int { return cmp.Compare(a.ID, b.ID) })
	return repositories.Paginate(matched, f.Page), nil
}

func (r *MemoryRepository) UpdateTitle(_ context.Context, id int64, title string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Title = title
	r.rows[id] = p
	return &p, nil
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

// DeleteByOwner removes every project of ownerID, running onDelete for each.
func (r *MemoryRepository) DeleteByOwner(ctx context.Context, ownerID int64) {
	r.mu.Lock()
	var removed []int64
	for id, p := range r.rows {
		if p.OwnerID == ownerID {
			removed = append(removed, id)
			delete(r.rows, id)
		}
	}
	r.mu.Unlock()

	if r.onDelete != nil {
		for _, id := range removed {
			r.onDelete(ctx, id)
		}
	}
}
