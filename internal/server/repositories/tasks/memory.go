package tasks

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

// Exists reports whether a referenced row is present. It stands in for the
// foreign keys of the tasks table.
type Exists func(ctx context.Context, id int64) bool

type MemoryRepository struct {
	mu             sync.RWMutex
	rows           map[int64]models.Task
	nextID         int64
	projectExists  Exists
	assigneeExists Exists
}

// NewMemoryRepository returns an empty store. Nil checks accept any id.
func NewMemoryRepository(projectExists, assigneeExists Exists) *MemoryRepository {
	return &MemoryRepository{
		rows:           make(map[int64]models.Task),
		projectExists:  projectExists,
		assigneeExists: assigneeExists,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if r.projectExists != nil && !r.projectExists(ctx, t.ProjectID) {
		return nil, common.ErrorNotFound
	}
	if t.AssigneeID != 0 && r.assigneeExists != nil && !r.assigneeExists(ctx, t.AssigneeID) {
		return nil, common.ErrorNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = time.Now().UTC()
	r.rows[t.ID] = *t
	return t, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) List(_ context.Context, f models.TaskFilter) ([]*models.Task, error) {
	r.mu.RLock()
	matched := make([]*models.Task, 0, len(r.rows))
	for _, t := range r.rows {
		if f.ProjectID != 0 && t.ProjectID != f.ProjectID {
			continue
		}
		if f.AssigneeID != 0 && t.AssigneeID != f.AssigneeID {
			continue
		}
		if !repositories.ContainsFold(t.Title, f.Title) {
			continue
		}
		t := t
		matched = append(matched, &t)
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.Task) int { return cmp.Compare(a.ID, b.ID) })
	return repositories.Paginate(matched, f.Page), nil
}

func (r *MemoryRepository) Update(_ context.Context, t *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[t.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	current.Title = t.Title
	current.Status = t.Status
	r.rows[t.ID] = current
	return &current, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

// DeleteByProject drops every task of projectID.
func (r *MemoryRepository) DeleteByProject(_ context.Context, projectID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.rows {
		if t.ProjectID == projectID {
			delete(r.rows, id)
		}
	}
}

// Unassign clears the assignee of every task assigned to userID.
func (r *MemoryRepository) Unassign(_ context.Context, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.rows {
		if t.AssigneeID == userID {
			t.AssigneeID = 0
			r.rows[id] = t
		}
	}
}
