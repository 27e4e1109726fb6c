// Package tasks stores tasks in PostgreSQL or in memory.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts t; a missing project or assignee yields common.ErrorNotFound.
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, f models.TaskFilter) ([]*models.Task, error)
	// Update writes title and status of t.
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}
