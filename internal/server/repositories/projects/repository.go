// Package projects stores projects in PostgreSQL or in memory.
package projects

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	List(ctx context.Context, f models.ProjectFilter) ([]*models.Project, error)
	// UpdateTitle renames project id and returns the stored row.
	UpdateTitle(ctx context.Context, id int64, title string) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}
