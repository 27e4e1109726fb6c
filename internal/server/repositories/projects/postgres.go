package projects

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (title, owner_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, p.Title, p.OwnerID).Scan(&p.ID, &p.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT id, title, owner_id, created_at FROM projects WHERE id = $1`

	p := &models.Project{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.OwnerID, &p.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, f models.ProjectFilter) ([]*models.Project, error) {
	page := f.Page.Normalize()
	query :=
		`SELECT id, title, owner_id, created_at FROM projects
		 WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		   AND ($2 = 0 OR owner_id = $2)
		 ORDER BY id
		 LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, f.Title, f.OwnerID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Project, 0)
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Title, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, id int64, title string) (*models.Project, error) {
	query :=
		`UPDATE projects SET title = $2
		 WHERE id = $1
		 RETURNING id, title, owner_id, created_at`

	p := &models.Project{}
	if err := r.db.QueryRowContext(ctx, query, id, title).Scan(&p.ID, &p.Title, &p.OwnerID, &p.CreatedAt); err != nil {
		return nil, dbx.Classify(err)
	}
	return p, nil
}

// Delete removes the project; its tasks go with it (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
