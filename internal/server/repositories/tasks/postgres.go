package tasks

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// assignee_id is NULL once the assignee is deleted; it reads back as 0.
const taskColumns = `id, title, status, project_id, COALESCE(assignee_id, 0), created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	if err := row.Scan(&t.ID, &t.Title, &t.Status, &t.ProjectID, &t.AssigneeID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	query :=
		`INSERT INTO tasks (title, status, project_id, assignee_id)
		 VALUES ($1, $2, $3, NULLIF($4, 0))
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, t.Title, t.Status, t.ProjectID, t.AssigneeID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context, f models.TaskFilter) ([]*models.Task, error) {
	page := f.Page.Normalize()
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		   AND ($2 = 0 OR project_id = $2)
		   AND ($3 = 0 OR assignee_id = $3)
		 ORDER BY id
		 LIMIT $4 OFFSET $5`

	rows, err := r.db.QueryContext(ctx, query, f.Title, f.ProjectID, f.AssigneeID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	query :=
		`UPDATE tasks SET title = $2, status = $3
		 WHERE id = $1
		 RETURNING ` + taskColumns

	updated, err := scanTask(r.db.QueryRowContext(ctx, query, t.ID, t.Title, t.Status))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
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
