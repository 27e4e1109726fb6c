package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const userColumns = `id, username, email, password_hash, role, phone, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Phone, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, role, phone)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Role, user.Phone).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, dbx.Classify(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return user, nil
}

func (r *PostgresRepository) Taken(ctx context.Context, username, email string, exceptID int64) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM users
		   WHERE (username = $1 OR email = $2) AND id <> $3
		 )`

	var taken bool
	if err := r.db.QueryRowContext(ctx, query, username, email, exceptID).Scan(&taken); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) List(ctx context.Context, f models.UserFilter) ([]*models.User, error) {
	page := f.Page.Normalize()
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')
		   AND ($2 = '' OR email ILIKE '%' || $2 || '%')
		   AND ($3 = 0 OR id = $3)
		 ORDER BY id
		 LIMIT $4 OFFSET $5`

	rows, err := r.db.QueryContext(ctx, query, f.Username, f.Email, f.OnlyID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users SET username = $2, email = $3, password_hash = $4, phone = $5
		 WHERE id = $1
		 RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Phone))
	if err != nil {
		return nil, dbx.Classify(err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
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
