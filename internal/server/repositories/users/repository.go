// Package users declares the storage contract for user accounts and provides
// PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt. A taken username or
	// email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Taken reports whether another account than exceptID already uses
	// username or email.
	Taken(ctx context.Context, username, email string, exceptID int64) (bool, error)
	List(ctx context.Context, f models.UserFilter) ([]*models.User, error)
	// Update writes username, email, password hash and phone of user.
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
