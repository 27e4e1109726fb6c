package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/projects"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
