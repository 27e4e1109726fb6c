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

// MemoryRepositoryManager hands out the same in-memory repositories for any
// DBTX; pair it with dbx.DirectRunner. Deleting a user removes their refresh
// token and projects and unassigns their tasks; deleting a project removes
// its tasks, mirroring the SQL schema.
type MemoryRepositoryManager struct {
	users         *users.MemoryRepository
	projects      *projects.MemoryRepository
	tasks         *tasks.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	m := &MemoryRepositoryManager{refreshTokens: refreshtokens.NewMemoryRepository()}

	m.tasks = tasks.NewMemoryRepository(
		func(ctx context.Context, id int64) bool { _, err := m.projects.GetByID(ctx, id); return err == nil },
		func(ctx context.Context, id int64) bool { _, err := m.users.GetByID(ctx, id); return err == nil },
	)
	m.projects = projects.NewMemoryRepository(m.tasks.DeleteByProject)
	m.users = users.NewMemoryRepository(func(ctx context.Context, id int64) {
		m.refreshTokens.DeleteByUser(ctx, id)
		m.tasks.Unassign(ctx, id)
		m.projects.DeleteByOwner(ctx, id)
	})
	return m
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Projects(dbx.DBTX) projects.Repository { return m.projects }

func (m *MemoryRepositoryManager) Tasks(dbx.DBTX) tasks.Repository { return m.tasks }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}
