package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/cache"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/policy"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

type ProjectService struct {
	runner dbx.TxRunner
	repos  repomanager.RepositoryManager
	rules  policy.ProjectRules
	cache  *cache.Reader
	log    logging.Logger
}

func NewProjectService(runner dbx.TxRunner, m repomanager.RepositoryManager,
	engine *policy.Engine, reader *cache.Reader, log logging.Logger) *ProjectService {
	return &ProjectService{runner: runner, repos: m, rules: engine.Projects(), cache: reader, log: log}
}

func validTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorInvalidInput)
	}
	return nil
}

func (s *ProjectService) Get(ctx context.Context, actor models.Identity, id int64) (*models.Project, error) {
	p, err := cache.ReadThrough(ctx, s.cache, cache.KindProject, id,
		func(ctx context.Context) (*models.Project, error) {
			return s.repos.Projects(s.runner.Conn()).GetByID(ctx, id)
		},
		func(p *models.Project) error { return policy.Check(s.rules.CanRead(actor, p)) },
	)
	if err != nil {
		return nil, internalError(ctx, s.log, "get project", err)
	}
	return p, nil
}

// List returns all projects to admins and owned projects to everyone else.
func (s *ProjectService) List(ctx context.Context, actor models.Identity, f models.ProjectFilter) ([]*models.Project, error) {
	if !actor.IsAdmin() {
		f.OwnerID = actor.ID
	}
	f.Page = f.Page.Normalize()

	list, err := s.repos.Projects(s.runner.Conn()).List(ctx, f)
	if err != nil {
		return nil, internalError(ctx, s.log, "list projects", err)
	}
	return list, nil
}

// Create adds a project owned by actor.
func (s *ProjectService) Create(ctx context.Context, actor models.Identity, title string) (*models.Project, error) {
	if err := policy.Check(s.rules.CanCreate(actor)); err != nil {
		return nil, err
	}
	if err := validTitle(title); err != nil {
		return nil, err
	}

	var project *models.Project
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		project, err = s.repos.Projects(tx).Create(ctx, &models.Project{Title: title, OwnerID: actor.ID})
		return err
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "create project", err)
	}
	return project, nil
}

// Update renames project id.
func (s *ProjectService) Update(ctx context.Context, actor models.Identity, id int64, title string) (*models.Project, error) {
	project, err := s.repos.Projects(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, internalError(ctx, s.log, "update project", err)
	}
	if err := policy.Check(s.rules.CanUpdate(actor, project)); err != nil {
		return nil, err
	}
	if err := validTitle(title); err != nil {
		return nil, err
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		project, err = s.repos.Projects(tx).UpdateTitle(ctx, id, title)
		return err
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "update project", err)
	}

	s.cache.Invalidate(ctx, cache.KindProject, id)
	return project, nil
}

// Delete removes project id and its tasks.
func (s *ProjectService) Delete(ctx context.Context, actor models.Identity, id int64) error {
	project, err := s.repos.Projects(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return internalError(ctx, s.log, "delete project", err)
	}
	if err := policy.Check(s.rules.CanDelete(actor, project)); err != nil {
		return err
	}

	var taskIDs []int64
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		taskIDs, err = taskIDsWhere(ctx, s.repos, tx, models.TaskFilter{ProjectID: id})
		if err != nil {
			return err
		}
		return s.repos.Projects(tx).Delete(ctx, id)
	})
	if err != nil {
		return internalError(ctx, s.log, "delete project", err)
	}

	s.cache.Invalidate(ctx, cache.KindProject, id)
	for _, taskID := range taskIDs {
		s.cache.Invalidate(ctx, cache.KindTask, taskID)
	}
	return nil
}
