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

// NewTask is the input of task creation. A zero AssigneeID assigns the task
// to its creator; an empty Status means common.DefaultTaskStatus.
type NewTask struct {
	Title      string
	Status     string
	ProjectID  int64
	AssigneeID int64
}

type TaskService struct {
	runner dbx.TxRunner
	repos  repomanager.RepositoryManager
	rules  policy.TaskRules
	cache  *cache.Reader
	log    logging.Logger
}

func NewTaskService(runner dbx.TxRunner, m repomanager.RepositoryManager,
	engine *policy.Engine, reader *cache.Reader, log logging.Logger) *TaskService {
	return &TaskService{runner: runner, repos: m, rules: engine.Tasks(), cache: reader, log: log}
}

func (s *TaskService) Get(ctx context.Context, actor models.Identity, id int64) (*models.Task, error) {
	t, err := cache.ReadThrough(ctx, s.cache, cache.KindTask, id,
		func(ctx context.Context) (*models.Task, error) {
			return s.repos.Tasks(s.runner.Conn()).GetByID(ctx, id)
		},
		func(t *models.Task) error { return policy.Check(s.rules.CanRead(actor, t)) },
	)
	if err != nil {
		return nil, internalError(ctx, s.log, "get task", err)
	}
	return t, nil
}

// List returns all tasks to admins and assigned tasks to everyone else.
func (s *TaskService) List(ctx context.Context, actor models.Identity, f models.TaskFilter) ([]*models.Task, error) {
	if !actor.IsAdmin() {
		f.AssigneeID = actor.ID
	}
	f.Page = f.Page.Normalize()

	list, err := s.repos.Tasks(s.runner.Conn()).List(ctx, f)
	if err != nil {
		return nil, internalError(ctx, s.log, "list tasks", err)
	}
	return list, nil
}

// Create adds a task to an existing project. Both the project and the
// assignee must exist, otherwise common.ErrorNotFound is returned.
func (s *TaskService) Create(ctx context.Context, actor models.Identity, in NewTask) (*models.Task, error) {
	if err := policy.Check(s.rules.CanCreate(actor)); err != nil {
		return nil, err
	}
	if err := validTitle(in.Title); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = common.DefaultTaskStatus
	}
	if in.AssigneeID == 0 {
		in.AssigneeID = actor.ID
	}

	var task *models.Task
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Projects(tx).GetByID(ctx, in.ProjectID); err != nil {
			return fmt.Errorf("project %d: %w", in.ProjectID, err)
		}
		if _, err := s.repos.Users(tx).GetByID(ctx, in.AssigneeID); err != nil {
			return fmt.Errorf("assignee %d: %w", in.AssigneeID, err)
		}

		var err error
		task, err = s.repos.Tasks(tx).Create(ctx, &models.Task{
			Title:      in.Title,
			Status:     in.Status,
			ProjectID:  in.ProjectID,
			AssigneeID: in.AssigneeID,
		})
		return err
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "create task", err)
	}
	return task, nil
}

// Update changes title and/or status of task id.
func (s *TaskService) Update(ctx context.Context, actor models.Identity, id int64, upd models.TaskUpdate) (*models.Task, error) {
	task, err := s.repos.Tasks(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, internalError(ctx, s.log, "update task", err)
	}
	if err := policy.Check(s.rules.CanUpdate(actor, task)); err != nil {
		return nil, err
	}

	if upd.Title != nil {
		if err := validTitle(*upd.Title); err != nil {
			return nil, err
		}
		task.Title = *upd.Title
	}
	if upd.Status != nil {
		if strings.TrimSpace(*upd.Status) == "" {
			return nil, fmt.Errorf("%w: status is required", common.ErrorInvalidInput)
		}
		task.Status = *upd.Status
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		task, err = s.repos.Tasks(tx).Update(ctx, task)
		return err
	})
	if err != nil {
		return nil, internalError(ctx, s.log, "update task", err)
	}

	s.cache.Invalidate(ctx, cache.KindTask, id)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actor models.Identity, id int64) error {
	task, err := s.repos.Tasks(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return internalError(ctx, s.log, "delete task", err)
	}
	if err := policy.Check(s.rules.CanDelete(actor, task)); err != nil {
		return err
	}

	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Tasks(tx).Delete(ctx, id)
	})
	if err != nil {
		return internalError(ctx, s.log, "delete task", err)
	}

	s.cache.Invalidate(ctx, cache.KindTask, id)
	return nil
}
