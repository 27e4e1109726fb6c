package services

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// Deletes cascade in storage; these helpers collect the ids that go (or
// change) with a row so their cache entries can be dropped after commit.

func collectIDs[T any](ctx context.Context, list func(context.Context, models.Page) ([]T, error), id func(T) int64) ([]int64, error) {
	var ids []int64
	page := models.Page{Limit: models.MaxPageLimit}
	for {
		items, err := list(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			ids = append(ids, id(it))
		}
		if len(items) < page.Limit {
			return ids, nil
		}
		page.Offset += page.Limit
	}
}

func taskIDsWhere(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, f models.TaskFilter) ([]int64, error) {
	return collectIDs(ctx,
		func(ctx context.Context, p models.Page) ([]*models.Task, error) {
			f.Page = p
			return m.Tasks(tx).List(ctx, f)
		},
		func(t *models.Task) int64 { return t.ID },
	)
}

// dependentsOf returns the projects owned by userID and every task that is
// either inside one of them or assigned to userID.
func dependentsOf(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, userID int64) ([]int64, []int64, error) {
	projectIDs, err := collectIDs(ctx,
		func(ctx context.Context, p models.Page) ([]*models.Project, error) {
			return m.Projects(tx).List(ctx, models.ProjectFilter{OwnerID: userID, Page: p})
		},
		func(p *models.Project) int64 { return p.ID },
	)
	if err != nil {
		return nil, nil, err
	}

	taskIDs, err := taskIDsWhere(ctx, m, tx, models.TaskFilter{AssigneeID: userID})
	if err != nil {
		return nil, nil, err
	}
	for _, projectID := range projectIDs {
		ids, err := taskIDsWhere(ctx, m, tx, models.TaskFilter{ProjectID: projectID})
		if err != nil {
			return nil, nil, err
		}
		taskIDs = append(taskIDs, ids...)
	}

	return projectIDs, taskIDs, nil
}
