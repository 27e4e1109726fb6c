package projects

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	var cascaded []int64
	repo := NewMemoryRepository(func(_ context.Context, id int64) { cascaded = append(cascaded, id) })

	a, err := repo.Create(ctx, &models.Project{Title: "Alpha", OwnerID: 1})
	require.NoError(t, err)
	b, err := repo.Create(ctx, &models.Project{Title: "beta", OwnerID: 2})
	require.NoError(t, err)
	c, err := repo.Create(ctx, &models.Project{Title: "alphabet", OwnerID: 2})
	require.NoError(t, err)

	owned, err := repo.List(ctx, models.ProjectFilter{OwnerID: 2})
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, b.ID, owned[0].ID)

	alpha, err := repo.List(ctx, models.ProjectFilter{Title: "ALPHA"})
	require.NoError(t, err)
	assert.Len(t, alpha, 2)

	renamed, err := repo.UpdateTitle(ctx, a.ID, "Alpha v2")
	require.NoError(t, err)
	assert.Equal(t, "Alpha v2", renamed.Title)
	_, err = repo.UpdateTitle(ctx, 99, "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), common.ErrorNotFound)

	repo.DeleteByOwner(ctx, 2)
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ElementsMatch(t, []int64{a.ID, b.ID, c.ID}, cascaded)
}
