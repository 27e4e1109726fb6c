package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	var deleted []int64
	repo := NewMemoryRepository(func(_ context.Context, id int64) { deleted = append(deleted, id) })

	alice, err := repo.Create(ctx, &models.User{Username: "alice", Email: "a@x", PasswordHash: "h", Role: "user"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	_, err = repo.Create(ctx, &models.User{Username: "alice", Email: "other@x"})
	assert.ErrorIs(t, err, common.ErrorConflict)
	_, err = repo.Create(ctx, &models.User{Username: "other", Email: "a@x"})
	assert.ErrorIs(t, err, common.ErrorConflict)

	bob, err := repo.Create(ctx, &models.User{Username: "bob", Email: "b@x", PasswordHash: "h", Role: "user"})
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	got.Email = "mutated@x"
	again, err := repo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x", again.Email, "returned values must be copies")

	taken, err := repo.Taken(ctx, "bob", "", alice.ID)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.Taken(ctx, "bob", "b@x", bob.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = repo.Update(ctx, &models.User{ID: bob.ID, Username: "alice", Email: "b@x"})
	assert.ErrorIs(t, err, common.ErrorConflict)

	updated, err := repo.Update(ctx, &models.User{ID: bob.ID, Username: "robert", Email: "b@x", PasswordHash: "h2", Phone: "1"})
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Username)
	assert.Equal(t, "user", updated.Role, "role is not updatable")

	_, err = repo.Update(ctx, &models.User{ID: 99})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Delete(ctx, bob.ID))
	assert.Equal(t, []int64{bob.ID}, deleted)
	assert.ErrorIs(t, repo.Delete(ctx, bob.ID), common.ErrorNotFound)
	_, err = repo.GetByID(ctx, bob.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(nil)
	for _, name := range []string{"alice", "Alicia", "bob", "carol"} {
		_, err := repo.Create(ctx, &models.User{Username: name, Email: name + "@x"})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, models.UserFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "alice", all[0].Username)

	ali, err := repo.List(ctx, models.UserFilter{Username: "ALI"})
	require.NoError(t, err)
	assert.Len(t, ali, 2)

	one, err := repo.List(ctx, models.UserFilter{OnlyID: 3})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "bob", one[0].Username)

	page, err := repo.List(ctx, models.UserFilter{Page: models.Page{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "bob", page[0].Username)
}
