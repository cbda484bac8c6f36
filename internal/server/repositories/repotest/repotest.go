// Package repotest runs the same behavioural checks against every
// repository backend.
package repotest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the repositories returned by newManager. Each subtest gets
// a fresh manager.
func Run(t *testing.T, newManager func(t *testing.T) repomanager.RepositoryManager) {
	t.Run("users", func(t *testing.T) { testUsers(t, newManager(t)) })
	t.Run("platforms", func(t *testing.T) { testPlatforms(t, newManager(t)) })
}

func testUsers(t *testing.T, m repomanager.RepositoryManager) {
	ctx := context.Background()
	repo := m.Users()

	alice, err := repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: []byte("h1"), CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	bob, err := repo.Create(ctx, &models.User{UserName: "bob", PasswordHash: []byte("h2")})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.NotEqual(t, alice.ID, bob.ID)

	_, err = repo.Create(ctx, &models.User{UserName: "alice"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, []byte("h1"), got.PasswordHash)

	_, err = repo.GetUserByLogin(ctx, "carol")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func testPlatforms(t *testing.T, m repomanager.RepositoryManager) {
	ctx := context.Background()
	repo := m.Platforms()

	empty, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for _, p := range []models.Platform{
		{ID: "a", OwnerID: 1, Name: "Alpha", CreatedDate: created},
		{ID: "b", OwnerID: 1, Name: "Beta", CreatedDate: created},
		{ID: "c", OwnerID: 2, Name: "Gamma", CreatedDate: created},
	} {
		require.NoError(t, repo.Put(ctx, &p))
	}

	list, err := repo.List(ctx, 1)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	slices.Sort(ids)
	assert.Equal(t, []string{"a", "b"}, ids)

	got, err := repo.Get(ctx, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	assert.True(t, got.CreatedDate.Equal(created))

	_, err = repo.Get(ctx, 1, "c")
	require.ErrorIs(t, err, common.ErrorNotFound, "platforms are scoped to their owner")

	got.Name = "Alpha 2"
	require.NoError(t, repo.Put(ctx, got))
	got, err = repo.Get(ctx, 1, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", got.Name)

	require.NoError(t, repo.Delete(ctx, 1, "a"))
	require.ErrorIs(t, repo.Delete(ctx, 1, "a"), common.ErrorNotFound)
	require.ErrorIs(t, repo.Delete(ctx, 9, "a"), common.ErrorNotFound)

	list, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
