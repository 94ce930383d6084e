package repositories_test

import (
	"context"
	"testing"

	"github.com/anonto42/quartfeed/internal/models"
	"github.com/anonto42/quartfeed/internal/repositories"
	"github.com/anonto42/quartfeed/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUsers(t *testing.T, repo repositories.UserRepository, names ...string) []*models.User {
	t.Helper()
	users := make([]*models.User, len(names))
	for i, name := range names {
		u := &models.User{Username: name, Password: "hash"}
		require.NoError(t, repo.CreateUser(context.Background(), u))
		users[i] = u
	}
	return users
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	ctx := context.Background()

	u := createUsers(t, repo, "testuser1")[0]
	assert.NotZero(t, u.ID)

	byName, err := repo.GetUserByUsername(ctx, "testuser1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.Equal(t, "hash", byName.Password)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)

	createUsers(t, repo, "alice")
	err := repo.CreateUser(context.Background(), &models.User{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, repositories.ErrUsernameTaken)
}

func TestUserRepository_SearchUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewPostgresUserRepository(db)
	createUsers(t, repo, "Alice", "malice", "bob", "a_b")

	users, err := repo.SearchUsers(context.Background(), "ALI")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Username)
	assert.Equal(t, "malice", users[1].Username)

	// LIKE wildcards in the query are literal
	users, err = repo.SearchUsers(context.Background(), "_")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a_b", users[0].Username)
}

func TestRelationshipRepository_FollowUnfollow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := repositories.NewPostgresUserRepository(db)
	rels := repositories.NewPostgresRelationshipRepository(db)
	ctx := context.Background()

	u := createUsers(t, users, "alice", "bob", "carol")
	alice, bob, carol := u[0], u[1], u[2]

	ok, err := rels.ExistingRelationship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rels.CreateRelationship(ctx, &models.Relationship{FmUserID: alice.ID, ToUserID: bob.ID}))
	require.NoError(t, rels.CreateRelationship(ctx, &models.Relationship{FmUserID: carol.ID, ToUserID: bob.ID}))
	require.NoError(t, rels.CreateRelationship(ctx, &models.Relationship{FmUserID: alice.ID, ToUserID: carol.ID}))

	ok, err = rels.ExistingRelationship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// direction matters
	ok, err = rels.ExistingRelationship(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	followers, err := rels.GetFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, usernames(followers))

	following, err := rels.GetFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, usernames(following))

	n, err := rels.GetFollowersCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = rels.GetFollowingCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, rels.DeleteRelationship(ctx, alice.ID, bob.ID))
	ok, err = rels.ExistingRelationship(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, rels.DeleteRelationship(ctx, alice.ID, bob.ID), repositories.ErrRelationshipNotFound)
}

func TestRelationshipRepository_DuplicateRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	users := repositories.NewPostgresUserRepository(db)
	rels := repositories.NewPostgresRelationshipRepository(db)
	ctx := context.Background()

	u := createUsers(t, users, "alice", "bob")
	require.NoError(t, rels.CreateRelationship(ctx, &models.Relationship{FmUserID: u[0].ID, ToUserID: u[1].ID}))
	err := rels.CreateRelationship(ctx, &models.Relationship{FmUserID: u[0].ID, ToUserID: u[1].ID})
	assert.ErrorIs(t, err, repositories.ErrAlreadyFollowing)

	n, err := rels.GetFollowingCount(ctx, u[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCounterRepository_Increment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repositories.NewPostgresCounterRepository(db)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func usernames(users []models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Username
	}
	return out
}
