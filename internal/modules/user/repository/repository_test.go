package repository

import (
	"context"
	"testing"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usernames(users []entity.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func TestFindByMentionTokens(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, "alice")
	bob := &entity.User{Username: "robert", Email: "bob@example.com", Name: "Bob", PasswordHash: "x"}
	require.NoError(t, db.Create(bob).Error)
	testutil.CreateUser(t, db, "carol")

	users, err := repo.FindByMentionTokens(ctx, []string{"alice", "bob", "alice", "nobody"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "robert"}, usernames(users))

	// "_" is literal, so b_b does not match bob@.
	users, err = repo.FindByMentionTokens(ctx, []string{"b_b"})
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = repo.FindByMentionTokens(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSearch(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "alfred")
	testutil.CreateUser(t, db, "bob")

	users, err := repo.Search(context.Background(), "AL", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alfred", "alice"}, usernames(users))

	users, err = repo.Search(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
