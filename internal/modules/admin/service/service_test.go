package service

import (
	"context"
	"testing"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/admin/dto"
	"anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/internal/testutil"
	"anoa.com/cfptracker/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewAdminService(repo)
	ctx := context.Background()

	res, err := svc.CreateUser(ctx, dto.CreateUserInput{
		Username: "bob_s", Email: " Bob@Example.com ", Password: "secret123", Name: "Bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob_s", res.Username)
	assert.Equal(t, "bob@example.com", res.Email)
	assert.Equal(t, entity.RoleMember, res.Role)

	stored, err := repo.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestCreateUserRejectsDuplicatesAndBadUsernames(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAdminService(repository.NewUserRepository(db))
	ctx := context.Background()
	testutil.CreateUser(t, db, "alice")

	_, err := svc.CreateUser(ctx, dto.CreateUserInput{
		Username: "ALICE", Email: "other@example.com", Password: "secret123", Name: "A",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.CreateUser(ctx, dto.CreateUserInput{
		Username: "carol", Email: "alice@example.com", Password: "secret123", Name: "C",
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.CreateUser(ctx, dto.CreateUserInput{
		Username: "da ve", Email: "dave@example.com", Password: "secret123", Name: "D",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUpdateUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	svc := NewAdminService(repo)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	res, err := svc.UpdateUser(ctx, alice.ID, dto.UpdateAdminUserInput{
		Name: "Alice L", Role: entity.RoleAdmin, Password: "newpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice L", res.Name)
	assert.Equal(t, entity.RoleAdmin, res.Role)
	assert.Equal(t, "alice", res.Username)

	stored, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpassword")))

	// Keeping its own username is not a conflict.
	_, err = svc.UpdateUser(ctx, alice.ID, dto.UpdateAdminUserInput{Username: "alice"})
	assert.NoError(t, err)

	_, err = svc.UpdateUser(ctx, alice.ID, dto.UpdateAdminUserInput{Username: "bob"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.UpdateUser(ctx, uuid.New(), dto.UpdateAdminUserInput{Name: "x"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
