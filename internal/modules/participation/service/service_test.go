package service

import (
	"context"
	"testing"

	"anoa.com/cfptracker/internal/entity"
	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	"anoa.com/cfptracker/internal/modules/participation/dto"
	"anoa.com/cfptracker/internal/modules/participation/repository"
	"anoa.com/cfptracker/internal/testutil"
	"anoa.com/cfptracker/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetParticipationUpserts(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewParticipationService(repository.NewParticipationRepository(db), eventRepo.NewEventRepository(db))
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "alice")
	event := testutil.CreateEvent(t, db, "GopherCon", nil)

	_, err := svc.Set(ctx, event.ID, user.ID, dto.SetParticipationRequest{
		Type: entity.ParticipationSpeak, Status: entity.ParticipationInterested,
	})
	require.NoError(t, err)

	res, err := svc.Set(ctx, event.ID, user.ID, dto.SetParticipationRequest{
		Type: entity.ParticipationSpeak, Status: entity.ParticipationConfirmed, Notes: " flights booked ",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ParticipationConfirmed, res.Status)
	assert.Equal(t, "flights booked", res.Notes)
	assert.Equal(t, "alice", res.User.Username)

	list, err := svc.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSetParticipationUnknownEvent(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewParticipationService(repository.NewParticipationRepository(db), eventRepo.NewEventRepository(db))
	user := testutil.CreateUser(t, db, "alice")

	_, err := svc.Set(context.Background(), uuid.New(), user.ID, dto.SetParticipationRequest{
		Type: entity.ParticipationAttend, Status: entity.ParticipationApplied,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRemoveParticipation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewParticipationService(repository.NewParticipationRepository(db), eventRepo.NewEventRepository(db))
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "alice")
	event := testutil.CreateEvent(t, db, "GopherCon", nil)
	_, err := svc.Set(ctx, event.ID, user.ID, dto.SetParticipationRequest{
		Type: entity.ParticipationAttend, Status: entity.ParticipationApplied,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, event.ID, user.ID))
	assert.ErrorIs(t, svc.Remove(ctx, event.ID, user.ID), apperror.ErrNotFound)
}
