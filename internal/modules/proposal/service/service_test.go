package service

import (
	"context"
	"testing"

	"anoa.com/cfptracker/internal/entity"
	activityRepo "anoa.com/cfptracker/internal/modules/activity/repository"
	activity "anoa.com/cfptracker/internal/modules/activity/service"
	notifDto "anoa.com/cfptracker/internal/modules/notification/dto"
	notifRepo "anoa.com/cfptracker/internal/modules/notification/repository"
	notification "anoa.com/cfptracker/internal/modules/notification/service"
	"anoa.com/cfptracker/internal/modules/proposal/dto"
	"anoa.com/cfptracker/internal/modules/proposal/repository"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/internal/testutil"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      ProposalService
	notifier notification.NotificationService
	owner    *entity.User
	reviewer *entity.User
	proposal *entity.Proposal
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	tx := database.NewTransactor(db)
	users := userRepo.NewUserRepository(db)
	acts := activityRepo.NewActivityRepository(db)
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil, zap.NewNop())
	activities := activity.NewActivityService(acts, users, notifier, tx, nil, 0, zap.NewNop())

	svc := NewProposalService(repository.NewProposalRepository(db), users, acts, activities, notifier, tx, zap.NewNop())

	owner := testutil.CreateUser(t, db, "olivia")
	event := testutil.CreateEvent(t, db, "KubeCon", nil)
	talk := testutil.CreateTalk(t, db, owner, "Operators 101")

	return &fixture{
		db:       db,
		svc:      svc,
		notifier: notifier,
		owner:    owner,
		reviewer: testutil.CreateUser(t, db, "rick"),
		proposal: testutil.CreateProposal(t, db, talk, event, entity.ProposalStatusSubmitted),
	}
}

func (f *fixture) counts(t *testing.T) (activities, notifications int64) {
	require.NoError(t, f.db.Model(&entity.Activity{}).Where("type = ?", entity.ActivityTypeStatusChange).Count(&activities).Error)
	require.NoError(t, f.db.Model(&entity.Notification{}).Where("type = ?", entity.NotificationTypeStatusChange).Count(&notifications).Error)
	return
}

func strPtr(s string) *string { return &s }

func TestUpdateSameStatusIsNoop(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.UpdateProposal(context.Background(), f.proposal.ID, f.reviewer.ID, dto.UpdateProposalRequest{
		Status: strPtr(entity.ProposalStatusSubmitted),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusSubmitted, res.Status)

	activities, notifications := f.counts(t)
	assert.Zero(t, activities)
	assert.Zero(t, notifications)
}

func TestUpdateWithoutStatusIsNoop(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.UpdateProposal(context.Background(), f.proposal.ID, f.reviewer.ID, dto.UpdateProposalRequest{
		Notes: strPtr("reviewed slides"),
	})
	require.NoError(t, err)
	assert.Equal(t, "reviewed slides", res.Notes)

	activities, notifications := f.counts(t)
	assert.Zero(t, activities)
	assert.Zero(t, notifications)
}

func TestUpdateStatusByOtherUserNotifiesOwner(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.UpdateProposal(context.Background(), f.proposal.ID, f.reviewer.ID, dto.UpdateProposalRequest{
		Status: strPtr(entity.ProposalStatusAccepted),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusAccepted, res.Status)

	var acts []entity.Activity
	require.NoError(t, f.db.Where("proposal_id = ?", f.proposal.ID).Find(&acts).Error)
	require.Len(t, acts, 1)
	assert.Equal(t, entity.ActivityTypeStatusChange, acts[0].Type)
	assert.Equal(t, entity.ProposalStatusSubmitted, *acts[0].OldStatus)
	assert.Equal(t, entity.ProposalStatusAccepted, *acts[0].NewStatus)
	assert.Equal(t, f.reviewer.ID, acts[0].UserID)

	var notes []entity.Notification
	require.NoError(t, f.db.Where("type = ?", entity.NotificationTypeStatusChange).Find(&notes).Error)
	require.Len(t, notes, 1)
	n := notes[0]
	assert.Equal(t, f.owner.ID, n.UserID)
	assert.Equal(t, "Rick updated your proposal status", n.Title)
	assert.Equal(t, "Operators 101 at KubeCon: submitted → accepted", n.Message)
	assert.Equal(t, "/proposals/"+f.proposal.ID.String(), n.Link)
	require.NotNil(t, n.ActivityID)
	assert.Equal(t, acts[0].ID, *n.ActivityID)
	require.NotNil(t, n.ActorID)
	assert.Equal(t, f.reviewer.ID, *n.ActorID)
}

func TestUpdateStatusByOwnerSkipsNotification(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateProposal(context.Background(), f.proposal.ID, f.owner.ID, dto.UpdateProposalRequest{
		Status: strPtr(entity.ProposalStatusAccepted),
	})
	require.NoError(t, err)

	activities, notifications := f.counts(t)
	assert.Equal(t, int64(1), activities)
	assert.Zero(t, notifications)
}

func TestUpdateStatusRespectsOwnerPreference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	off := false
	_, err := f.notifier.UpdatePreferences(ctx, f.owner.ID, notifDto.UpdatePreferencesRequest{StatusChangesEnabled: &off})
	require.NoError(t, err)

	_, err = f.svc.UpdateProposal(ctx, f.proposal.ID, f.reviewer.ID, dto.UpdateProposalRequest{
		Status: strPtr(entity.ProposalStatusRejected),
	})
	require.NoError(t, err)

	activities, notifications := f.counts(t)
	assert.Equal(t, int64(1), activities)
	assert.Zero(t, notifications)
}

func TestUpdateMissingProposal(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateProposal(context.Background(), uuid.New(), f.reviewer.ID, dto.UpdateProposalRequest{
		Status: strPtr(entity.ProposalStatusAccepted),
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateAndDeleteProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event := testutil.CreateEvent(t, f.db, "GopherCon EU", nil)
	res, err := f.svc.CreateProposal(ctx, f.owner.ID, dto.CreateProposalRequest{
		TalkID:      f.proposal.TalkID,
		EventID:     event.ID,
		SubmittedAt: strPtr("2026-03-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalStatusDraft, res.Status)
	assert.Equal(t, entity.TalkTypeRegular, res.TalkType)
	assert.Equal(t, "2026-03-01", *res.SubmittedAt)
	assert.Equal(t, "GopherCon EU", res.Event.Name)

	_, err = f.svc.CreateProposal(ctx, f.owner.ID, dto.CreateProposalRequest{TalkID: uuid.New(), EventID: event.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.UpdateProposal(ctx, res.ID, f.reviewer.ID, dto.UpdateProposalRequest{Status: strPtr(entity.ProposalStatusSubmitted)})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteProposal(ctx, res.ID, f.reviewer.ID), apperror.ErrForbidden)
	require.NoError(t, f.svc.DeleteProposal(ctx, res.ID, f.owner.ID))

	_, err = f.svc.GetProposal(ctx, res.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var leftover int64
	require.NoError(t, f.db.Model(&entity.Activity{}).Where("proposal_id = ?", res.ID).Count(&leftover).Error)
	assert.Zero(t, leftover)
}
