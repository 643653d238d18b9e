package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/activity/dto"
	"anoa.com/cfptracker/internal/modules/activity/repository"
	notifRepo "anoa.com/cfptracker/internal/modules/notification/repository"
	notification "anoa.com/cfptracker/internal/modules/notification/service"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/internal/testutil"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/database"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      ActivityService
	owner    *entity.User
	alice    *entity.User
	bob      *entity.User
	proposal *entity.Proposal
	event    *entity.Event
}

func newFixture(t *testing.T, rdb *redis.Client, limit time.Duration) *fixture {
	db := testutil.NewDB(t)
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil, zap.NewNop())
	svc := NewActivityService(
		repository.NewActivityRepository(db),
		userRepo.NewUserRepository(db),
		notifier,
		database.NewTransactor(db),
		rdb,
		limit,
		zap.NewNop(),
	)

	owner := testutil.CreateUser(t, db, "owner")
	event := testutil.CreateEvent(t, db, "GopherCon", nil)
	talk := testutil.CreateTalk(t, db, owner, "Generics in Practice")

	return &fixture{
		db:       db,
		svc:      svc,
		owner:    owner,
		alice:    testutil.CreateUser(t, db, "alice"),
		bob:      testutil.CreateUser(t, db, "bob"),
		proposal: testutil.CreateProposal(t, db, talk, event, entity.ProposalStatusSubmitted),
		event:    event,
	}
}

func (f *fixture) notifications(t *testing.T, userID uuid.UUID, notifType string) []entity.Notification {
	var out []entity.Notification
	require.NoError(t, f.db.Where("user_id = ? AND type = ?", userID, notifType).Find(&out).Error)
	return out
}

func mentionNames(res *dto.ActivityResponse) []string {
	names := make([]string, 0, len(res.Mentions))
	for _, m := range res.Mentions {
		names = append(names, m.Username)
	}
	return names
}

func TestCreateCommentResolvesMentions(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	res, err := f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{
		ProposalID: &f.proposal.ID,
		Content:    "@alice @bob @alice @ghost looks good",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ActivityTypeComment, res.Type)
	assert.Equal(t, entity.TargetProposal, res.Target.Type)
	assert.Equal(t, f.proposal.ID, res.Target.ID)
	assert.False(t, res.IsEdited)
	assert.Equal(t, "alice", res.Author.Username)
	assert.ElementsMatch(t, []string{"alice", "bob"}, mentionNames(res))

	// the author mentioning themselves is not notified
	assert.Empty(t, f.notifications(t, f.alice.ID, entity.NotificationTypeMention))

	bobs := f.notifications(t, f.bob.ID, entity.NotificationTypeMention)
	require.Len(t, bobs, 1)
	assert.Equal(t, "Alice mentioned you", bobs[0].Title)
	assert.Equal(t, "/proposals/"+f.proposal.ID.String(), bobs[0].Link)
	require.NotNil(t, bobs[0].ActivityID)
	assert.Equal(t, res.ID, *bobs[0].ActivityID)

	owners := f.notifications(t, f.owner.ID, entity.NotificationTypeComment)
	require.Len(t, owners, 1)
	assert.Equal(t, "Alice commented on your proposal", owners[0].Title)
	assert.Contains(t, owners[0].Message, "Generics in Practice at GopherCon")
}

func TestCreateCommentByOwnerSkipsOwnerNotification(t *testing.T) {
	f := newFixture(t, nil, 0)

	_, err := f.svc.CreateComment(context.Background(), f.owner.ID, dto.CreateCommentRequest{
		ProposalID: &f.proposal.ID,
		Content:    "note to self",
	})
	require.NoError(t, err)
	assert.Empty(t, f.notifications(t, f.owner.ID, entity.NotificationTypeComment))
}

func TestCreateCommentValidation(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	_, err := f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{Content: "orphan"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{
		ProposalID: &f.proposal.ID,
		EventID:    &f.event.ID,
		Content:    "two parents",
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{EventID: &f.event.ID, Content: "   "})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	missing := uuid.New()
	_, err = f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{TalkID: &missing, Content: "hello"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var count int64
	require.NoError(t, f.db.Model(&entity.Activity{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateCommentReplacesMentions(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()
	carol := testutil.CreateUser(t, f.db, "carol")

	created, err := f.svc.CreateComment(ctx, f.owner.ID, dto.CreateCommentRequest{
		EventID: &f.event.ID,
		Content: "@alice @bob @alice",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, mentionNames(created))

	updated, err := f.svc.UpdateComment(ctx, created.ID, f.owner.ID, dto.UpdateCommentRequest{Content: "@alice @carol"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "carol"}, mentionNames(updated))
	assert.True(t, updated.IsEdited)
	assert.NotNil(t, updated.EditedAt)
	assert.Equal(t, "@alice @carol", *updated.Content)

	var mentions int64
	require.NoError(t, f.db.Model(&entity.Mention{}).Where("activity_id = ?", created.ID).Count(&mentions).Error)
	assert.Equal(t, int64(2), mentions)

	assert.Len(t, f.notifications(t, f.alice.ID, entity.NotificationTypeMention), 1)
	assert.Len(t, f.notifications(t, carol.ID, entity.NotificationTypeMention), 1)
}

func TestUpdateAndDeleteAreAuthorOnly(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	created, err := f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{
		ProposalID: &f.proposal.ID,
		Content:    "hi @bob",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateComment(ctx, created.ID, f.bob.ID, dto.UpdateCommentRequest{Content: "hijack"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteComment(ctx, created.ID, f.bob.ID), apperror.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteComment(ctx, uuid.New(), f.alice.ID), apperror.ErrNotFound)

	require.NoError(t, f.svc.DeleteComment(ctx, created.ID, f.alice.ID))

	var activities, mentions int64
	require.NoError(t, f.db.Model(&entity.Activity{}).Count(&activities).Error)
	require.NoError(t, f.db.Model(&entity.Mention{}).Count(&mentions).Error)
	assert.Zero(t, activities)
	assert.Zero(t, mentions)
}

func TestStatusChangesAreImmutable(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	activity, err := f.svc.RecordStatusChange(ctx, f.proposal.ID, f.owner.ID, entity.ProposalStatusSubmitted, entity.ProposalStatusAccepted)
	require.NoError(t, err)

	_, err = f.svc.UpdateComment(ctx, activity.ID, f.owner.ID, dto.UpdateCommentRequest{Content: "rewrite history"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteComment(ctx, activity.ID, f.owner.ID), apperror.ErrForbidden)
}

func TestListByTargetAndFeed(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	for _, content := range []string{"first", "second"} {
		_, err := f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{ProposalID: &f.proposal.ID, Content: content})
		require.NoError(t, err)
	}
	_, err := f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{EventID: &f.event.ID, Content: "event note"})
	require.NoError(t, err)

	list, err := f.svc.ListByTarget(ctx, entity.ProposalTarget(f.proposal.ID))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", *list[0].Content)
	assert.Equal(t, "second", *list[1].Content)

	_, err = f.svc.ListByTarget(ctx, entity.TalkTarget(uuid.New()))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	feed, err := f.svc.Feed(ctx, commonDto.PaginationQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, feed.Data, 2)
	assert.Equal(t, int64(3), feed.Meta.TotalItems)
	assert.Equal(t, "event note", *feed.Data[0].Content)
}

func TestCreateCommentRateLimited(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	f := newFixture(t, rdb, time.Minute)
	ctx := context.Background()

	_, err := f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{EventID: &f.event.ID, Content: "one"})
	require.NoError(t, err)

	_, err = f.svc.CreateComment(ctx, f.alice.ID, dto.CreateCommentRequest{EventID: &f.event.ID, Content: "two"})
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	// a failed insert does not burn the caller's slot
	missing := uuid.New()
	_, err = f.svc.CreateComment(ctx, f.bob.ID, dto.CreateCommentRequest{EventID: &missing, Content: "lost"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.svc.CreateComment(ctx, f.bob.ID, dto.CreateCommentRequest{EventID: &f.event.ID, Content: "found"})
	assert.NoError(t, err)
}
