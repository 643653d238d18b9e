package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/notification/dto"
	notifRepo "anoa.com/cfptracker/internal/modules/notification/repository"
	"anoa.com/cfptracker/internal/testutil"
	"anoa.com/cfptracker/pkg/apperror"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func newService(t *testing.T) (NotificationService, *gorm.DB) {
	db := testutil.NewDB(t)
	return NewNotificationService(notifRepo.NewNotificationRepository(db), nil, zap.NewNop()), db
}

func TestNotifyRespectsPreferences(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "erin")

	_, err := svc.UpdatePreferences(ctx, user.ID, dto.UpdatePreferencesRequest{MentionsEnabled: boolPtr(false)})
	require.NoError(t, err)

	res, err := svc.Notify(ctx, NotifyInput{UserID: user.ID, Type: entity.NotificationTypeMention, Title: "hi"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedByPreference, res.Outcome)
	assert.Nil(t, res.Notification)

	res, err = svc.Notify(ctx, NotifyInput{UserID: user.ID, Type: entity.NotificationTypeComment, Title: "c", Message: "m", Link: "/x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	require.NotNil(t, res.Notification)
	assert.Equal(t, entity.DeliveryInApp, res.Notification.DeliveryMethod)
	assert.False(t, res.Notification.IsRead)

	var count int64
	require.NoError(t, db.Model(&entity.Notification{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNotifyOncePerEvent(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "frank")
	event := testutil.CreateEvent(t, db, "GopherCon", nil)

	in := NotifyInput{
		UserID:       user.ID,
		Type:         entity.NotificationTypeCFPDeadline,
		Title:        "CFP deadline approaching: GopherCon",
		EventID:      &event.ID,
		OncePerEvent: true,
	}
	res, err := svc.Notify(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)

	res, err = svc.Notify(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedDuplicate, res.Outcome)
}

func TestNotifyPublishesOutsideTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	rdb, _ := testutil.NewRedis(t)
	svc := NewNotificationService(notifRepo.NewNotificationRepository(db), rdb, zap.NewNop())
	user := testutil.CreateUser(t, db, "gina")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, Channel(user.ID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	res, err := svc.Notify(ctx, NotifyInput{UserID: user.ID, Type: entity.NotificationTypeComment, Title: "new comment"})
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got entity.Notification
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, res.Notification.ID, got.ID)
	assert.Equal(t, "new comment", got.Title)
}

func TestNotifyInTransactionRollsBack(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "hank")

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.WithTx(tx).Notify(ctx, NotifyInput{UserID: user.ID, Type: entity.NotificationTypeMention, Title: "x"})
		require.NoError(t, err)
		return apperror.ErrConflict
	})
	require.ErrorIs(t, err, apperror.ErrConflict)

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPreferencesLazyCreateAndValidate(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "iris")

	prefs, err := svc.GetPreferences(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, prefs.CFPDeadlineDaysBefore)

	var rows int64
	require.NoError(t, db.Model(&entity.NotificationPreference{}).Count(&rows).Error)
	assert.Zero(t, rows)

	prefs, err = svc.UpdatePreferences(ctx, user.ID, dto.UpdatePreferencesRequest{CFPDeadlineDaysBefore: intPtr(14)})
	require.NoError(t, err)
	assert.Equal(t, 14, prefs.CFPDeadlineDaysBefore)
	assert.True(t, prefs.MentionsEnabled)

	prefs, err = svc.UpdatePreferences(ctx, user.ID, dto.UpdatePreferencesRequest{CommentsEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, 14, prefs.CFPDeadlineDaysBefore)
	assert.False(t, prefs.CommentsEnabled)

	require.NoError(t, db.Model(&entity.NotificationPreference{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	_, err = svc.UpdatePreferences(ctx, user.ID, dto.UpdatePreferencesRequest{CFPDeadlineDaysBefore: intPtr(0)})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestListAndMarkRead(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "jack")
	other := testutil.CreateUser(t, db, "kate")

	var first *entity.Notification
	for i := 0; i < 3; i++ {
		res, err := svc.Notify(ctx, NotifyInput{UserID: user.ID, Type: entity.NotificationTypeComment, Title: "c"})
		require.NoError(t, err)
		if first == nil {
			first = res.Notification
		}
	}

	list, err := svc.GetNotifications(ctx, user.ID, dto.ListNotificationsQuery{PaginationQuery: commonDto.PaginationQuery{Limit: 2}})
	require.NoError(t, err)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, int64(3), list.Meta.TotalItems)
	assert.Equal(t, 2, list.Meta.TotalPages)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, first.ID, other.ID), apperror.ErrNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, first.ID, user.ID))

	count, err := svc.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	updated, err := svc.MarkAllAsRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	list, err = svc.GetNotifications(ctx, user.ID, dto.ListNotificationsQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, list.Data)
}
