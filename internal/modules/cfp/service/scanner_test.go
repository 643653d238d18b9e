package service

import (
	"context"
	"testing"
	"time"

	"anoa.com/cfptracker/internal/entity"
	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	notifDto "anoa.com/cfptracker/internal/modules/notification/dto"
	notifRepo "anoa.com/cfptracker/internal/modules/notification/repository"
	notification "anoa.com/cfptracker/internal/modules/notification/service"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/internal/testutil"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var scanNow = time.Date(2026, time.May, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	scanner  DeadlineScanner
	notifier notification.NotificationService
}

func newFixture(t *testing.T, locker *redislock.Locker) *fixture {
	db := testutil.NewDB(t)
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil, zap.NewNop())
	return &fixture{
		db:       db,
		notifier: notifier,
		scanner:  NewDeadlineScanner(userRepo.NewUserRepository(db), eventRepo.NewEventRepository(db), notifier, locker, nil, zap.NewNop()),
	}
}

func (f *fixture) deadlineNotifications(t *testing.T) []entity.Notification {
	var list []entity.Notification
	require.NoError(t, f.db.Where("type = ?", entity.NotificationTypeCFPDeadline).Order("created_at asc").Find(&list).Error)
	return list
}

func TestDeadlineWindow(t *testing.T) {
	from, to := DeadlineWindow(time.Date(2026, time.May, 10, 23, 30, 0, 0, time.UTC), 7, nil)
	assert.Equal(t, time.Date(2026, time.May, 16, 12, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.May, 17, 12, 0, 0, 0, time.UTC), to)
}

func TestDeadlineWindowUsesLocalDate(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 08:00 in Tokyo is still May 9 in UTC.
	from, to := DeadlineWindow(time.Date(2026, time.May, 10, 8, 0, 0, 0, tokyo), 7, tokyo)
	assert.Equal(t, time.Date(2026, time.May, 16, 12, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.May, 17, 12, 0, 0, 0, time.UTC), to)
}

func TestScanInScannerTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	db := testutil.NewDB(t)
	notifier := notification.NewNotificationService(notifRepo.NewNotificationRepository(db), nil, zap.NewNop())
	f := &fixture{
		db:       db,
		notifier: notifier,
		scanner:  NewDeadlineScanner(userRepo.NewUserRepository(db), eventRepo.NewEventRepository(db), notifier, nil, tokyo, zap.NewNop()),
	}
	testutil.CreateUser(t, db, "alice")
	due := testutil.CreateEvent(t, db, "SevenDaysLocal", testutil.Date(2026, time.May, 17))
	testutil.CreateEvent(t, db, "SixDaysLocal", testutil.Date(2026, time.May, 16))

	report, err := f.scanner.Scan(context.Background(), time.Date(2026, time.May, 10, 8, 0, 0, 0, tokyo))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	list := f.deadlineNotifications(t)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].EventID)
	assert.Equal(t, due.ID, *list[0].EventID)
	assert.Equal(t, "The CFP for SevenDaysLocal closes in 7 day(s).", list[0].Message)
}

func TestScanNotifiesAtLeadTime(t *testing.T) {
	f := newFixture(t, nil)
	user := testutil.CreateUser(t, f.db, "alice")
	due := testutil.CreateEvent(t, f.db, "GopherCon", testutil.Date(2026, time.May, 17))
	testutil.CreateEvent(t, f.db, "TooFar", testutil.Date(2026, time.May, 18))
	testutil.CreateEvent(t, f.db, "TooClose", testutil.Date(2026, time.May, 16))

	report, err := f.scanner.Scan(context.Background(), scanNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Users)
	assert.Equal(t, 1, report.EventsMatched)
	assert.Equal(t, 1, report.Sent)

	list := f.deadlineNotifications(t)
	require.Len(t, list, 1)
	n := list[0]
	assert.Equal(t, user.ID, n.UserID)
	assert.Equal(t, "CFP deadline approaching: GopherCon", n.Title)
	assert.Equal(t, "The CFP for GopherCon closes in 7 day(s).", n.Message)
	assert.Equal(t, "/events/"+due.ID.String(), n.Link)
	require.NotNil(t, n.EventID)
	assert.Equal(t, due.ID, *n.EventID)
	assert.Nil(t, n.ActorID)
}

func TestScanIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	testutil.CreateUser(t, f.db, "alice")
	testutil.CreateEvent(t, f.db, "GopherCon", testutil.Date(2026, time.May, 17))

	_, err := f.scanner.Scan(context.Background(), scanNow)
	require.NoError(t, err)
	report, err := f.scanner.Scan(context.Background(), scanNow.Add(3*time.Hour))
	require.NoError(t, err)

	assert.Zero(t, report.Sent)
	assert.Equal(t, 1, report.SkippedDuplicate)
	assert.Len(t, f.deadlineNotifications(t), 1)
}

func TestScanHonorsPreferences(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	muted := testutil.CreateUser(t, f.db, "muted")
	early := testutil.CreateUser(t, f.db, "early")
	testutil.CreateEvent(t, f.db, "GopherCon", testutil.Date(2026, time.May, 17))
	testutil.CreateEvent(t, f.db, "KubeCon", testutil.Date(2026, time.May, 24))

	off := false
	_, err := f.notifier.UpdatePreferences(ctx, muted.ID, notifDto.UpdatePreferencesRequest{CFPDeadlinesEnabled: &off})
	require.NoError(t, err)
	days := 14
	_, err = f.notifier.UpdatePreferences(ctx, early.ID, notifDto.UpdatePreferencesRequest{CFPDeadlineDaysBefore: &days})
	require.NoError(t, err)

	report, err := f.scanner.Scan(ctx, scanNow)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Users)

	list := f.deadlineNotifications(t)
	require.Len(t, list, 1)
	assert.Equal(t, early.ID, list[0].UserID)
	assert.Equal(t, "CFP deadline approaching: KubeCon", list[0].Title)
	assert.Equal(t, "The CFP for KubeCon closes in 14 day(s).", list[0].Message)
}

func TestScanRejectsConcurrentRun(t *testing.T) {
	rdb, _ := testutil.NewRedis(t)
	locker := redislock.New(rdb)
	f := newFixture(t, locker)

	release, err := locker.Acquire(context.Background(), lockKey, time.Minute)
	require.NoError(t, err)

	_, err = f.scanner.Scan(context.Background(), scanNow)
	assert.ErrorIs(t, err, ErrScanInProgress)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	require.NoError(t, release(context.Background()))
	_, err = f.scanner.Scan(context.Background(), scanNow)
	assert.NoError(t, err)
}
