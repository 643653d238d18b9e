// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"anoa.com/cfptracker/internal/bootstrap"
	"anoa.com/cfptracker/internal/entity"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedScoringSettings(db, entity.DefaultScoreThreshold))
	return db
}

// NewRedis starts a miniredis server and returns a client for it.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *entity.User {
	t.Helper()

	u := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		Name:         strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateEvent(t testing.TB, db *gorm.DB, name string, deadline *time.Time) *entity.Event {
	t.Helper()

	e := &entity.Event{Name: name, CFPDeadline: deadline}
	require.NoError(t, db.Create(e).Error)
	return e
}

func CreateTalk(t testing.TB, db *gorm.DB, owner *entity.User, title string) *entity.Talk {
	t.Helper()

	talk := &entity.Talk{Title: title, Abstract: "abstract of " + title, UserID: owner.ID}
	require.NoError(t, db.Create(talk).Error)
	return talk
}

func CreateProposal(t testing.TB, db *gorm.DB, talk *entity.Talk, event *entity.Event, status string) *entity.Proposal {
	t.Helper()

	p := &entity.Proposal{TalkID: talk.ID, EventID: event.ID, UserID: talk.UserID, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Date returns UTC midnight of the given day.
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
