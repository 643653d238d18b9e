package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/cfptracker/internal/entity"
	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	notification "anoa.com/cfptracker/internal/modules/notification/service"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/metrics"
	"anoa.com/cfptracker/pkg/redislock"
	"go.uber.org/zap"
)

const (
	lockKey = "cfp_scan:lock"
	lockTTL = 10 * time.Minute
)

var ErrScanInProgress = fmt.Errorf("%w: a deadline scan is already running", apperror.ErrConflict)

// Report summarizes one scan run.
type Report struct {
	StartedAt           time.Time `json:"started_at"`
	Users               int       `json:"users"`
	EventsMatched       int       `json:"events_matched"`
	Sent                int       `json:"sent"`
	SkippedDuplicate    int       `json:"skipped_duplicate"`
	SkippedByPreference int       `json:"skipped_by_preference"`
}

// DeadlineWindow returns the half-open range [from, to) that holds deadlines falling
// lead days after now's calendar date in loc. Deadlines are stored at UTC midnight, so the
// local date is re-based onto UTC before the window is built. A nil loc means UTC.
func DeadlineWindow(now time.Time, lead int, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	target := today.AddDate(0, 0, lead)
	return target.Add(-12 * time.Hour), target.Add(12 * time.Hour)
}

type DeadlineScanner interface {
	Scan(ctx context.Context, now time.Time) (Report, error)
}

type deadlineScanner struct {
	users    userRepo.UserRepository
	events   eventRepo.EventRepository
	notifier notification.NotificationService
	locker   *redislock.Locker
	loc      *time.Location
	log      *zap.Logger
}

func NewDeadlineScanner(
	users userRepo.UserRepository,
	events eventRepo.EventRepository,
	notifier notification.NotificationService,
	locker *redislock.Locker,
	loc *time.Location,
	log *zap.Logger,
) DeadlineScanner {
	if loc == nil {
		loc = time.UTC
	}
	return &deadlineScanner{
		users:    users,
		events:   events,
		notifier: notifier,
		locker:   locker,
		loc:      loc,
		log:      log,
	}
}

// Scan notifies every user about CFPs closing exactly their lead time from now's date in the
// scanner's location.
// Users are processed in order and the first error stops the run.
func (s *deadlineScanner) Scan(ctx context.Context, now time.Time) (report Report, err error) {
	report.StartedAt = now.UTC()

	release, err := s.locker.Acquire(ctx, lockKey, lockTTL)
	if err != nil {
		if errors.Is(err, redislock.ErrNotAcquired) {
			metrics.DeadlineScansTotal.WithLabelValues("locked").Inc()
			return report, ErrScanInProgress
		}
		return report, err
	}
	defer func() {
		if rerr := release(context.Background()); rerr != nil {
			s.log.Warn("release scan lock", zap.Error(rerr))
		}
	}()

	start := time.Now()
	defer func() {
		metrics.DeadlineScanDuration.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.DeadlineScansTotal.WithLabelValues(result).Inc()
	}()

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return report, fmt.Errorf("list users: %w", err)
	}

	for i := range users {
		if err := s.scanUser(ctx, &users[i], now, &report); err != nil {
			return report, err
		}
	}

	s.log.Info("cfp deadline scan finished",
		zap.Int("users", report.Users),
		zap.Int("events_matched", report.EventsMatched),
		zap.Int("sent", report.Sent),
		zap.Int("skipped_duplicate", report.SkippedDuplicate),
	)
	return report, nil
}

func (s *deadlineScanner) scanUser(ctx context.Context, user *entity.User, now time.Time, report *Report) error {
	prefs, err := s.notifier.GetPreferences(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("preferences for %s: %w", user.ID, err)
	}
	report.Users++
	if !notification.ShouldNotify(prefs, entity.NotificationTypeCFPDeadline) {
		return nil
	}

	lead := prefs.CFPDeadlineDaysBefore
	if lead < 1 {
		lead = entity.DefaultCFPDeadlineDaysBefore
	}
	from, to := DeadlineWindow(now, lead, s.loc)

	events, err := s.events.FindByDeadlineBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("events due for %s: %w", user.ID, err)
	}

	for i := range events {
		event := &events[i]
		report.EventsMatched++

		eventID := event.ID
		res, err := s.notifier.Notify(ctx, notification.NotifyInput{
			UserID:       user.ID,
			Type:         entity.NotificationTypeCFPDeadline,
			Title:        fmt.Sprintf("CFP deadline approaching: %s", event.Name),
			Message:      fmt.Sprintf("The CFP for %s closes in %d day(s).", event.Name, lead),
			Link:         entity.EventTarget(event.ID).Link(),
			EventID:      &eventID,
			OncePerEvent: true,
		})
		if err != nil {
			return fmt.Errorf("notify %s about %s: %w", user.ID, event.ID, err)
		}

		switch res.Outcome {
		case notification.OutcomeSent:
			report.Sent++
		case notification.OutcomeSkippedDuplicate:
			report.SkippedDuplicate++
		case notification.OutcomeSkippedByPreference:
			report.SkippedByPreference++
		}
	}
	return nil
}
