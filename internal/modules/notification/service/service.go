package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/notification/dto"
	notifRepo "anoa.com/cfptracker/internal/modules/notification/repository"
	"anoa.com/cfptracker/pkg/apperror"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"anoa.com/cfptracker/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Outcome string

const (
	OutcomeSent                Outcome = "sent"
	OutcomeSkippedByPreference Outcome = "skipped_by_preference"
	OutcomeSkippedDuplicate    Outcome = "skipped_duplicate"
)

type NotifyInput struct {
	UserID     uuid.UUID
	Type       string
	Title      string
	Message    string
	Link       string
	ActorID    *uuid.UUID
	ActivityID *uuid.UUID
	EventID    *uuid.UUID
	// OncePerEvent skips the insert when the user already has a notification
	// of this type for EventID.
	OncePerEvent bool
}

type Result struct {
	Outcome      Outcome
	Notification *entity.Notification
}

// Channel is the Redis pub/sub channel carrying a user's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	// WithTx returns a writer bound to tx. It never publishes; callers pass the sent
	// notifications to Publish once tx has committed.
	WithTx(tx *gorm.DB) NotificationService
	Notify(ctx context.Context, in NotifyInput) (Result, error)
	Publish(ctx context.Context, notifications ...*entity.Notification)

	GetPreferences(ctx context.Context, userID uuid.UUID) (*entity.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req dto.UpdatePreferencesRequest) (*entity.NotificationPreference, error)

	GetNotifications(ctx context.Context, userID uuid.UUID, query dto.ListNotificationsQuery) (*dto.NotificationListResponse, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *zap.Logger
	inTx        bool
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

func (s *notificationService) WithTx(tx *gorm.DB) NotificationService {
	return &notificationService{
		repo:        s.repo.WithTx(tx),
		redisClient: s.redisClient,
		log:         s.log,
		inTx:        true,
	}
}

func (s *notificationService) Notify(ctx context.Context, in NotifyInput) (Result, error) {
	prefs, err := s.GetPreferences(ctx, in.UserID)
	if err != nil {
		return Result{}, err
	}

	if !ShouldNotify(prefs, in.Type) {
		s.record(in.Type, OutcomeSkippedByPreference)
		return Result{Outcome: OutcomeSkippedByPreference}, nil
	}

	if in.OncePerEvent && in.EventID != nil {
		exists, err := s.repo.ExistsForEvent(ctx, in.UserID, *in.EventID, in.Type)
		if err != nil {
			return Result{}, err
		}
		if exists {
			s.record(in.Type, OutcomeSkippedDuplicate)
			return Result{Outcome: OutcomeSkippedDuplicate}, nil
		}
	}

	notification := &entity.Notification{
		UserID:         in.UserID,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		Link:           in.Link,
		ActorID:        in.ActorID,
		ActivityID:     in.ActivityID,
		EventID:        in.EventID,
		DeliveryMethod: entity.DeliveryInApp,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return Result{}, fmt.Errorf("create notification: %w", err)
	}

	s.record(in.Type, OutcomeSent)
	if !s.inTx {
		s.Publish(ctx, notification)
	}
	return Result{Outcome: OutcomeSent, Notification: notification}, nil
}

// Publish pushes notifications to their owners' Redis channels. Delivery is best effort.
func (s *notificationService) Publish(ctx context.Context, notifications ...*entity.Notification) {
	if s.redisClient == nil {
		return
	}

	for _, n := range notifications {
		if n == nil {
			continue
		}
		payload, err := json.Marshal(n)
		if err != nil {
			s.log.Warn("marshal notification", zap.Stringer("id", n.ID), zap.Error(err))
			continue
		}
		if err := s.redisClient.Publish(ctx, Channel(n.UserID), payload).Err(); err != nil {
			s.log.Warn("publish notification", zap.Stringer("id", n.ID), zap.Error(err))
		}
	}
}

func (s *notificationService) record(notifType string, outcome Outcome) {
	metrics.NotificationsTotal.WithLabelValues(notifType, string(outcome)).Inc()
}

func (s *notificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*entity.NotificationPreference, error) {
	prefs, err := s.repo.FindPreference(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.DefaultNotificationPreference(userID), nil
		}
		return nil, err
	}
	return prefs, nil
}

func (s *notificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req dto.UpdatePreferencesRequest) (*entity.NotificationPreference, error) {
	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(prefs)
	if prefs.CFPDeadlineDaysBefore < 1 || prefs.CFPDeadlineDaysBefore > 90 {
		return nil, fmt.Errorf("%w: cfp_deadline_days_before must be between 1 and 90", apperror.ErrInvalidInput)
	}

	if err := s.repo.SavePreference(ctx, prefs); err != nil {
		return nil, err
	}
	return s.repo.FindPreference(ctx, userID)
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, query dto.ListNotificationsQuery) (*dto.NotificationListResponse, error) {
	offset := query.Normalize()
	notifications, total, err := s.repo.GetByUserID(ctx, userID, query.UnreadOnly, query.Limit, offset)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []entity.Notification{}
	}

	return &dto.NotificationListResponse{
		Data: notifications,
		Meta: commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := s.repo.MarkAsRead(ctx, id, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID, time.Now().UTC())
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
