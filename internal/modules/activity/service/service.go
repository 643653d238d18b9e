package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/activity/dto"
	"anoa.com/cfptracker/internal/modules/activity/repository"
	notification "anoa.com/cfptracker/internal/modules/notification/service"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/database"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"anoa.com/cfptracker/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	commentAction = "comment"
	previewLength = 200
)

type ActivityService interface {
	// WithTx binds the recorder to tx for use inside another service's transaction.
	WithTx(tx *gorm.DB) ActivityService
	RecordStatusChange(ctx context.Context, proposalID, actorID uuid.UUID, oldStatus, newStatus string) (*entity.Activity, error)

	CreateComment(ctx context.Context, authorID uuid.UUID, req dto.CreateCommentRequest) (*dto.ActivityResponse, error)
	UpdateComment(ctx context.Context, id, authorID uuid.UUID, req dto.UpdateCommentRequest) (*dto.ActivityResponse, error)
	DeleteComment(ctx context.Context, id, authorID uuid.UUID) error
	ListByTarget(ctx context.Context, target entity.ActivityTarget) ([]*dto.ActivityResponse, error)
	Feed(ctx context.Context, query commonDto.PaginationQuery) (*dto.FeedResponse, error)
}

type activityService struct {
	repo         repository.ActivityRepository
	userRepo     userRepo.UserRepository
	notifier     notification.NotificationService
	tx           database.Transactor
	redisClient  *redis.Client
	commentLimit time.Duration
	log          *zap.Logger
}

func NewActivityService(
	repo repository.ActivityRepository,
	userRepo userRepo.UserRepository,
	notifier notification.NotificationService,
	tx database.Transactor,
	redisClient *redis.Client,
	commentLimit time.Duration,
	log *zap.Logger,
) ActivityService {
	return &activityService{
		repo:         repo,
		userRepo:     userRepo,
		notifier:     notifier,
		tx:           tx,
		redisClient:  redisClient,
		commentLimit: commentLimit,
		log:          log,
	}
}

func (s *activityService) WithTx(tx *gorm.DB) ActivityService {
	clone := *s
	clone.repo = s.repo.WithTx(tx)
	clone.userRepo = s.userRepo.WithTx(tx)
	clone.notifier = s.notifier.WithTx(tx)
	return &clone
}

func (s *activityService) RecordStatusChange(ctx context.Context, proposalID, actorID uuid.UUID, oldStatus, newStatus string) (*entity.Activity, error) {
	activity := &entity.Activity{
		UserID:    actorID,
		Type:      entity.ActivityTypeStatusChange,
		OldStatus: &oldStatus,
		NewStatus: &newStatus,
	}
	activity.SetTarget(entity.ProposalTarget(proposalID))

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("record status change: %w", err)
	}
	return activity, nil
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is required", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > dto.MaxCommentLength {
		return "", fmt.Errorf("%w: content must be at most %d characters", apperror.ErrInvalidInput, dto.MaxCommentLength)
	}
	return content, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return err
}

func (s *activityService) CreateComment(ctx context.Context, authorID uuid.UUID, req dto.CreateCommentRequest) (*dto.ActivityResponse, error) {
	target, err := entity.NewActivityTarget(req.ProposalID, req.EventID, req.TalkID)
	if err != nil {
		return nil, err
	}
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, authorID, commentAction, s.commentLimit)
	if err != nil {
		s.log.Warn("comment rate limit check failed", zap.Error(err))
	} else if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, authorID, commentAction)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("please wait %s before commenting again", ttl.Round(time.Second)),
			RetryAfter: ttl,
		}
	}

	var (
		activity *entity.Activity
		sent     []*entity.Notification
	)
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		txs := s.WithTx(tx).(*activityService)

		info, err := txs.repo.FindTarget(ctx, target)
		if err != nil {
			return notFound(err, string(target.Kind()))
		}
		author, err := txs.userRepo.FindByID(ctx, authorID)
		if err != nil {
			return notFound(err, "author")
		}

		activity = &entity.Activity{
			UserID:  authorID,
			Type:    entity.ActivityTypeComment,
			Content: &content,
		}
		activity.SetTarget(target)
		if err := txs.repo.Create(ctx, activity); err != nil {
			return err
		}

		mentioned, err := txs.syncMentions(ctx, activity.ID, content)
		if err != nil {
			return err
		}

		sent, err = txs.notifyComment(ctx, author, activity, target, info, mentioned, nil)
		return err
	})
	if err != nil {
		_ = ratelimiter.ClearRateLimit(ctx, s.redisClient, authorID, commentAction)
		return nil, err
	}

	s.notifier.Publish(ctx, sent...)
	return s.load(ctx, activity.ID)
}

func (s *activityService) UpdateComment(ctx context.Context, id, authorID uuid.UUID, req dto.UpdateCommentRequest) (*dto.ActivityResponse, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	var sent []*entity.Notification
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		txs := s.WithTx(tx).(*activityService)

		activity, err := txs.editable(ctx, id, authorID)
		if err != nil {
			return err
		}

		previous, err := txs.repo.MentionedUserIDs(ctx, id)
		if err != nil {
			return err
		}

		if err := txs.repo.UpdateContent(ctx, id, content, time.Now().UTC()); err != nil {
			return err
		}
		activity.Content = &content

		mentioned, err := txs.syncMentions(ctx, id, content)
		if err != nil {
			return err
		}

		target := activity.Target()
		info, err := txs.repo.FindTarget(ctx, target)
		if err != nil {
			return notFound(err, string(target.Kind()))
		}
		sent, err = txs.notifyMentions(ctx, &activity.User, activity, target, info, mentioned, previous)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, sent...)
	return s.load(ctx, id)
}

func (s *activityService) DeleteComment(ctx context.Context, id, authorID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		txs := s.WithTx(tx).(*activityService)
		if _, err := txs.editable(ctx, id, authorID); err != nil {
			return err
		}
		return txs.repo.Delete(ctx, id)
	})
}

func (s *activityService) ListByTarget(ctx context.Context, target entity.ActivityTarget) ([]*dto.ActivityResponse, error) {
	if _, err := s.repo.FindTarget(ctx, target); err != nil {
		return nil, notFound(err, string(target.Kind()))
	}

	activities, err := s.repo.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	return dto.ToActivityResponses(activities), nil
}

func (s *activityService) Feed(ctx context.Context, query commonDto.PaginationQuery) (*dto.FeedResponse, error) {
	offset := query.Normalize()
	activities, total, err := s.repo.Feed(ctx, query.Limit, offset)
	if err != nil {
		return nil, err
	}

	return &dto.FeedResponse{
		Data: dto.ToActivityResponses(activities),
		Meta: commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

// editable loads a comment the author may change. Status changes are immutable.
func (s *activityService) editable(ctx context.Context, id, authorID uuid.UUID) (*entity.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "activity")
	}
	if activity.Type != entity.ActivityTypeComment {
		return nil, fmt.Errorf("%w: status changes cannot be modified", apperror.ErrForbidden)
	}
	if activity.UserID != authorID {
		return nil, fmt.Errorf("%w: only the author can modify this comment", apperror.ErrForbidden)
	}
	return activity, nil
}

func (s *activityService) load(ctx context.Context, id uuid.UUID) (*dto.ActivityResponse, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "activity")
	}
	return dto.ToActivityResponse(activity), nil
}

// syncMentions resolves the @tokens in content and stores them as the activity's mentions.
func (s *activityService) syncMentions(ctx context.Context, activityID uuid.UUID, content string) ([]entity.User, error) {
	tokens := ExtractMentions(content)
	users, err := s.userRepo.FindByMentionTokens(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("resolve mentions: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	if err := s.repo.ReplaceMentions(ctx, activityID, ids); err != nil {
		return nil, fmt.Errorf("store mentions: %w", err)
	}
	return users, nil
}

// notifyComment sends mention notifications and, for proposals and talks, tells the owner
// about the new comment. An owner who was mentioned only gets the mention.
func (s *activityService) notifyComment(
	ctx context.Context,
	author *entity.User,
	activity *entity.Activity,
	target entity.ActivityTarget,
	info *repository.TargetInfo,
	mentioned []entity.User,
	previous []uuid.UUID,
) ([]*entity.Notification, error) {
	sent, err := s.notifyMentions(ctx, author, activity, target, info, mentioned, previous)
	if err != nil {
		return nil, err
	}

	if info.OwnerID == nil || *info.OwnerID == author.ID {
		return sent, nil
	}
	for _, u := range mentioned {
		if u.ID == *info.OwnerID {
			return sent, nil
		}
	}

	res, err := s.notifier.Notify(ctx, notification.NotifyInput{
		UserID:     *info.OwnerID,
		Type:       entity.NotificationTypeComment,
		Title:      fmt.Sprintf("%s commented on your %s", author.DisplayName(), target.Kind()),
		Message:    fmt.Sprintf("%s: %s", info.Title, preview(*activity.Content)),
		Link:       target.Link(),
		ActorID:    &author.ID,
		ActivityID: &activity.ID,
	})
	if err != nil {
		return nil, err
	}
	if res.Notification != nil {
		sent = append(sent, res.Notification)
	}
	return sent, nil
}

// notifyMentions notifies mentioned users other than the author who are not in previous.
func (s *activityService) notifyMentions(
	ctx context.Context,
	author *entity.User,
	activity *entity.Activity,
	target entity.ActivityTarget,
	info *repository.TargetInfo,
	mentioned []entity.User,
	previous []uuid.UUID,
) ([]*entity.Notification, error) {
	already := make(map[uuid.UUID]struct{}, len(previous))
	for _, id := range previous {
		already[id] = struct{}{}
	}

	var sent []*entity.Notification
	for _, u := range mentioned {
		if u.ID == author.ID {
			continue
		}
		if _, ok := already[u.ID]; ok {
			continue
		}

		res, err := s.notifier.Notify(ctx, notification.NotifyInput{
			UserID:     u.ID,
			Type:       entity.NotificationTypeMention,
			Title:      fmt.Sprintf("%s mentioned you", author.DisplayName()),
			Message:    fmt.Sprintf("%s: %s", info.Title, preview(*activity.Content)),
			Link:       target.Link(),
			ActorID:    &author.ID,
			ActivityID: &activity.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("notify mention: %w", err)
		}
		if res.Notification != nil {
			sent = append(sent, res.Notification)
		}
	}
	return sent, nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + "…"
}
