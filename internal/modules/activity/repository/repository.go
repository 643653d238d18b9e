package repository

import (
	"context"
	"time"

	"anoa.com/cfptracker/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TargetInfo describes the parent an activity hangs off.
type TargetInfo struct {
	OwnerID *uuid.UUID
	Title   string
}

type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository
	Create(ctx context.Context, activity *entity.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTarget(ctx context.Context, target entity.ActivityTarget) ([]entity.Activity, error)
	Feed(ctx context.Context, limit, offset int) ([]entity.Activity, int64, error)
	DeleteByTarget(ctx context.Context, target entity.ActivityTarget) error
	FindTarget(ctx context.Context, target entity.ActivityTarget) (*TargetInfo, error)

	MentionedUserIDs(ctx context.Context, activityID uuid.UUID) ([]uuid.UUID, error)
	ReplaceMentions(ctx context.Context, activityID uuid.UUID, userIDs []uuid.UUID) error
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepository{db: tx}
}

func preloadDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Mentions.User")
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(activity).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	var activity entity.Activity
	if err := preloadDetails(r.db.WithContext(ctx)).First(&activity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Activity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"is_edited": true,
			"edited_at": editedAt,
		}).Error
}

// Delete removes the activity and its mentions.
func (r *activityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("activity_id = ?", id).Delete(&entity.Mention{}).Error; err != nil {
		return err
	}
	return db.Delete(&entity.Activity{}, "id = ?", id).Error
}

func (r *activityRepository) ListByTarget(ctx context.Context, target entity.ActivityTarget) ([]entity.Activity, error) {
	var activities []entity.Activity
	err := preloadDetails(r.db.WithContext(ctx)).
		Where(target.Column()+" = ?", target.ID()).
		Order("created_at asc").
		Order("id asc").
		Find(&activities).Error
	return activities, err
}

func (r *activityRepository) Feed(ctx context.Context, limit, offset int) ([]entity.Activity, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Activity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []entity.Activity
	err := preloadDetails(r.db.WithContext(ctx)).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	return activities, total, err
}

func (r *activityRepository) DeleteByTarget(ctx context.Context, target entity.ActivityTarget) error {
	db := r.db.WithContext(ctx)
	ids := db.Model(&entity.Activity{}).Select("id").Where(target.Column()+" = ?", target.ID())
	if err := db.Where("activity_id IN (?)", ids).Delete(&entity.Mention{}).Error; err != nil {
		return err
	}
	return db.Where(target.Column()+" = ?", target.ID()).Delete(&entity.Activity{}).Error
}

func (r *activityRepository) FindTarget(ctx context.Context, target entity.ActivityTarget) (*TargetInfo, error) {
	db := r.db.WithContext(ctx)
	id := target.ID()

	switch target.Kind() {
	case entity.TargetProposal:
		var p entity.Proposal
		if err := db.Preload("Talk").Preload("Event").First(&p, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &TargetInfo{OwnerID: &p.UserID, Title: p.Talk.Title + " at " + p.Event.Name}, nil
	case entity.TargetTalk:
		var t entity.Talk
		if err := db.First(&t, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &TargetInfo{OwnerID: &t.UserID, Title: t.Title}, nil
	case entity.TargetEvent:
		var e entity.Event
		if err := db.First(&e, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &TargetInfo{Title: e.Name}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *activityRepository) MentionedUserIDs(ctx context.Context, activityID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Mention{}).
		Where("activity_id = ?", activityID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ReplaceMentions drops every mention of the activity and inserts one per user id.
func (r *activityRepository) ReplaceMentions(ctx context.Context, activityID uuid.UUID, userIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("activity_id = ?", activityID).Delete(&entity.Mention{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}

	mentions := make([]entity.Mention, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, entity.Mention{ActivityID: activityID, UserID: id})
	}
	return db.Omit(clause.Associations).Create(&mentions).Error
}
