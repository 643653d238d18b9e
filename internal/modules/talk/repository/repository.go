package repository

import (
	"context"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TalkFilter struct {
	UserID *uuid.UUID
	Search string
	IDs    []uuid.UUID
	Limit  int
	Offset int
}

type TalkRepository interface {
	WithTx(tx *gorm.DB) TalkRepository
	Create(ctx context.Context, talk *entity.Talk) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Talk, error)
	FindAll(ctx context.Context, filter TalkFilter) ([]entity.Talk, int64, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type talkRepository struct {
	db *gorm.DB
}

func NewTalkRepository(db *gorm.DB) TalkRepository {
	return &talkRepository{db: db}
}

func (r *talkRepository) WithTx(tx *gorm.DB) TalkRepository {
	return &talkRepository{db: tx}
}

func (r *talkRepository) Create(ctx context.Context, talk *entity.Talk) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(talk).Error
}

func (r *talkRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Talk, error) {
	var talk entity.Talk
	if err := r.db.WithContext(ctx).Preload("User").First(&talk, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &talk, nil
}

func (r *talkRepository) FindAll(ctx context.Context, filter TalkFilter) ([]entity.Talk, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Talk{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	} else if filter.Search != "" {
		pattern := database.ContainsPattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(abstract) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var talks []entity.Talk
	err := query.Preload("User").
		Order("updated_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&talks).Error
	return talks, total, err
}

func (r *talkRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Talk{ID: id}).Updates(fields).Error
}

func (r *talkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Talk{}, "id = ?", id).Error
}
