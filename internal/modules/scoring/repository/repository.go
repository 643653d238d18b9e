package repository

import (
	"context"

	"anoa.com/cfptracker/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoringRepository interface {
	WithTx(tx *gorm.DB) ScoringRepository

	ListCategories(ctx context.Context) ([]entity.ScoringCategory, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*entity.ScoringCategory, error)
	CountCategories(ctx context.Context) (int64, error)
	WeightInUse(ctx context.Context, weight int, exclude *uuid.UUID) (bool, error)
	CreateCategory(ctx context.Context, category *entity.ScoringCategory) error
	SaveCategory(ctx context.Context, category *entity.ScoringCategory) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	UpsertScore(ctx context.Context, score *entity.EventScore) error
	ScoresByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.EventScore, error)
	AllScores(ctx context.Context) ([]entity.EventScore, error)
	DeleteScoresByEvent(ctx context.Context, eventID uuid.UUID) error

	GetSettings(ctx context.Context) (*entity.ScoringSettings, error)
	SaveThreshold(ctx context.Context, threshold int) (*entity.ScoringSettings, error)
}

type scoringRepository struct {
	db *gorm.DB
}

func NewScoringRepository(db *gorm.DB) ScoringRepository {
	return &scoringRepository{db: db}
}

func (r *scoringRepository) WithTx(tx *gorm.DB) ScoringRepository {
	return &scoringRepository{db: tx}
}

func (r *scoringRepository) ListCategories(ctx context.Context) ([]entity.ScoringCategory, error) {
	var categories []entity.ScoringCategory
	err := r.db.WithContext(ctx).Order("display_order asc").Order("name asc").Find(&categories).Error
	return categories, err
}

func (r *scoringRepository) FindCategory(ctx context.Context, id uuid.UUID) (*entity.ScoringCategory, error) {
	var category entity.ScoringCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *scoringRepository) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ScoringCategory{}).Count(&count).Error
	return count, err
}

func (r *scoringRepository) WeightInUse(ctx context.Context, weight int, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.ScoringCategory{}).Where("weight = ?", weight)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *scoringRepository) CreateCategory(ctx context.Context, category *entity.ScoringCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *scoringRepository) SaveCategory(ctx context.Context, category *entity.ScoringCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteCategory removes the category and every score given against it.
func (r *scoringRepository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("category_id = ?", id).Delete(&entity.EventScore{}).Error; err != nil {
		return err
	}
	return db.Delete(&entity.ScoringCategory{}, "id = ?", id).Error
}

// UpsertScore inserts the (event, category) score or overwrites the existing one.
func (r *scoringRepository) UpsertScore(ctx context.Context, score *entity.EventScore) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "category_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "notes", "updated_at"}),
	}).Create(score).Error
}

func (r *scoringRepository) ScoresByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.EventScore, error) {
	var scores []entity.EventScore
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&scores).Error
	return scores, err
}

func (r *scoringRepository) AllScores(ctx context.Context) ([]entity.EventScore, error) {
	var scores []entity.EventScore
	err := r.db.WithContext(ctx).Find(&scores).Error
	return scores, err
}

func (r *scoringRepository) DeleteScoresByEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&entity.EventScore{}).Error
}

func (r *scoringRepository) GetSettings(ctx context.Context) (*entity.ScoringSettings, error) {
	var settings entity.ScoringSettings
	if err := r.db.WithContext(ctx).First(&settings, entity.ScoringSettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *scoringRepository) SaveThreshold(ctx context.Context, threshold int) (*entity.ScoringSettings, error) {
	settings := &entity.ScoringSettings{ID: entity.ScoringSettingsID, Threshold: threshold}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"threshold", "updated_at"}),
	}).Create(settings).Error
	if err != nil {
		return nil, err
	}
	return r.GetSettings(ctx)
}
