package repository

import (
	"context"
	"time"

	"anoa.com/cfptracker/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParticipationRepository interface {
	WithTx(tx *gorm.DB) ParticipationRepository
	Upsert(ctx context.Context, p *entity.EventParticipation) error
	Find(ctx context.Context, eventID, userID uuid.UUID) (*entity.EventParticipation, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.EventParticipation, error)
	Delete(ctx context.Context, eventID, userID uuid.UUID) (int64, error)
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error
}

type participationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepository{db: db}
}

func (r *participationRepository) WithTx(tx *gorm.DB) ParticipationRepository {
	return &participationRepository{db: tx}
}

func (r *participationRepository) Upsert(ctx context.Context, p *entity.EventParticipation) error {
	p.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "status", "notes", "updated_at"}),
	}).Create(p).Error
}

func (r *participationRepository) Find(ctx context.Context, eventID, userID uuid.UUID) (*entity.EventParticipation, error) {
	var p entity.EventParticipation
	err := r.db.WithContext(ctx).Preload("User").
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.EventParticipation, error) {
	var list []entity.EventParticipation
	err := r.db.WithContext(ctx).Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}

func (r *participationRepository) Delete(ctx context.Context, eventID, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&entity.EventParticipation{})
	return result.RowsAffected, result.Error
}

func (r *participationRepository) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&entity.EventParticipation{}).Error
}
