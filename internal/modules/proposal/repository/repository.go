package repository

import (
	"context"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProposalFilter struct {
	EventID *uuid.UUID
	TalkID  *uuid.UUID
	UserID  *uuid.UUID
	Status  string
	Limit   int
	Offset  int
}

type ProposalRepository interface {
	WithTx(tx *gorm.DB) ProposalRepository
	Create(ctx context.Context, proposal *entity.Proposal) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Proposal, error)
	FindAll(ctx context.Context, filter ProposalFilter) ([]entity.Proposal, int64, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	IDsByEvent(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	IDsByTalk(ctx context.Context, talkID uuid.UUID) ([]uuid.UUID, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type proposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) WithTx(tx *gorm.DB) ProposalRepository {
	return &proposalRepository{db: tx}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Talk").Preload("Event").Preload("User")
}

func (r *proposalRepository) Create(ctx context.Context, proposal *entity.Proposal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(proposal).Error
}

func (r *proposalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var proposal entity.Proposal
	if err := withRelations(r.db.WithContext(ctx)).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// FindByIDForUpdate locks the proposal row for the rest of the transaction.
func (r *proposalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	var proposal entity.Proposal
	if err := database.ForUpdate(r.db.WithContext(ctx)).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *proposalRepository) FindAll(ctx context.Context, filter ProposalFilter) ([]entity.Proposal, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Proposal{})
	if filter.EventID != nil {
		query = query.Where("event_id = ?", *filter.EventID)
	}
	if filter.TalkID != nil {
		query = query.Where("talk_id = ?", *filter.TalkID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proposals []entity.Proposal
	err := withRelations(query).
		Order("updated_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&proposals).Error
	return proposals, total, err
}

func (r *proposalRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Proposal{ID: id}).Updates(fields).Error
}

func (r *proposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Proposal{}, "id = ?", id).Error
}

func (r *proposalRepository) IDsByEvent(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Proposal{}).Where("event_id = ?", eventID).Pluck("id", &ids).Error
	return ids, err
}

func (r *proposalRepository) IDsByTalk(ctx context.Context, talkID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Proposal{}).Where("talk_id = ?", talkID).Pluck("id", &ids).Error
	return ids, err
}

func (r *proposalRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&entity.Proposal{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
