package repository

import (
	"context"
	"time"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventFilter struct {
	Search string
	IDs    []uuid.UUID
	// OpenOn keeps events whose CFP deadline is on or after this day.
	OpenOn *time.Time
	Limit  int
	Offset int
}

type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindAll(ctx context.Context, filter EventFilter) ([]entity.Event, int64, error)
	FindAllUnpaged(ctx context.Context) ([]entity.Event, error)
	FindByDeadlineBetween(ctx context.Context, from, to time.Time) ([]entity.Event, error)
	Save(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &eventRepository{db: tx}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context, filter EventFilter) ([]entity.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Event{})
	if filter.IDs != nil {
		query = query.Where("id IN ?", filter.IDs)
	} else if filter.Search != "" {
		pattern := database.ContainsPattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(location) LIKE ? ESCAPE '\\'", pattern, pattern)
	}
	if filter.OpenOn != nil {
		query = query.Where("cfp_deadline >= ?", *filter.OpenOn)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Order("cfp_deadline IS NULL").
		Order("cfp_deadline asc").
		Order("name asc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var events []entity.Event
	err := query.Find(&events).Error
	return events, total, err
}

func (r *eventRepository) FindAllUnpaged(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).Order("name asc").Find(&events).Error
	return events, err
}

// FindByDeadlineBetween returns events whose CFP deadline lies in [from, to).
func (r *eventRepository) FindByDeadlineBetween(ctx context.Context, from, to time.Time) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Where("cfp_deadline >= ? AND cfp_deadline < ?", from.UTC(), to.UTC()).
		Order("cfp_deadline asc").
		Order("name asc").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) Save(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Event{}, "id = ?", id).Error
}
