package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/cfptracker/internal/entity"
	activityRepo "anoa.com/cfptracker/internal/modules/activity/repository"
	"anoa.com/cfptracker/internal/modules/event/dto"
	"anoa.com/cfptracker/internal/modules/event/repository"
	notifRepo "anoa.com/cfptracker/internal/modules/notification/repository"
	participationRepo "anoa.com/cfptracker/internal/modules/participation/repository"
	proposalRepo "anoa.com/cfptracker/internal/modules/proposal/repository"
	scoringRepo "anoa.com/cfptracker/internal/modules/scoring/repository"
	search "anoa.com/cfptracker/internal/modules/search/service"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/database"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const searchHitLimit = 100

type EventService interface {
	CreateEvent(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*dto.EventResponse, error)
	GetEvents(ctx context.Context, query dto.EventFilterQuery) (*dto.EventListResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	UpcomingDeadlines(ctx context.Context, now time.Time, limit int) ([]entity.Event, error)
}

// Repositories groups the stores an event delete cascades through.
type Repositories struct {
	Events         repository.EventRepository
	Proposals      proposalRepo.ProposalRepository
	Activities     activityRepo.ActivityRepository
	Scores         scoringRepo.ScoringRepository
	Participations participationRepo.ParticipationRepository
	Notifications  notifRepo.NotificationRepository
}

type eventService struct {
	repos  Repositories
	search search.SearchService
	tx     database.Transactor
	log    *zap.Logger
}

func NewEventService(repos Repositories, searchService search.SearchService, tx database.Transactor, log *zap.Logger) EventService {
	return &eventService{
		repos:  repos,
		search: searchService,
		tx:     tx,
		log:    log,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("event: %w", apperror.ErrNotFound)
	}
	return err
}

func parseDate(field string, s *string) (*time.Time, error) {
	t, err := commonDto.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperror.ErrInvalidInput, field, err)
	}
	return t, nil
}

func checkRange(e *entity.Event) error {
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", apperror.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) reindex(ctx context.Context, event *entity.Event) {
	if err := s.search.IndexEvent(ctx, event); err != nil {
		s.log.Warn("index event", zap.Stringer("id", event.ID), zap.Error(err))
	}
}

func (s *eventService) CreateEvent(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error) {
	event := &entity.Event{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
		CFPURL:   req.CFPURL,
		Website:  req.Website,
		Notes:    req.Notes,
	}
	if event.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperror.ErrInvalidInput)
	}

	var err error
	if event.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		return nil, err
	}
	if event.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		return nil, err
	}
	if event.CFPDeadline, err = parseDate("cfp_deadline", req.CFPDeadline); err != nil {
		return nil, err
	}
	if err := checkRange(event); err != nil {
		return nil, err
	}

	if err := s.repos.Events.Create(ctx, event); err != nil {
		return nil, err
	}
	s.reindex(ctx, event)
	return dto.ToEventResponse(event), nil
}

func (s *eventService) GetEvent(ctx context.Context, id uuid.UUID) (*dto.EventResponse, error) {
	event, err := s.repos.Events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return dto.ToEventResponse(event), nil
}

func (s *eventService) GetEvents(ctx context.Context, query dto.EventFilterQuery) (*dto.EventListResponse, error) {
	offset := query.Normalize()
	filter := repository.EventFilter{
		Search: strings.TrimSpace(query.Search),
		Limit:  query.Limit,
		Offset: offset,
	}
	if query.Open {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		filter.OpenOn = &today
	}
	if filter.Search != "" {
		ids, err := s.search.SearchEvents(ctx, filter.Search, searchHitLimit)
		switch {
		case err == nil:
			filter.IDs = ids
		case errors.Is(err, search.ErrUnavailable):
		default:
			s.log.Warn("event search failed, falling back to database", zap.Error(err))
		}
	}

	events, total, err := s.repos.Events.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.EventListResponse{
		Data: dto.ToEventResponses(events),
		Meta: commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id uuid.UUID, req dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.repos.Events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", apperror.ErrInvalidInput)
		}
		event.Name = name
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.CFPURL != nil {
		event.CFPURL = *req.CFPURL
	}
	if req.Website != nil {
		event.Website = *req.Website
	}
	if req.Notes != nil {
		event.Notes = *req.Notes
	}
	if req.StartDate != nil {
		if event.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if event.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.CFPDeadline != nil {
		if event.CFPDeadline, err = parseDate("cfp_deadline", req.CFPDeadline); err != nil {
			return nil, err
		}
	}
	if err := checkRange(event); err != nil {
		return nil, err
	}

	if err := s.repos.Events.Save(ctx, event); err != nil {
		return nil, err
	}
	s.reindex(ctx, event)
	return dto.ToEventResponse(event), nil
}

// DeleteEvent removes the event and everything hanging off it in one transaction.
func (s *eventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		events := s.repos.Events.WithTx(tx)
		proposals := s.repos.Proposals.WithTx(tx)
		acts := s.repos.Activities.WithTx(tx)

		if _, err := events.FindByID(ctx, id); err != nil {
			return notFound(err)
		}

		proposalIDs, err := proposals.IDsByEvent(ctx, id)
		if err != nil {
			return err
		}
		for _, pid := range proposalIDs {
			if err := acts.DeleteByTarget(ctx, entity.ProposalTarget(pid)); err != nil {
				return err
			}
			if err := proposals.Delete(ctx, pid); err != nil {
				return err
			}
		}
		if err := acts.DeleteByTarget(ctx, entity.EventTarget(id)); err != nil {
			return err
		}
		if err := s.repos.Scores.WithTx(tx).DeleteScoresByEvent(ctx, id); err != nil {
			return err
		}
		if err := s.repos.Participations.WithTx(tx).DeleteByEvent(ctx, id); err != nil {
			return err
		}
		if err := s.repos.Notifications.WithTx(tx).DeleteByEvent(ctx, id); err != nil {
			return err
		}
		return events.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.search.DeleteEvent(ctx, id); err != nil {
		s.log.Warn("remove event from index", zap.Stringer("id", id), zap.Error(err))
	}
	return nil
}

// UpcomingDeadlines lists events whose CFP closes today or later, soonest first.
func (s *eventService) UpcomingDeadlines(ctx context.Context, now time.Time, limit int) ([]entity.Event, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	events, _, err := s.repos.Events.FindAll(ctx, repository.EventFilter{
		OpenOn: &today,
		Limit:  limit,
	})
	return events, err
}
