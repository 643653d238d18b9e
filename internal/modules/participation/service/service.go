package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/cfptracker/internal/entity"
	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	"anoa.com/cfptracker/internal/modules/participation/dto"
	"anoa.com/cfptracker/internal/modules/participation/repository"
	"anoa.com/cfptracker/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipationService interface {
	Set(ctx context.Context, eventID, userID uuid.UUID, req dto.SetParticipationRequest) (*dto.ParticipationResponse, error)
	Remove(ctx context.Context, eventID, userID uuid.UUID) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*dto.ParticipationResponse, error)
}

type participationService struct {
	repo      repository.ParticipationRepository
	eventRepo eventRepo.EventRepository
}

func NewParticipationService(repo repository.ParticipationRepository, eventRepo eventRepo.EventRepository) ParticipationService {
	return &participationService{repo: repo, eventRepo: eventRepo}
}

func (s *participationService) ensureEvent(ctx context.Context, eventID uuid.UUID) error {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("event: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

// Set records the caller's plans for an event, replacing any earlier entry.
func (s *participationService) Set(ctx context.Context, eventID, userID uuid.UUID, req dto.SetParticipationRequest) (*dto.ParticipationResponse, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}

	p := &entity.EventParticipation{
		EventID: eventID,
		UserID:  userID,
		Type:    req.Type,
		Status:  req.Status,
		Notes:   strings.TrimSpace(req.Notes),
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("save participation: %w", err)
	}

	saved, err := s.repo.Find(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	return dto.ToParticipationResponse(saved), nil
}

func (s *participationService) Remove(ctx context.Context, eventID, userID uuid.UUID) error {
	n, err := s.repo.Delete(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("participation: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *participationService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*dto.ParticipationResponse, error) {
	if err := s.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return dto.ToParticipationResponses(list), nil
}
