package service

import (
	"context"
	"time"

	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	proposalRepo "anoa.com/cfptracker/internal/modules/proposal/repository"
	"anoa.com/cfptracker/internal/modules/user/repository"
)

type Overview struct {
	TotalUsers        int64            `json:"total_users"`
	TotalEvents       int64            `json:"total_events"`
	OpenCFPs          int64            `json:"open_cfps"`
	ProposalsByStatus map[string]int64 `json:"proposals_by_status"`
}

type StatService interface {
	Overview(ctx context.Context, now time.Time) (*Overview, error)
}

type statService struct {
	userRepo     repository.UserRepository
	eventRepo    eventRepo.EventRepository
	proposalRepo proposalRepo.ProposalRepository
}

func NewStatService(userRepo repository.UserRepository, eventRepo eventRepo.EventRepository, proposalRepo proposalRepo.ProposalRepository) StatService {
	return &statService{
		userRepo:     userRepo,
		eventRepo:    eventRepo,
		proposalRepo: proposalRepo,
	}
}

// Overview counts open CFPs as events whose deadline is today or later in UTC.
func (s *statService) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	_, events, err := s.eventRepo.FindAll(ctx, eventRepo.EventFilter{})
	if err != nil {
		return nil, err
	}

	utc := now.UTC()
	today := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	_, open, err := s.eventRepo.FindAll(ctx, eventRepo.EventFilter{OpenOn: &today})
	if err != nil {
		return nil, err
	}

	byStatus, err := s.proposalRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalUsers:        users,
		TotalEvents:       events,
		OpenCFPs:          open,
		ProposalsByStatus: byStatus,
	}, nil
}
