package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"anoa.com/cfptracker/internal/entity"
	eventRepo "anoa.com/cfptracker/internal/modules/event/repository"
	"anoa.com/cfptracker/internal/modules/scoring/dto"
	"anoa.com/cfptracker/internal/modules/scoring/repository"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/database"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScoringService interface {
	ListCategories(ctx context.Context) ([]entity.ScoringCategory, error)
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*entity.ScoringCategory, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req dto.CategoryRequest) (*entity.ScoringCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	GetThreshold(ctx context.Context) (int, error)
	UpdateThreshold(ctx context.Context, threshold int) (int, error)

	ScoreEvent(ctx context.Context, eventID, categoryID uuid.UUID, req dto.ScoreRequest) (*dto.EventScoreResponse, error)
	SaveScores(ctx context.Context, eventID uuid.UUID, req dto.BatchScoreRequest) (*dto.EventScoreResponse, error)
	GetEventScore(ctx context.Context, eventID uuid.UUID) (*dto.EventScoreResponse, error)
	Rankings(ctx context.Context) ([]dto.RankingEntry, error)
}

type scoringService struct {
	repo             repository.ScoringRepository
	eventRepo        eventRepo.EventRepository
	tx               database.Transactor
	defaultThreshold int
}

func NewScoringService(repo repository.ScoringRepository, eventRepo eventRepo.EventRepository, tx database.Transactor, defaultThreshold int) ScoringService {
	return &scoringService{
		repo:             repo,
		eventRepo:        eventRepo,
		tx:               tx,
		defaultThreshold: defaultThreshold,
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return err
}

func (s *scoringService) ListCategories(ctx context.Context) ([]entity.ScoringCategory, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []entity.ScoringCategory{}
	}
	return categories, nil
}

func validateCategory(req dto.CategoryRequest) error {
	if req.Weight < 1 || req.Weight > 10 {
		return fmt.Errorf("%w: weight must be between 1 and 10", apperror.ErrInvalidInput)
	}
	if req.DisplayOrder < 1 || req.DisplayOrder > 10 {
		return fmt.Errorf("%w: display order must be between 1 and 10", apperror.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", apperror.ErrInvalidInput)
	}
	for _, d := range []string{req.Description9, req.Description3, req.Description1, req.Description0} {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("%w: every score level needs a description", apperror.ErrInvalidInput)
		}
	}
	return nil
}

func applyCategory(c *entity.ScoringCategory, req dto.CategoryRequest) {
	c.Name = strings.TrimSpace(req.Name)
	c.Weight = req.Weight
	c.DisplayOrder = req.DisplayOrder
	c.Description9 = req.Description9
	c.Description3 = req.Description3
	c.Description1 = req.Description1
	c.Description0 = req.Description0
}

func (s *scoringService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*entity.ScoringCategory, error) {
	if err := validateCategory(req); err != nil {
		return nil, err
	}

	category := &entity.ScoringCategory{}
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountCategories(ctx)
		if err != nil {
			return err
		}
		if count >= entity.MaxScoringCategories {
			return fmt.Errorf("%w: at most %d scoring categories are allowed", apperror.ErrInvalidInput, entity.MaxScoringCategories)
		}

		taken, err := repo.WeightInUse(ctx, req.Weight, nil)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: weight %d is already used by another category", apperror.ErrConflict, req.Weight)
		}

		applyCategory(category, req)
		return repo.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *scoringService) UpdateCategory(ctx context.Context, id uuid.UUID, req dto.CategoryRequest) (*entity.ScoringCategory, error) {
	if err := validateCategory(req); err != nil {
		return nil, err
	}

	var category *entity.ScoringCategory
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		category, err = repo.FindCategory(ctx, id)
		if err != nil {
			return notFound(err, "scoring category")
		}

		taken, err := repo.WeightInUse(ctx, req.Weight, &id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: weight %d is already used by another category", apperror.ErrConflict, req.Weight)
		}

		applyCategory(category, req)
		return repo.SaveCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *scoringService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindCategory(ctx, id); err != nil {
			return notFound(err, "scoring category")
		}
		return repo.DeleteCategory(ctx, id)
	})
}

func (s *scoringService) GetThreshold(ctx context.Context) (int, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.defaultThreshold, nil
		}
		return 0, err
	}
	return settings.Threshold, nil
}

func (s *scoringService) UpdateThreshold(ctx context.Context, threshold int) (int, error) {
	if threshold < 0 || threshold > entity.MaxScoreThreshold {
		return 0, fmt.Errorf("%w: threshold must be between 0 and %d", apperror.ErrInvalidInput, entity.MaxScoreThreshold)
	}
	settings, err := s.repo.SaveThreshold(ctx, threshold)
	if err != nil {
		return 0, err
	}
	return settings.Threshold, nil
}

func (s *scoringService) ScoreEvent(ctx context.Context, eventID, categoryID uuid.UUID, req dto.ScoreRequest) (*dto.EventScoreResponse, error) {
	return s.SaveScores(ctx, eventID, dto.BatchScoreRequest{
		Scores: []dto.BatchScoreItem{{CategoryID: categoryID, Score: req.Score, Notes: req.Notes}},
	})
}

// SaveScores upserts each (event, category) score in turn inside one transaction.
func (s *scoringService) SaveScores(ctx context.Context, eventID uuid.UUID, req dto.BatchScoreRequest) (*dto.EventScoreResponse, error) {
	for _, item := range req.Scores {
		if item.Score == nil || !entity.ValidScore(*item.Score) {
			return nil, fmt.Errorf("%w: score must be one of 0, 1, 3, 9", apperror.ErrInvalidInput)
		}
	}

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.eventRepo.WithTx(tx).FindByID(ctx, eventID); err != nil {
			return notFound(err, "event")
		}

		for _, item := range req.Scores {
			if _, err := repo.FindCategory(ctx, item.CategoryID); err != nil {
				return notFound(err, "scoring category")
			}
			score := &entity.EventScore{
				EventID:    eventID,
				CategoryID: item.CategoryID,
				Score:      *item.Score,
				Notes:      item.Notes,
			}
			if err := repo.UpsertScore(ctx, score); err != nil {
				return fmt.Errorf("save score: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetEventScore(ctx, eventID)
}

func (s *scoringService) GetEventScore(ctx context.Context, eventID uuid.UUID) (*dto.EventScoreResponse, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event")
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.ScoresByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	threshold, err := s.GetThreshold(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID]entity.EventScore, len(scores))
	for _, sc := range scores {
		byCategory[sc.CategoryID] = sc
	}

	res := &dto.EventScoreResponse{
		EventID:    event.ID,
		EventName:  event.Name,
		Categories: make([]dto.CategoryScore, 0, len(categories)),
		Summary:    Summarize(categories, scores, threshold),
	}
	for _, c := range categories {
		row := dto.CategoryScore{CategoryID: c.ID, Name: c.Name, Weight: c.Weight}
		if sc, ok := byCategory[c.ID]; ok {
			score := sc.Score
			row.Score = &score
			row.Weighted = sc.Score * c.Weight
			row.Notes = sc.Notes
		}
		res.Categories = append(res.Categories, row)
	}
	return res, nil
}

// Rankings orders every event by weighted total, highest first.
func (s *scoringService) Rankings(ctx context.Context) ([]dto.RankingEntry, error) {
	events, err := s.eventRepo.FindAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.AllScores(ctx)
	if err != nil {
		return nil, err
	}
	threshold, err := s.GetThreshold(ctx)
	if err != nil {
		return nil, err
	}

	byEvent := make(map[uuid.UUID][]entity.EventScore)
	for _, sc := range scores {
		byEvent[sc.EventID] = append(byEvent[sc.EventID], sc)
	}

	entries := make([]dto.RankingEntry, 0, len(events))
	for i := range events {
		e := &events[i]
		entries = append(entries, dto.RankingEntry{
			EventID:     e.ID,
			EventName:   e.Name,
			CFPDeadline: commonDto.FormatDate(e.CFPDeadline),
			Summary:     Summarize(categories, byEvent[e.ID], threshold),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Summary.TotalScore > entries[j].Summary.TotalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
