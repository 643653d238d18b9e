package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/cfptracker/internal/entity"
	activityRepo "anoa.com/cfptracker/internal/modules/activity/repository"
	proposalRepo "anoa.com/cfptracker/internal/modules/proposal/repository"
	search "anoa.com/cfptracker/internal/modules/search/service"
	"anoa.com/cfptracker/internal/modules/talk/dto"
	"anoa.com/cfptracker/internal/modules/talk/repository"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/database"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"anoa.com/cfptracker/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var allowedSlideExtensions = map[string]struct{}{
	".pdf": {}, ".pptx": {}, ".ppt": {}, ".key": {}, ".odp": {},
}

type TalkService interface {
	CreateTalk(ctx context.Context, userID uuid.UUID, req dto.CreateTalkRequest) (*dto.TalkResponse, error)
	GetTalk(ctx context.Context, id uuid.UUID) (*dto.TalkResponse, error)
	GetTalks(ctx context.Context, userID uuid.UUID, query dto.TalkFilterQuery) (*dto.TalkListResponse, error)
	UpdateTalk(ctx context.Context, id, userID uuid.UUID, req dto.UpdateTalkRequest) (*dto.TalkResponse, error)
	DeleteTalk(ctx context.Context, id, userID uuid.UUID) error
	UploadSlides(ctx context.Context, id, userID uuid.UUID, file dto.SlidesFile) (*dto.TalkResponse, error)
}

type talkService struct {
	repo         repository.TalkRepository
	proposalRepo proposalRepo.ProposalRepository
	activityRepo activityRepo.ActivityRepository
	storage      storage.FileStorage
	search       search.SearchService
	tx           database.Transactor
	folder       string
	log          *zap.Logger
}

func NewTalkService(
	repo repository.TalkRepository,
	proposalRepo proposalRepo.ProposalRepository,
	activityRepo activityRepo.ActivityRepository,
	fileStorage storage.FileStorage,
	searchService search.SearchService,
	tx database.Transactor,
	folder string,
	log *zap.Logger,
) TalkService {
	return &talkService{
		repo:         repo,
		proposalRepo: proposalRepo,
		activityRepo: activityRepo,
		storage:      fileStorage,
		search:       searchService,
		tx:           tx,
		folder:       folder,
		log:          log,
	}
}

func (s *talkService) findOwned(ctx context.Context, repo repository.TalkRepository, id, userID uuid.UUID) (*entity.Talk, error) {
	talk, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("talk: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if talk.UserID != userID {
		return nil, fmt.Errorf("%w: only the owner can modify this talk", apperror.ErrForbidden)
	}
	return talk, nil
}

func (s *talkService) reindex(ctx context.Context, talk *entity.Talk) {
	if err := s.search.IndexTalk(ctx, talk); err != nil {
		s.log.Warn("index talk", zap.Stringer("id", talk.ID), zap.Error(err))
	}
}

func (s *talkService) CreateTalk(ctx context.Context, userID uuid.UUID, req dto.CreateTalkRequest) (*dto.TalkResponse, error) {
	talk := &entity.Talk{
		Title:       strings.TrimSpace(req.Title),
		Abstract:    req.Abstract,
		Description: req.Description,
		UserID:      userID,
	}
	if talk.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperror.ErrInvalidInput)
	}
	if err := s.repo.Create(ctx, talk); err != nil {
		return nil, err
	}

	s.reindex(ctx, talk)
	return s.GetTalk(ctx, talk.ID)
}

func (s *talkService) GetTalk(ctx context.Context, id uuid.UUID) (*dto.TalkResponse, error) {
	talk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("talk: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return dto.ToTalkResponse(talk), nil
}

func (s *talkService) GetTalks(ctx context.Context, userID uuid.UUID, query dto.TalkFilterQuery) (*dto.TalkListResponse, error) {
	offset := query.Normalize()
	filter := repository.TalkFilter{
		Search: strings.TrimSpace(query.Search),
		Limit:  query.Limit,
		Offset: offset,
	}
	if query.Mine {
		filter.UserID = &userID
	}
	if filter.Search != "" {
		ids, err := s.search.SearchTalks(ctx, filter.Search, 100)
		switch {
		case err == nil:
			filter.IDs = ids
		case errors.Is(err, search.ErrUnavailable):
		default:
			s.log.Warn("talk search failed, falling back to database", zap.Error(err))
		}
	}

	talks, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]*dto.TalkResponse, 0, len(talks))
	for i := range talks {
		data = append(data, dto.ToTalkResponse(&talks[i]))
	}
	return &dto.TalkListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

func (s *talkService) UpdateTalk(ctx context.Context, id, userID uuid.UUID, req dto.UpdateTalkRequest) (*dto.TalkResponse, error) {
	if _, err := s.findOwned(ctx, s.repo, id, userID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", apperror.ErrInvalidInput)
		}
		fields["title"] = title
	}
	if req.Abstract != nil {
		fields["abstract"] = *req.Abstract
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if err := s.repo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}

	talk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, talk)
	return dto.ToTalkResponse(talk), nil
}

// DeleteTalk removes the talk, its proposals and every activity attached to either. Owner only.
func (s *talkService) DeleteTalk(ctx context.Context, id, userID uuid.UUID) error {
	var slidesURL *string
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		acts := s.activityRepo.WithTx(tx)
		proposals := s.proposalRepo.WithTx(tx)

		talk, err := s.findOwned(ctx, repo, id, userID)
		if err != nil {
			return err
		}
		slidesURL = talk.SlidesURL

		proposalIDs, err := proposals.IDsByTalk(ctx, id)
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
		if err := acts.DeleteByTarget(ctx, entity.TalkTarget(id)); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.search.DeleteTalk(ctx, id); err != nil {
		s.log.Warn("remove talk from index", zap.Stringer("id", id), zap.Error(err))
	}
	if slidesURL != nil && s.storage != nil {
		if err := s.storage.DeleteFile(ctx, *slidesURL); err != nil {
			s.log.Warn("delete slides", zap.String("url", *slidesURL), zap.Error(err))
		}
	}
	return nil
}

func (s *talkService) UploadSlides(ctx context.Context, id, userID uuid.UUID, file dto.SlidesFile) (*dto.TalkResponse, error) {
	if s.storage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "file storage is not configured", nil)
	}
	if _, ok := allowedSlideExtensions[strings.ToLower(filepath.Ext(file.FileName))]; !ok {
		return nil, fmt.Errorf("%w: slides must be a pdf, pptx, ppt, key or odp file", apperror.ErrInvalidInput)
	}
	if file.Size > dto.MaxSlidesSize {
		return nil, fmt.Errorf("%w: slides must be at most 50MB", apperror.ErrInvalidInput)
	}

	talk, err := s.findOwned(ctx, s.repo, id, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.UploadFile(ctx, file.Reader, s.folder, file.FileName)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Updates(ctx, id, map[string]interface{}{"slides_url": url}); err != nil {
		_ = s.storage.DeleteFile(ctx, url)
		return nil, err
	}

	if talk.SlidesURL != nil {
		if err := s.storage.DeleteFile(ctx, *talk.SlidesURL); err != nil {
			s.log.Warn("delete previous slides", zap.String("url", *talk.SlidesURL), zap.Error(err))
		}
	}
	return s.GetTalk(ctx, id)
}
