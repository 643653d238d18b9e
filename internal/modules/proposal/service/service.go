package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/cfptracker/internal/entity"
	activityRepo "anoa.com/cfptracker/internal/modules/activity/repository"
	activity "anoa.com/cfptracker/internal/modules/activity/service"
	notification "anoa.com/cfptracker/internal/modules/notification/service"
	"anoa.com/cfptracker/internal/modules/proposal/dto"
	"anoa.com/cfptracker/internal/modules/proposal/repository"
	userRepo "anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/pkg/apperror"
	"anoa.com/cfptracker/pkg/database"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProposalService interface {
	CreateProposal(ctx context.Context, userID uuid.UUID, req dto.CreateProposalRequest) (*dto.ProposalResponse, error)
	GetProposal(ctx context.Context, id uuid.UUID) (*dto.ProposalResponse, error)
	GetProposals(ctx context.Context, userID uuid.UUID, query dto.ProposalFilterQuery) (*dto.ProposalListResponse, error)
	UpdateProposal(ctx context.Context, id, actorID uuid.UUID, req dto.UpdateProposalRequest) (*dto.ProposalResponse, error)
	DeleteProposal(ctx context.Context, id, userID uuid.UUID) error
}

type proposalService struct {
	repo         repository.ProposalRepository
	userRepo     userRepo.UserRepository
	activityRepo activityRepo.ActivityRepository
	activities   activity.ActivityService
	notifier     notification.NotificationService
	tx           database.Transactor
	log          *zap.Logger
}

func NewProposalService(
	repo repository.ProposalRepository,
	userRepo userRepo.UserRepository,
	activityRepo activityRepo.ActivityRepository,
	activities activity.ActivityService,
	notifier notification.NotificationService,
	tx database.Transactor,
	log *zap.Logger,
) ProposalService {
	return &proposalService{
		repo:         repo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		activities:   activities,
		notifier:     notifier,
		tx:           tx,
		log:          log,
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
	}
	return err
}

func (s *proposalService) CreateProposal(ctx context.Context, userID uuid.UUID, req dto.CreateProposalRequest) (*dto.ProposalResponse, error) {
	submittedAt, err := commonDto.ParseDate(req.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, err.Error())
	}

	if _, err := s.activityRepo.FindTarget(ctx, entity.TalkTarget(req.TalkID)); err != nil {
		return nil, notFound(err, "talk")
	}
	if _, err := s.activityRepo.FindTarget(ctx, entity.EventTarget(req.EventID)); err != nil {
		return nil, notFound(err, "event")
	}

	proposal := &entity.Proposal{
		TalkID:      req.TalkID,
		EventID:     req.EventID,
		UserID:      userID,
		Status:      req.Status,
		TalkType:    req.TalkType,
		SubmittedAt: submittedAt,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, proposal); err != nil {
		return nil, err
	}

	return s.GetProposal(ctx, proposal.ID)
}

func (s *proposalService) GetProposal(ctx context.Context, id uuid.UUID) (*dto.ProposalResponse, error) {
	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "proposal")
	}
	return dto.ToProposalResponse(proposal), nil
}

func (s *proposalService) GetProposals(ctx context.Context, userID uuid.UUID, query dto.ProposalFilterQuery) (*dto.ProposalListResponse, error) {
	offset := query.Normalize()
	filter := repository.ProposalFilter{
		Status: query.Status,
		Limit:  query.Limit,
		Offset: offset,
	}
	if query.EventID != "" {
		id := uuid.MustParse(query.EventID)
		filter.EventID = &id
	}
	if query.TalkID != "" {
		id := uuid.MustParse(query.TalkID)
		filter.TalkID = &id
	}
	if query.Mine {
		filter.UserID = &userID
	}

	proposals, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]*dto.ProposalResponse, 0, len(proposals))
	for i := range proposals {
		data = append(data, dto.ToProposalResponse(&proposals[i]))
	}
	return &dto.ProposalListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(query.Page, query.Limit, total),
	}, nil
}

// UpdateProposal applies the update and, when the status actually changes, records a
// status_change activity and notifies the owner, all in one transaction.
func (s *proposalService) UpdateProposal(ctx context.Context, id, actorID uuid.UUID, req dto.UpdateProposalRequest) (*dto.ProposalResponse, error) {
	fields := map[string]interface{}{}
	if req.TalkType != nil {
		fields["talk_type"] = *req.TalkType
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.SubmittedAt != nil {
		submittedAt, err := commonDto.ParseDate(req.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidInput, err.Error())
		}
		fields["submitted_at"] = submittedAt
	}

	var sent *entity.Notification
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "proposal")
		}
		oldStatus := current.Status

		changed := req.Status != nil && *req.Status != oldStatus
		if changed {
			fields["status"] = *req.Status
		}
		if err := repo.Updates(ctx, id, fields); err != nil {
			return err
		}
		if !changed {
			return nil
		}

		act, err := s.activities.WithTx(tx).RecordStatusChange(ctx, id, actorID, oldStatus, *req.Status)
		if err != nil {
			return err
		}
		if current.UserID == actorID {
			return nil
		}

		sent, err = s.notifyOwner(ctx, tx, id, actorID, act, oldStatus, *req.Status)
		return err
	})
	if err != nil {
		return nil, err
	}

	if sent != nil {
		s.notifier.Publish(ctx, sent)
	}
	return s.GetProposal(ctx, id)
}

func (s *proposalService) notifyOwner(ctx context.Context, tx *gorm.DB, id, actorID uuid.UUID, act *entity.Activity, oldStatus, newStatus string) (*entity.Notification, error) {
	proposal, err := s.repo.WithTx(tx).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	actor, err := s.userRepo.WithTx(tx).FindByID(ctx, actorID)
	if err != nil {
		return nil, notFound(err, "actor")
	}

	res, err := s.notifier.WithTx(tx).Notify(ctx, notification.NotifyInput{
		UserID:     proposal.UserID,
		Type:       entity.NotificationTypeStatusChange,
		Title:      fmt.Sprintf("%s updated your proposal status", actor.DisplayName()),
		Message:    fmt.Sprintf("%s at %s: %s → %s", proposal.Talk.Title, proposal.Event.Name, oldStatus, newStatus),
		Link:       entity.ProposalTarget(id).Link(),
		ActorID:    &actorID,
		ActivityID: &act.ID,
		EventID:    &proposal.EventID,
	})
	if err != nil {
		return nil, err
	}
	return res.Notification, nil
}

// DeleteProposal removes the proposal with its activity thread. Owner only.
func (s *proposalService) DeleteProposal(ctx context.Context, id, userID uuid.UUID) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		proposal, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "proposal")
		}
		if proposal.UserID != userID {
			return fmt.Errorf("%w: only the owner can delete this proposal", apperror.ErrForbidden)
		}

		if err := s.activityRepo.WithTx(tx).DeleteByTarget(ctx, entity.ProposalTarget(id)); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}
