package dto

import (
	"time"

	"anoa.com/cfptracker/internal/entity"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
)

type CreateProposalRequest struct {
	TalkID      uuid.UUID `json:"talk_id" binding:"required"`
	EventID     uuid.UUID `json:"event_id" binding:"required"`
	Status      string    `json:"status" binding:"omitempty,oneof=draft submitted accepted rejected confirmed"`
	TalkType    string    `json:"talk_type" binding:"omitempty,oneof=keynote regular lightning workshop"`
	SubmittedAt *string   `json:"submitted_at" binding:"omitempty,datetime=2006-01-02"`
	Notes       string    `json:"notes"`
}

// UpdateProposalRequest is a partial update; nil fields are left untouched.
type UpdateProposalRequest struct {
	Status      *string `json:"status" binding:"omitempty,oneof=draft submitted accepted rejected confirmed"`
	TalkType    *string `json:"talk_type" binding:"omitempty,oneof=keynote regular lightning workshop"`
	SubmittedAt *string `json:"submitted_at" binding:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes"`
}

type ProposalFilterQuery struct {
	commonDto.PaginationQuery
	EventID string `form:"event_id" binding:"omitempty,uuid"`
	TalkID  string `form:"talk_id" binding:"omitempty,uuid"`
	Mine    bool   `form:"mine"`
	Status  string `form:"status" binding:"omitempty,oneof=draft submitted accepted rejected confirmed"`
}

type ProposalResponse struct {
	ID          uuid.UUID                `json:"id"`
	Status      string                   `json:"status"`
	TalkType    string                   `json:"talk_type"`
	SubmittedAt *string                  `json:"submitted_at,omitempty"`
	Notes       string                   `json:"notes"`
	Talk        TalkSummary              `json:"talk"`
	Event       EventSummary             `json:"event"`
	Owner       commonDto.AuthorResponse `json:"owner"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

type TalkSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type EventSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CFPDeadline *string   `json:"cfp_deadline,omitempty"`
}

type ProposalListResponse struct {
	Data []*ProposalResponse      `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

func ToProposalResponse(p *entity.Proposal) *ProposalResponse {
	return &ProposalResponse{
		ID:          p.ID,
		Status:      p.Status,
		TalkType:    p.TalkType,
		SubmittedAt: commonDto.FormatDate(p.SubmittedAt),
		Notes:       p.Notes,
		Talk:        TalkSummary{ID: p.Talk.ID, Title: p.Talk.Title},
		Event: EventSummary{
			ID:          p.Event.ID,
			Name:        p.Event.Name,
			CFPDeadline: commonDto.FormatDate(p.Event.CFPDeadline),
		},
		Owner: commonDto.AuthorResponse{
			ID:       p.User.ID,
			Username: p.User.Username,
			Name:     p.User.Name,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
