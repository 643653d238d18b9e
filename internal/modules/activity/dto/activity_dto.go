package dto

import (
	"time"

	"anoa.com/cfptracker/internal/entity"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
)

const MaxCommentLength = 5000

type CreateCommentRequest struct {
	ProposalID *uuid.UUID `json:"proposal_id"`
	EventID    *uuid.UUID `json:"event_id"`
	TalkID     *uuid.UUID `json:"talk_id"`
	Content    string     `json:"content" binding:"required,max=5000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

type TargetResponse struct {
	Type entity.TargetKind `json:"type"`
	ID   uuid.UUID         `json:"id"`
}

type ActivityResponse struct {
	ID        uuid.UUID                  `json:"id"`
	Target    TargetResponse             `json:"target"`
	Type      string                     `json:"type"`
	Content   *string                    `json:"content,omitempty"`
	IsEdited  bool                       `json:"is_edited"`
	EditedAt  *time.Time                 `json:"edited_at,omitempty"`
	OldStatus *string                    `json:"old_status,omitempty"`
	NewStatus *string                    `json:"new_status,omitempty"`
	Author    commonDto.AuthorResponse   `json:"author"`
	Mentions  []commonDto.AuthorResponse `json:"mentions"`
	CreatedAt time.Time                  `json:"created_at"`
}

type FeedResponse struct {
	Data []*ActivityResponse      `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

func ToActivityResponse(a *entity.Activity) *ActivityResponse {
	target := a.Target()
	res := &ActivityResponse{
		ID:        a.ID,
		Target:    TargetResponse{Type: target.Kind(), ID: target.ID()},
		Type:      a.Type,
		Content:   a.Content,
		IsEdited:  a.IsEdited,
		EditedAt:  a.EditedAt,
		OldStatus: a.OldStatus,
		NewStatus: a.NewStatus,
		Author: commonDto.AuthorResponse{
			ID:       a.User.ID,
			Username: a.User.Username,
			Name:     a.User.Name,
		},
		Mentions:  make([]commonDto.AuthorResponse, 0, len(a.Mentions)),
		CreatedAt: a.CreatedAt,
	}
	for _, m := range a.Mentions {
		res.Mentions = append(res.Mentions, commonDto.AuthorResponse{
			ID:       m.User.ID,
			Username: m.User.Username,
			Name:     m.User.Name,
		})
	}
	return res
}

func ToActivityResponses(activities []entity.Activity) []*ActivityResponse {
	res := make([]*ActivityResponse, 0, len(activities))
	for i := range activities {
		res = append(res, ToActivityResponse(&activities[i]))
	}
	return res
}
