package dto

import (
	"time"

	"anoa.com/cfptracker/internal/entity"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
)

type SetParticipationRequest struct {
	Type   string `json:"type" binding:"required,oneof=speak sponsor attend exhibit volunteer"`
	Status string `json:"status" binding:"required,oneof=interested applied confirmed not_going"`
	Notes  string `json:"notes" binding:"max=2000"`
}

type ParticipationResponse struct {
	EventID   uuid.UUID                `json:"event_id"`
	User      commonDto.AuthorResponse `json:"user"`
	Type      string                   `json:"type"`
	Status    string                   `json:"status"`
	Notes     string                   `json:"notes"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func ToParticipationResponse(p *entity.EventParticipation) *ParticipationResponse {
	return &ParticipationResponse{
		EventID: p.EventID,
		User: commonDto.AuthorResponse{
			ID:       p.User.ID,
			Username: p.User.Username,
			Name:     p.User.Name,
		},
		Type:      p.Type,
		Status:    p.Status,
		Notes:     p.Notes,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToParticipationResponses(list []entity.EventParticipation) []*ParticipationResponse {
	res := make([]*ParticipationResponse, 0, len(list))
	for i := range list {
		res = append(res, ToParticipationResponse(&list[i]))
	}
	return res
}
