package dto

import (
	"time"

	"anoa.com/cfptracker/internal/entity"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	StartDate   *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Location    string  `json:"location" binding:"max=255"`
	CFPDeadline *string `json:"cfp_deadline" binding:"omitempty,datetime=2006-01-02"`
	CFPURL      string  `json:"cfp_url" binding:"omitempty,url"`
	Website     string  `json:"website" binding:"omitempty,url"`
	Notes       string  `json:"notes"`
}

// UpdateEventRequest is a partial update. An empty date string clears the date.
type UpdateEventRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	StartDate   *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
	CFPDeadline *string `json:"cfp_deadline" binding:"omitempty,datetime=2006-01-02"`
	CFPURL      *string `json:"cfp_url" binding:"omitempty,url"`
	Website     *string `json:"website" binding:"omitempty,url"`
	Notes       *string `json:"notes"`
}

type EventFilterQuery struct {
	commonDto.PaginationQuery
	Search string `form:"q"`
	// Open keeps only events whose CFP has not closed yet.
	Open bool `form:"open"`
}

type EventResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	StartDate   *string   `json:"start_date,omitempty"`
	EndDate     *string   `json:"end_date,omitempty"`
	Location    string    `json:"location"`
	CFPDeadline *string   `json:"cfp_deadline,omitempty"`
	CFPURL      string    `json:"cfp_url"`
	Website     string    `json:"website"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type EventListResponse struct {
	Data []*EventResponse         `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

func ToEventResponse(e *entity.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		StartDate:   commonDto.FormatDate(e.StartDate),
		EndDate:     commonDto.FormatDate(e.EndDate),
		Location:    e.Location,
		CFPDeadline: commonDto.FormatDate(e.CFPDeadline),
		CFPURL:      e.CFPURL,
		Website:     e.Website,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToEventResponses(events []entity.Event) []*EventResponse {
	res := make([]*EventResponse, 0, len(events))
	for i := range events {
		res = append(res, ToEventResponse(&events[i]))
	}
	return res
}
