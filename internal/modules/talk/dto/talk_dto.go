package dto

import (
	"io"
	"time"

	"anoa.com/cfptracker/internal/entity"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"github.com/google/uuid"
)

const MaxSlidesSize = 50 << 20

type CreateTalkRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Abstract    string  `json:"abstract" binding:"required"`
	Description *string `json:"description"`
}

type UpdateTalkRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Abstract    *string `json:"abstract" binding:"omitempty,min=1"`
	Description *string `json:"description"`
}

type TalkFilterQuery struct {
	commonDto.PaginationQuery
	Search string `form:"search"`
	Mine   bool   `form:"mine"`
}

// SlidesFile is an uploaded slide deck.
type SlidesFile struct {
	Reader   io.Reader
	FileName string
	Size     int64
}

type TalkResponse struct {
	ID          uuid.UUID                `json:"id"`
	Title       string                   `json:"title"`
	Abstract    string                   `json:"abstract"`
	Description *string                  `json:"description,omitempty"`
	SlidesURL   *string                  `json:"slides_url,omitempty"`
	Owner       commonDto.AuthorResponse `json:"owner"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

type TalkListResponse struct {
	Data []*TalkResponse          `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

func ToTalkResponse(t *entity.Talk) *TalkResponse {
	return &TalkResponse{
		ID:          t.ID,
		Title:       t.Title,
		Abstract:    t.Abstract,
		Description: t.Description,
		SlidesURL:   t.SlidesURL,
		Owner: commonDto.AuthorResponse{
			ID:       t.User.ID,
			Username: t.User.Username,
			Name:     t.User.Name,
		},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
