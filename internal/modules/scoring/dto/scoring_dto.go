package dto

import (
	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Weight       int    `json:"weight" binding:"required,min=1,max=10"`
	DisplayOrder int    `json:"display_order" binding:"required,min=1,max=10"`
	Description9 string `json:"description_9" binding:"required"`
	Description3 string `json:"description_3" binding:"required"`
	Description1 string `json:"description_1" binding:"required"`
	Description0 string `json:"description_0" binding:"required"`
}

// ScoreRequest carries one rubric level. Score is a pointer so 0 passes "required".
type ScoreRequest struct {
	Score *int    `json:"score" binding:"required,oneof=0 1 3 9"`
	Notes *string `json:"notes"`
}

type BatchScoreItem struct {
	CategoryID uuid.UUID `json:"category_id" binding:"required"`
	Score      *int      `json:"score" binding:"required,oneof=0 1 3 9"`
	Notes      *string   `json:"notes"`
}

type BatchScoreRequest struct {
	Scores []BatchScoreItem `json:"scores" binding:"required,min=1,max=10,dive"`
}

type ThresholdRequest struct {
	Threshold *int `json:"threshold" binding:"required,min=0,max=900"`
}

type CategoryScore struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Weight     int       `json:"weight"`
	Score      *int      `json:"score"`
	Weighted   int       `json:"weighted"`
	Notes      *string   `json:"notes,omitempty"`
}

type EventScoreResponse struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventName  string          `json:"event_name"`
	Categories []CategoryScore `json:"categories"`
	Summary    Summary         `json:"summary"`
}

type RankingEntry struct {
	Rank        int       `json:"rank"`
	EventID     uuid.UUID `json:"event_id"`
	EventName   string    `json:"event_name"`
	CFPDeadline *string   `json:"cfp_deadline,omitempty"`
	Summary     Summary   `json:"summary"`
}

type Summary struct {
	TotalScore     int  `json:"total_score"`
	MaxScore       int  `json:"max_score"`
	IsComplete     bool `json:"is_complete"`
	MeetsThreshold bool `json:"meets_threshold"`
	ScoredCount    int  `json:"scored_count"`
	CategoryCount  int  `json:"category_count"`
	Threshold      int  `json:"threshold"`
}
