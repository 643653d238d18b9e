package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MaxScoringCategories  = 10
	MaxScoreLevel         = 9
	ScoringSettingsID     = 1
	DefaultScoreThreshold = 70
	MaxScoreThreshold     = 900
)

// ValidScore reports whether n is one of the rubric levels 0, 1, 3, 9.
func ValidScore(n int) bool {
	switch n {
	case 0, 1, 3, 9:
		return true
	}
	return false
}

type ScoringCategory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Weight       int       `gorm:"not null;uniqueIndex" json:"weight"`
	DisplayOrder int       `gorm:"not null" json:"display_order"`
	Description9 string    `gorm:"type:text;not null" json:"description_9"`
	Description3 string    `gorm:"type:text;not null" json:"description_3"`
	Description1 string    `gorm:"type:text;not null" json:"description_1"`
	Description0 string    `gorm:"type:text;not null" json:"description_0"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *ScoringCategory) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// EventScore holds one rubric score per (event, category).
type EventScore struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EventID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_event_scores_pair,priority:1" json:"event_id"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_event_scores_pair,priority:2" json:"category_id"`
	Category   ScoringCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
	Score      int             `gorm:"not null" json:"score"`
	Notes      *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *EventScore) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

// ScoringSettings is a single-row table holding the recommendation threshold.
type ScoringSettings struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Threshold int       `gorm:"not null" json:"threshold"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
