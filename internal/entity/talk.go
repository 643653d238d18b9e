package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Talk is a reusable abstract that can be proposed to many events.
type Talk struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Abstract    string    `gorm:"type:text;not null" json:"abstract"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	SlidesURL   *string   `gorm:"type:text" json:"slides_url,omitempty"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Talk) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}
