package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProposalStatusDraft     = "draft"
	ProposalStatusSubmitted = "submitted"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusRejected  = "rejected"
	ProposalStatusConfirmed = "confirmed"
)

const (
	TalkTypeKeynote   = "keynote"
	TalkTypeRegular   = "regular"
	TalkTypeLightning = "lightning"
	TalkTypeWorkshop  = "workshop"
)

type Proposal struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TalkID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"talk_id"`
	Talk        Talk       `gorm:"constraint:OnDelete:CASCADE" json:"talk"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	Event       Event      `gorm:"constraint:OnDelete:CASCADE" json:"event"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Status      string     `gorm:"size:20;not null;index" json:"status"`
	TalkType    string     `gorm:"size:20;not null" json:"talk_type"`
	SubmittedAt *time.Time `gorm:"type:date" json:"submitted_at,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	if p.Status == "" {
		p.Status = ProposalStatusDraft
	}
	if p.TalkType == "" {
		p.TalkType = TalkTypeRegular
	}
	return
}
