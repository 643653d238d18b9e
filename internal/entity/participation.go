package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ParticipationSpeak     = "speak"
	ParticipationSponsor   = "sponsor"
	ParticipationAttend    = "attend"
	ParticipationExhibit   = "exhibit"
	ParticipationVolunteer = "volunteer"
)

const (
	ParticipationInterested = "interested"
	ParticipationApplied    = "applied"
	ParticipationConfirmed  = "confirmed"
	ParticipationNotGoing   = "not_going"
)

type EventParticipation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participation_pair,priority:1" json:"event_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participation_pair,priority:2" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *EventParticipation) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
