package entity

import (
	"fmt"
	"time"

	"anoa.com/cfptracker/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityTypeComment      = "comment"
	ActivityTypeStatusChange = "status_change"
)

type Activity struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID *uuid.UUID `gorm:"type:uuid;index" json:"proposal_id,omitempty"`
	EventID    *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	TalkID     *uuid.UUID `gorm:"type:uuid;index" json:"talk_id,omitempty"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User       `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Type       string     `gorm:"size:20;not null" json:"type"`
	Content    *string    `gorm:"type:text" json:"content,omitempty"`
	IsEdited   bool       `gorm:"not null" json:"is_edited"`
	EditedAt   *time.Time `json:"edited_at,omitempty"`
	OldStatus  *string    `gorm:"size:20" json:"old_status,omitempty"`
	NewStatus  *string    `gorm:"size:20" json:"new_status,omitempty"`
	Mentions   []Mention  `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"mentions,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

// Target returns the parent the activity is attached to.
func (a *Activity) Target() ActivityTarget {
	switch {
	case a.ProposalID != nil:
		return ProposalTarget(*a.ProposalID)
	case a.EventID != nil:
		return EventTarget(*a.EventID)
	case a.TalkID != nil:
		return TalkTarget(*a.TalkID)
	}
	return ActivityTarget{}
}

// SetTarget attaches the activity to t, clearing any other parent.
func (a *Activity) SetTarget(t ActivityTarget) {
	a.ProposalID, a.EventID, a.TalkID = nil, nil, nil
	id := t.id
	switch t.kind {
	case TargetProposal:
		a.ProposalID = &id
	case TargetEvent:
		a.EventID = &id
	case TargetTalk:
		a.TalkID = &id
	}
}

type Mention struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mentions_pair,priority:1" json:"activity_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mentions_pair,priority:2;index" json:"user_id"`
	User       User      `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Mention) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

type TargetKind string

const (
	TargetProposal TargetKind = "proposal"
	TargetEvent    TargetKind = "event"
	TargetTalk     TargetKind = "talk"
)

// ActivityTarget is the one parent an activity belongs to. The zero value is invalid;
// build one with ProposalTarget, EventTarget, TalkTarget or NewActivityTarget.
type ActivityTarget struct {
	kind TargetKind
	id   uuid.UUID
}

func ProposalTarget(id uuid.UUID) ActivityTarget {
	return ActivityTarget{kind: TargetProposal, id: id}
}

func EventTarget(id uuid.UUID) ActivityTarget {
	return ActivityTarget{kind: TargetEvent, id: id}
}

func TalkTarget(id uuid.UUID) ActivityTarget {
	return ActivityTarget{kind: TargetTalk, id: id}
}

// NewActivityTarget accepts exactly one non-nil parent id.
func NewActivityTarget(proposalID, eventID, talkID *uuid.UUID) (ActivityTarget, error) {
	var targets []ActivityTarget
	if proposalID != nil {
		targets = append(targets, ProposalTarget(*proposalID))
	}
	if eventID != nil {
		targets = append(targets, EventTarget(*eventID))
	}
	if talkID != nil {
		targets = append(targets, TalkTarget(*talkID))
	}
	if len(targets) != 1 {
		return ActivityTarget{}, fmt.Errorf("%w: exactly one of proposal_id, event_id or talk_id is required", apperror.ErrInvalidInput)
	}
	if targets[0].id == uuid.Nil {
		return ActivityTarget{}, fmt.Errorf("%w: %s_id must not be empty", apperror.ErrInvalidInput, targets[0].kind)
	}
	return targets[0], nil
}

func (t ActivityTarget) Kind() TargetKind { return t.kind }
func (t ActivityTarget) ID() uuid.UUID    { return t.id }
func (t ActivityTarget) IsZero() bool     { return t.kind == "" }

// Column is the activities column that stores this target.
func (t ActivityTarget) Column() string {
	return string(t.kind) + "_id"
}

// Link is the app path of the parent.
func (t ActivityTarget) Link() string {
	return fmt.Sprintf("/%ss/%s", t.kind, t.id)
}
