package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeMention      = "mention"
	NotificationTypeStatusChange = "status_change"
	NotificationTypeComment      = "comment"
	NotificationTypeCFPDeadline  = "cfp_deadline"
)

const DeliveryInApp = "in_app"

const DefaultCFPDeadlineDaysBefore = 7

// Notification is denormalized so it survives deletion of the activity that caused it.
type Notification struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	Type           string     `gorm:"size:20;not null;index" json:"type"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Message        string     `gorm:"type:text;not null" json:"message"`
	Link           string     `gorm:"type:text" json:"link"`
	ActorID        *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	Actor          *User      `gorm:"foreignKey:ActorID;constraint:OnDelete:SET NULL" json:"actor,omitempty"`
	ActivityID     *uuid.UUID `gorm:"type:uuid;index" json:"activity_id,omitempty"`
	EventID        *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	IsRead         bool       `gorm:"not null;index:idx_notifications_user_read,priority:2" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	DeliveryMethod string     `gorm:"size:20;not null" json:"delivery_method"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	if n.DeliveryMethod == "" {
		n.DeliveryMethod = DeliveryInApp
	}
	return
}

// NotificationPreference is created lazily; see DefaultNotificationPreference.
type NotificationPreference struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	MentionsEnabled       bool      `gorm:"not null" json:"mentions_enabled"`
	StatusChangesEnabled  bool      `gorm:"not null" json:"status_changes_enabled"`
	CommentsEnabled       bool      `gorm:"not null" json:"comments_enabled"`
	CFPDeadlinesEnabled   bool      `gorm:"column:cfp_deadlines_enabled;not null" json:"cfp_deadlines_enabled"`
	CFPDeadlineDaysBefore int       `gorm:"column:cfp_deadline_days_before;not null" json:"cfp_deadline_days_before"`
	EmailEnabled          bool      `gorm:"not null" json:"email_enabled"`
	SlackEnabled          bool      `gorm:"not null" json:"slack_enabled"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *NotificationPreference) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// DefaultNotificationPreference is what a user without a stored row gets:
// every category on, delivery channels off.
func DefaultNotificationPreference(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:                userID,
		MentionsEnabled:       true,
		StatusChangesEnabled:  true,
		CommentsEnabled:       true,
		CFPDeadlinesEnabled:   true,
		CFPDeadlineDaysBefore: DefaultCFPDeadlineDaysBefore,
	}
}
