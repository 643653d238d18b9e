package dto

import (
	"anoa.com/cfptracker/internal/entity"
	commonDto "anoa.com/cfptracker/pkg/dto"
)

type ListNotificationsQuery struct {
	commonDto.PaginationQuery
	UnreadOnly bool `form:"unread_only"`
}

type NotificationListResponse struct {
	Data []entity.Notification    `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

// UpdatePreferencesRequest is a partial update; omitted fields keep their value.
type UpdatePreferencesRequest struct {
	MentionsEnabled       *bool `json:"mentions_enabled"`
	StatusChangesEnabled  *bool `json:"status_changes_enabled"`
	CommentsEnabled       *bool `json:"comments_enabled"`
	CFPDeadlinesEnabled   *bool `json:"cfp_deadlines_enabled"`
	CFPDeadlineDaysBefore *int  `json:"cfp_deadline_days_before" binding:"omitempty,min=1,max=90"`
	EmailEnabled          *bool `json:"email_enabled"`
	SlackEnabled          *bool `json:"slack_enabled"`
}

func (r UpdatePreferencesRequest) Apply(p *entity.NotificationPreference) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&p.MentionsEnabled, r.MentionsEnabled)
	setBool(&p.StatusChangesEnabled, r.StatusChangesEnabled)
	setBool(&p.CommentsEnabled, r.CommentsEnabled)
	setBool(&p.CFPDeadlinesEnabled, r.CFPDeadlinesEnabled)
	setBool(&p.EmailEnabled, r.EmailEnabled)
	setBool(&p.SlackEnabled, r.SlackEnabled)
	if r.CFPDeadlineDaysBefore != nil {
		p.CFPDeadlineDaysBefore = *r.CFPDeadlineDaysBefore
	}
}
