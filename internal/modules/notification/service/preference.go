package service

import "anoa.com/cfptracker/internal/entity"

// ShouldNotify reports whether prefs allow a notification of the given type.
// A nil prefs means the user never saved any, so the defaults apply.
func ShouldNotify(prefs *entity.NotificationPreference, notifType string) bool {
	if prefs == nil {
		return knownType(notifType)
	}

	switch notifType {
	case entity.NotificationTypeMention:
		return prefs.MentionsEnabled
	case entity.NotificationTypeStatusChange:
		return prefs.StatusChangesEnabled
	case entity.NotificationTypeComment:
		return prefs.CommentsEnabled
	case entity.NotificationTypeCFPDeadline:
		return prefs.CFPDeadlinesEnabled
	}
	return false
}

func knownType(notifType string) bool {
	switch notifType {
	case entity.NotificationTypeMention,
		entity.NotificationTypeStatusChange,
		entity.NotificationTypeComment,
		entity.NotificationTypeCFPDeadline:
		return true
	}
	return false
}
