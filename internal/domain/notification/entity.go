package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveSubmitted       NotificationType = "leave_submitted"
	TypeLeaveDecided         NotificationType = "leave_decided"
	TypeODSubmitted          NotificationType = "od_submitted"
	TypeODDecided            NotificationType = "od_decided"
	TypePunchMissedSubmitted NotificationType = "punch_missed_submitted"
	TypePunchMissedDecided   NotificationType = "punch_missed_decided"
	TypeLateArrival          NotificationType = "late_arrival"
	TypeRequestUnlocked      NotificationType = "request_unlocked"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
