package domain

import "time"

// NotificationType enumerates mailbox entry kinds.
type NotificationType string

const (
	NotificationReportAcknowledged NotificationType = "report_acknowledged"
	NotificationReportCollected    NotificationType = "report_collected"
	NotificationInfo               NotificationType = "info"
	NotificationAlert              NotificationType = "alert"
)

// Notification is a per-user mailbox entry, created by the workflow engine
// on report transitions and mutated only by marking read. Retention is an
// advisory 30 days enforced by an external sweep.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      NotificationType
	ReportID  string
	Read      bool
	CreatedAt time.Time
}
