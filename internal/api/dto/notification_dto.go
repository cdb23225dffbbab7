package dto

import (
	"time"

	"github.com/spec-kit/binwatch/internal/domain"
)

// NotificationResponse is one mailbox entry.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	ReportID  string                  `json:"report_id,omitempty"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}
