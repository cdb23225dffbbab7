package events

import (
	"time"

	"github.com/spec-kit/binwatch/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportSubmitted     EventType = "report_submitted"
	EventReportStatusChanged EventType = "report_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UID  string          `json:"uid"`
	Role domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  string      `json:"report_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportSubmittedPayload payload.
type ReportSubmittedPayload struct {
	Region    domain.Region    `json:"region"`
	BinStatus domain.BinStatus `json:"bin_status"`
	Reporter  string           `json:"reporter"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	OldStatus  domain.WorkflowStatus `json:"old_status"`
	NewStatus  domain.WorkflowStatus `json:"new_status"`
	ReporterID string                `json:"reporter_id"`
}
