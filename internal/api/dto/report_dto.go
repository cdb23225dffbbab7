package dto

import (
	"time"

	"github.com/spec-kit/binwatch/internal/domain"
)

// LocationPayload is the reported bin position.
type LocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// SubmitReportRequest payload.
type SubmitReportRequest struct {
	BinStatus domain.BinStatus `json:"bin_status"`
	Location  LocationPayload  `json:"location"`
	PhotoURL  string           `json:"photo_url"`
}

// AdvanceReportRequest payload for workflow transitions.
type AdvanceReportRequest struct {
	TargetStatus domain.WorkflowStatus `json:"target_status"`
}

// ReportResponse response.
type ReportResponse struct {
	ID             string                `json:"id"`
	Location       LocationPayload       `json:"location"`
	Region         domain.Region         `json:"region"`
	BinStatus      domain.BinStatus      `json:"bin_status"`
	PhotoURL       string                `json:"photo_url,omitempty"`
	ReportedBy     string                `json:"reported_by"`
	ReporterName   string                `json:"reporter_name"`
	ReporterEmail  string                `json:"reporter_email"`
	ReporterRegion domain.Region         `json:"reporter_region"`
	WorkflowStatus domain.WorkflowStatus `json:"workflow_status"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ReportPageResponse is one admin listing page with a continuation cursor.
type ReportPageResponse struct {
	Reports    []ReportResponse `json:"reports"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ReportStatsResponse is the admin dashboard counters.
type ReportStatsResponse struct {
	TotalToday int64 `json:"total_today"`
	Pending    int64 `json:"pending"`
	Resolved   int64 `json:"resolved"`
	Critical   int64 `json:"critical"`
}
