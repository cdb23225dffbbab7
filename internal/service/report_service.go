package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/events"
	"github.com/spec-kit/binwatch/internal/repository"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// ReportService is the report workflow engine: it owns submission and the
// linear workflow lifecycle, and is the sole writer of workflowStatus.
type ReportService struct {
	reports    repository.ReportRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ReportDependencies bundles collaborator requirements.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// SubmitInput describes a report submission payload.
type SubmitInput struct {
	BinStatus domain.BinStatus
	Location  domain.Location
	PhotoURL  string
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Legal transitions: the lifecycle is strictly linear, no skipping, no
// regression.
var nextWorkflowStatus = map[domain.WorkflowStatus]domain.WorkflowStatus{
	domain.WorkflowReported:     domain.WorkflowAcknowledged,
	domain.WorkflowAcknowledged: domain.WorkflowCollected,
}

// Submit creates a report for a verified resident. Region is stamped from
// the reporter's profile, never from client input, to prevent region
// spoofing; the upstream access gate is not trusted for field validation.
func (s *ReportService) Submit(ctx context.Context, reporter *domain.UserProfile, input SubmitInput) (*domain.Report, error) {
	if reporter == nil {
		return nil, apperrors.NewProfileMissing()
	}
	if !input.BinStatus.IsValid() {
		return nil, apperrors.NewValidationError("a valid bin status is required", map[string]any{"bin_status": input.BinStatus})
	}
	if reporter.Region == "" {
		return nil, apperrors.NewValidationError("reporter profile has no region", nil)
	}
	if err := validatePhotoURL(input.PhotoURL); err != nil {
		return nil, err
	}

	report := &domain.Report{
		Location:       input.Location,
		Region:         reporter.Region,
		BinStatus:      input.BinStatus,
		PhotoURL:       strings.TrimSpace(input.PhotoURL),
		ReportedBy:     reporter.UID,
		ReporterName:   reporter.DisplayName,
		ReporterEmail:  reporter.Email,
		ReporterRegion: reporter.Region,
		WorkflowStatus: domain.WorkflowReported,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportSubmitted,
		ReportID: report.ID,
		Actor:    events.Actor{UID: reporter.UID, Role: reporter.Role},
		Payload: events.ReportSubmittedPayload{
			Region:    report.Region,
			BinStatus: report.BinStatus,
			Reporter:  report.ReportedBy,
		},
	})
	return report, nil
}

// Advance moves a report one step along the linear lifecycle. Only admin
// roles may advance; any other requested target, including same-state or
// backward, is rejected without mutation. Concurrent admin advances are
// last-write-wins by design.
func (s *ReportService) Advance(ctx context.Context, actor *domain.UserProfile, reportID string, target domain.WorkflowStatus) (*domain.Report, error) {
	if actor == nil || !actor.Role.IsAdmin() {
		return nil, apperrors.NewIllegalTransition("only admins may advance a report", nil)
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("report", map[string]any{"id": reportID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if nextWorkflowStatus[report.WorkflowStatus] != target {
		return nil, apperrors.NewIllegalTransition("workflow status only advances reported → acknowledged → collected",
			map[string]any{"current": report.WorkflowStatus, "requested": target})
	}

	if err := s.reports.UpdateWorkflowStatus(ctx, reportID, target); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	oldStatus := report.WorkflowStatus
	report.WorkflowStatus = target
	report.UpdatedAt = time.Now()

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportStatusChanged,
		ReportID: report.ID,
		Actor:    events.Actor{UID: actor.UID, Role: actor.Role},
		Payload: events.ReportStatusChangedPayload{
			OldStatus:  oldStatus,
			NewStatus:  target,
			ReporterID: report.ReportedBy,
		},
	})
	return report, nil
}

// ListPage returns one admin page of reports, newest first, with a
// continuation cursor.
func (s *ReportService) ListPage(ctx context.Context, pageSize int, cursor string) (*repository.ReportPage, error) {
	page, err := s.reports.ListPage(ctx, pageSize, cursor)
	if err != nil {
		if strings.Contains(err.Error(), "invalid cursor") {
			return nil, apperrors.NewValidationError("invalid continuation cursor", nil)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return page, nil
}

// ListMine returns a resident's own reports, newest first.
func (s *ReportService) ListMine(ctx context.Context, uid string, limit int) ([]domain.Report, error) {
	reports, err := s.reports.ListByReporter(ctx, uid, limit)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return reports, nil
}

// Stats returns the admin dashboard counters.
func (s *ReportService) Stats(ctx context.Context) (*repository.ReportStats, error) {
	stats, err := s.reports.Stats(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return stats, nil
}

// validatePhotoURL accepts empty (photo is optional) and otherwise requires
// a parseable absolute URL; malformed input fails rather than being dropped.
func validatePhotoURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return apperrors.NewValidationError("photo URL must be a valid absolute URL", map[string]any{"photo_url": raw})
	}
	return nil
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
