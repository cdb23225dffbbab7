package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/events"
	"github.com/spec-kit/binwatch/internal/repository"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// NotificationService maintains the per-user mailbox. Workflow transitions
// feed it through the dispatcher; it is the sole creator of notifications
// tied to a report.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to workflow events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventReportStatusChanged, n.handleStatusChanged)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportStatusChangedPayload)
	if !ok {
		return nil
	}

	shortID := event.ReportID
	if len(shortID) > 6 {
		shortID = shortID[len(shortID)-6:]
	}

	var notification *domain.Notification
	switch payload.NewStatus {
	case domain.WorkflowAcknowledged:
		notification = acknowledgedNotification(payload.ReporterID, event.ReportID, shortID)
	case domain.WorkflowCollected:
		notification = collectedNotification(payload.ReporterID, event.ReportID, shortID)
	default:
		return nil
	}

	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("notification write failed",
			zap.String("report_id", event.ReportID),
			zap.String("user_id", payload.ReporterID),
			zap.Error(err))
		return err
	}
	return nil
}

func acknowledgedNotification(userID, reportID, shortID string) *domain.Notification {
	return &domain.Notification{
		UserID:   userID,
		Title:    "Report Acknowledged",
		Message:  fmt.Sprintf("Your waste bin report (ID: %s) has been acknowledged by the waste management team.", shortID),
		Type:     domain.NotificationReportAcknowledged,
		ReportID: reportID,
	}
}

func collectedNotification(userID, reportID, shortID string) *domain.Notification {
	return &domain.Notification{
		UserID:   userID,
		Title:    "Report Resolved",
		Message:  fmt.Sprintf("The waste bin from your report (ID: %s) has been collected.", shortID),
		Type:     domain.NotificationReportCollected,
		ReportID: reportID,
	}
}

// ListForUser returns a user's mailbox, newest first.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	items, err := n.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return items, nil
}

// MarkRead marks one entry read for its owner.
func (n *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := n.notifications.MarkRead(ctx, id, userID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// MarkAllRead marks every unread entry read for the user.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := n.notifications.MarkAllRead(ctx, userID); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}
