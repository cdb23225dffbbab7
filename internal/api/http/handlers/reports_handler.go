package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/binwatch/internal/access"
	"github.com/spec-kit/binwatch/internal/api/dto"
	"github.com/spec-kit/binwatch/internal/domain"
	"github.com/spec-kit/binwatch/internal/service"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

// ReportsHandler exposes resident submission endpoints and the admin
// workflow surface.
type ReportsHandler struct {
	reports         *service.ReportService
	defaultPageSize int
	maxPageSize     int
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, defaultPageSize, maxPageSize int) *ReportsHandler {
	return &ReportsHandler{
		reports:         reports,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// Submit handles POST /reports.
func (h *ReportsHandler) Submit(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Profile == nil {
		return apperrors.NewProfileMissing()
	}

	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	report, err := h.reports.Submit(c.UserContext(), state.Profile, service.SubmitInput{
		BinStatus: req.BinStatus,
		Location: domain.Location{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			Address:   req.Location.Address,
		},
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reportResponse(report)})
}

// ListMine handles GET /reports/mine.
func (h *ReportsHandler) ListMine(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Session == nil {
		return apperrors.NewUnauthorized("session required")
	}

	limit := h.parsePageSize(c)
	reports, err := h.reports.ListMine(c.UserContext(), state.Session.UID, limit)
	if err != nil {
		return err
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, *reportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// List handles GET /admin/reports with keyset pagination.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	page, err := h.reports.ListPage(c.UserContext(), h.parsePageSize(c), c.Query("cursor"))
	if err != nil {
		return err
	}

	out := dto.ReportPageResponse{
		Reports:    make([]dto.ReportResponse, 0, len(page.Reports)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Reports {
		out.Reports = append(out.Reports, *reportResponse(&page.Reports[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Stats handles GET /admin/reports/stats.
func (h *ReportsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reports.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReportStatsResponse{
		TotalToday: stats.TotalToday,
		Pending:    stats.Pending,
		Resolved:   stats.Resolved,
		Critical:   stats.Critical,
	}})
}

// Advance handles POST /admin/reports/:id/advance.
func (h *ReportsHandler) Advance(c *fiber.Ctx) error {
	state, _ := access.StateFromContext(c)
	if state == nil || state.Profile == nil {
		return apperrors.NewProfileMissing()
	}

	var req dto.AdvanceReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TargetStatus == "" {
		return apperrors.NewValidationError("target_status required", nil)
	}

	report, err := h.reports.Advance(c.UserContext(), state.Profile, c.Params("id"), req.TargetStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponse(report)})
}

// parsePageSize clamps page_size into [1, max], falling back to the default
// on absent or unparseable input.
func (h *ReportsHandler) parsePageSize(c *fiber.Ctx) int {
	raw := c.Query("page_size")
	if raw == "" {
		return h.defaultPageSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return h.defaultPageSize
	}
	if n > h.maxPageSize {
		return h.maxPageSize
	}
	return n
}

func reportResponse(report *domain.Report) *dto.ReportResponse {
	return &dto.ReportResponse{
		ID: report.ID,
		Location: dto.LocationPayload{
			Latitude:  report.Location.Latitude,
			Longitude: report.Location.Longitude,
			Address:   report.Location.Address,
		},
		Region:         report.Region,
		BinStatus:      report.BinStatus,
		PhotoURL:       report.PhotoURL,
		ReportedBy:     report.ReportedBy,
		ReporterName:   report.ReporterName,
		ReporterEmail:  report.ReporterEmail,
		ReporterRegion: report.ReporterRegion,
		WorkflowStatus: report.WorkflowStatus,
		CreatedAt:      report.CreatedAt,
		UpdatedAt:      report.UpdatedAt,
	}
}
