package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/binwatch/internal/domain"
)

// ReportPage is one page of reports ordered by creation time descending,
// with an opaque continuation cursor for the next page (empty when exhausted).
type ReportPage struct {
	Reports    []domain.Report
	NextCursor string
}

// ReportStats aggregates the admin dashboard counters.
type ReportStats struct {
	TotalToday int64
	Pending    int64
	Resolved   int64
	Critical   int64
}

// ReportRepository encapsulates report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	UpdateWorkflowStatus(ctx context.Context, id string, status domain.WorkflowStatus) error
	ListPage(ctx context.Context, pageSize int, cursor string) (*ReportPage, error)
	ListByReporter(ctx context.Context, uid string, limit int) ([]domain.Report, error)
	Stats(ctx context.Context) (*ReportStats, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportColumns = `id, latitude, longitude, address, region, bin_status, photo_url,
               reported_by, reporter_name, reporter_email, reporter_region,
               workflow_status, created_at, updated_at`

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (latitude, longitude, address, region, bin_status, photo_url,
                             reported_by, reporter_name, reporter_email, reporter_region, workflow_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		report.Location.Latitude,
		report.Location.Longitude,
		report.Location.Address,
		report.Region,
		report.BinStatus,
		report.PhotoURL,
		report.ReportedBy,
		report.ReporterName,
		report.ReporterEmail,
		report.ReporterRegion,
		report.WorkflowStatus,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id=$1`

	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.Location.Latitude,
		&report.Location.Longitude,
		&report.Location.Address,
		&report.Region,
		&report.BinStatus,
		&report.PhotoURL,
		&report.ReportedBy,
		&report.ReporterName,
		&report.ReporterEmail,
		&report.ReporterRegion,
		&report.WorkflowStatus,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) UpdateWorkflowStatus(ctx context.Context, id string, status domain.WorkflowStatus) error {
	const query = `UPDATE reports SET workflow_status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) ListPage(ctx context.Context, pageSize int, cursor string) (*ReportPage, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	base := `SELECT ` + reportColumns + ` FROM reports`
	clauses := []string{"1=1"}
	args := []any{}

	if cursor != "" {
		createdAt, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		args = append(args, createdAt)
		first := len(args)
		args = append(args, id)
		second := len(args)
		clauses = append(clauses, fmt.Sprintf("(created_at, id) < ($%d, $%d)", first, second))
	}

	// Fetch one extra row to decide whether a next page exists.
	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d`,
		base, strings.Join(clauses, " AND "), pageSize+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil {
		return nil, err
	}

	page := &ReportPage{Reports: reports}
	if len(reports) > pageSize {
		page.Reports = reports[:pageSize]
		last := page.Reports[pageSize-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

func (r *reportRepository) ListByReporter(ctx context.Context, uid string, limit int) ([]domain.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT `+reportColumns+` FROM reports WHERE reported_by=$1 ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReports(rows)
}

func (r *reportRepository) Stats(ctx context.Context) (*ReportStats, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW())),
            COUNT(*) FILTER (WHERE workflow_status = 'reported'),
            COUNT(*) FILTER (WHERE workflow_status = 'collected'),
            COUNT(*) FILTER (WHERE bin_status = 'Overflowing' AND workflow_status <> 'collected')
        FROM reports`

	var stats ReportStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalToday,
		&stats.Pending,
		&stats.Resolved,
		&stats.Critical,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanReports(rows pgx.Rows) ([]domain.Report, error) {
	var result []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.Location.Latitude,
			&report.Location.Longitude,
			&report.Location.Address,
			&report.Region,
			&report.BinStatus,
			&report.PhotoURL,
			&report.ReportedBy,
			&report.ReporterName,
			&report.ReporterEmail,
			&report.ReporterRegion,
			&report.WorkflowStatus,
			&report.CreatedAt,
			&report.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}

func encodeCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("invalid cursor format")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return createdAt, parts[1], nil
}
