package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles incident report persistence
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new report repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateIncidentReport inserts a new incident report
func (r *Repository) CreateIncidentReport(ctx context.Context, report *IncidentReport) error {
	query := `
		INSERT INTO incident_reports (
			id, entity_id, reporter_id, narrative, analysis_pending, risk_report_id, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.EntityID,
		report.ReporterID,
		report.Narrative,
		report.AnalysisPending,
		report.RiskReportID,
		report.SubmittedAt,
	)

	return err
}

// GetIncidentReportByID retrieves a report by ID
func (r *Repository) GetIncidentReportByID(ctx context.Context, id uuid.UUID) (*IncidentReport, error) {
	query := `
		SELECT id, entity_id, reporter_id, narrative, analysis_pending, risk_report_id, submitted_at
		FROM incident_reports
		WHERE id = $1
	`

	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// AttachRiskReport sets the risk report reference and clears the pending flag
func (r *Repository) AttachRiskReport(ctx context.Context, reportID, riskReportID uuid.UUID) error {
	query := `
		UPDATE incident_reports
		SET risk_report_id = $2, analysis_pending = FALSE
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, reportID, riskReportID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// MarkAnalysisPending flags a report whose analysis could not complete
func (r *Repository) MarkAnalysisPending(ctx context.Context, reportID uuid.UUID) error {
	query := `UPDATE incident_reports SET analysis_pending = TRUE WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, reportID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ListRecent returns reports newest first with the total count
func (r *Repository) ListRecent(ctx context.Context, limit, offset int) ([]*IncidentReport, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incident_reports`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, entity_id, reporter_id, narrative, analysis_pending, risk_report_id, submitted_at
		FROM incident_reports
		ORDER BY submitted_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*IncidentReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, report)
	}

	return items, total, rows.Err()
}

func scanReport(row pgx.Row) (*IncidentReport, error) {
	var report IncidentReport
	err := row.Scan(
		&report.ID,
		&report.EntityID,
		&report.ReporterID,
		&report.Narrative,
		&report.AnalysisPending,
		&report.RiskReportID,
		&report.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
