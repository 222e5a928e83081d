package cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles case persistence
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new case repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateCase inserts a new case
func (r *Repository) CreateCase(ctx context.Context, c *Case) error {
	query := `
		INSERT INTO cases (
			id, entity_id, status, priority, investigator_id, risk_report_id,
			version, created_at, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.EntityID,
		c.Status,
		c.Priority,
		c.InvestigatorID,
		c.RiskReportID,
		c.Version,
		c.CreatedAt,
		c.LastUpdated,
	)

	return err
}

// GetCaseByID retrieves a case with its linked report ids
func (r *Repository) GetCaseByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	query := `
		SELECT id, entity_id, status, priority, investigator_id, risk_report_id,
		       version, created_at, last_updated
		FROM cases
		WHERE id = $1
	`

	c, err := scanCase(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	reports, err := r.getLinkedReportIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	c.LinkedReports = reports

	return c, nil
}

// GetOpenCaseByEntity returns the entity's non-closed case, or nil when none
func (r *Repository) GetOpenCaseByEntity(ctx context.Context, entityID string) (*Case, error) {
	query := `
		SELECT id, entity_id, status, priority, investigator_id, risk_report_id,
		       version, created_at, last_updated
		FROM cases
		WHERE entity_id = $1 AND status != $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	c, err := scanCase(r.db.QueryRow(ctx, query, entityID, StatusClosed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	reports, err := r.getLinkedReportIDs(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.LinkedReports = reports

	return c, nil
}

// LinkReport links an incident report to a case, idempotently
func (r *Repository) LinkReport(ctx context.Context, caseID, reportID uuid.UUID) error {
	query := `
		INSERT INTO case_reports (case_id, report_id)
		VALUES ($1, $2)
		ON CONFLICT (case_id, report_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, caseID, reportID)
	return err
}

// UpdateSeverity raises priority and points at the latest risk report
func (r *Repository) UpdateSeverity(ctx context.Context, caseID uuid.UUID, priority CasePriority, riskReportID uuid.UUID) error {
	query := `
		UPDATE cases
		SET priority = $2, risk_report_id = $3, version = version + 1, last_updated = $4
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, caseID, priority, riskReportID, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}

// UpdateStatusCAS transitions status only when the stored version matches
func (r *Repository) UpdateStatusCAS(ctx context.Context, caseID uuid.UUID, status CaseStatus, expectedVersion int) (bool, error) {
	query := `
		UPDATE cases
		SET status = $2, version = version + 1, last_updated = $3
		WHERE id = $1 AND version = $4
	`
	tag, err := r.db.Exec(ctx, query, caseID, status, time.Now().UTC(), expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AssignInvestigatorCAS sets the investigator under the version check. New
// cases move to under_investigation as part of the same statement.
func (r *Repository) AssignInvestigatorCAS(ctx context.Context, caseID, investigatorID uuid.UUID, expectedVersion int) (bool, error) {
	query := `
		UPDATE cases
		SET investigator_id = $2,
		    status = CASE WHEN status = $5 THEN $6 ELSE status END,
		    version = version + 1,
		    last_updated = $3
		WHERE id = $1 AND version = $4
	`
	tag, err := r.db.Exec(ctx, query, caseID, investigatorID, time.Now().UTC(), expectedVersion,
		StatusNew, StatusUnderInvestigation)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListCases returns cases matching all set filters, newest first
func (r *Repository) ListCases(ctx context.Context, filters ListFilters, limit, offset int) ([]*Case, int64, error) {
	where := ""
	args := []interface{}{}
	argIdx := 1

	addFilter := func(clause string, value interface{}) {
		if where == "" {
			where = "WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, argIdx)
		args = append(args, value)
		argIdx++
	}

	if filters.Status != nil {
		addFilter("c.status = $%d", *filters.Status)
	}
	if filters.Priority != nil {
		addFilter("c.priority = $%d", *filters.Priority)
	}
	if filters.InvestigatorID != nil {
		addFilter("c.investigator_id = $%d", *filters.InvestigatorID)
	}
	if filters.RiskLevel != nil {
		addFilter("rr.risk_level = $%d", *filters.RiskLevel)
	}

	base := `
		FROM cases c
		LEFT JOIN risk_reports rr ON rr.id = c.risk_report_id
	` + where

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) "+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.entity_id, c.status, c.priority, c.investigator_id,
		       c.risk_report_id, c.version, c.created_at, c.last_updated
	` + base + fmt.Sprintf(" ORDER BY c.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}

	return items, total, rows.Err()
}

func (r *Repository) getLinkedReportIDs(ctx context.Context, caseID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT report_id FROM case_reports WHERE case_id = $1 ORDER BY linked_at`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(
		&c.ID,
		&c.EntityID,
		&c.Status,
		&c.Priority,
		&c.InvestigatorID,
		&c.RiskReportID,
		&c.Version,
		&c.CreatedAt,
		&c.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	c.LinkedReports = []uuid.UUID{}
	return &c, nil
}
