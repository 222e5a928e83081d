package cases

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for case repository operations
type RepositoryInterface interface {
	CreateCase(ctx context.Context, c *Case) error
	GetCaseByID(ctx context.Context, id uuid.UUID) (*Case, error)
	// GetOpenCaseByEntity returns the entity's non-closed case, or nil when
	// there is none.
	GetOpenCaseByEntity(ctx context.Context, entityID string) (*Case, error)
	LinkReport(ctx context.Context, caseID, reportID uuid.UUID) error
	// UpdateSeverity raises priority and points at the latest risk report,
	// bumping version and last_updated.
	UpdateSeverity(ctx context.Context, caseID uuid.UUID, priority CasePriority, riskReportID uuid.UUID) error
	// UpdateStatusCAS transitions status only when the stored version matches
	// expectedVersion; reports whether a row was updated.
	UpdateStatusCAS(ctx context.Context, caseID uuid.UUID, status CaseStatus, expectedVersion int) (bool, error)
	// AssignInvestigatorCAS sets the investigator (moving new cases to
	// under_investigation) under the same version check.
	AssignInvestigatorCAS(ctx context.Context, caseID, investigatorID uuid.UUID, expectedVersion int) (bool, error)
	ListCases(ctx context.Context, filters ListFilters, limit, offset int) ([]*Case, int64, error)
}

// EvidenceLinker is the evidence gateway surface the case manager needs
type EvidenceLinker interface {
	LinkToCase(ctx context.Context, evidenceID, caseID uuid.UUID) error
}
