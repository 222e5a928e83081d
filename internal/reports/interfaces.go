package reports

import (
	"context"

	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/cases"
	"github.com/chainwatchhq/chainwatch/internal/risk"
)

// RepositoryInterface defines the interface for report repository operations
type RepositoryInterface interface {
	CreateIncidentReport(ctx context.Context, r *IncidentReport) error
	GetIncidentReportByID(ctx context.Context, id uuid.UUID) (*IncidentReport, error)
	// AttachRiskReport sets the risk report reference and clears the pending
	// flag.
	AttachRiskReport(ctx context.Context, reportID, riskReportID uuid.UUID) error
	MarkAnalysisPending(ctx context.Context, reportID uuid.UUID) error
	ListRecent(ctx context.Context, limit, offset int) ([]*IncidentReport, int64, error)
}

// EntityRegistry normalizes and records entity identifiers
type EntityRegistry interface {
	Ensure(ctx context.Context, raw string) (string, error)
}

// CaseOpener is the case manager surface the report service needs
type CaseOpener interface {
	OpenOrUpdate(ctx context.Context, entityID string, riskReport *risk.RiskReport, reportID uuid.UUID) (*cases.Case, error)
}
