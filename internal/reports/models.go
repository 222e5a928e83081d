package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/risk"
)

// MaxNarrativeLength bounds the free-text narrative on a report
const MaxNarrativeLength = 500

// IncidentReport is a submitted fraud report. Immutable once created except
// for the attached risk report reference.
type IncidentReport struct {
	ID              uuid.UUID        `json:"id"`
	EntityID        string           `json:"entity_id"`
	ReporterID      *uuid.UUID       `json:"reporter_id,omitempty"`
	Narrative       string           `json:"narrative"`
	AnalysisPending bool             `json:"analysis_pending"`
	RiskReportID    *uuid.UUID       `json:"risk_report_id,omitempty"`
	RiskReport      *risk.RiskReport `json:"risk_report,omitempty"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}

// SubmitRequest is the payload for submitting an incident report
type SubmitRequest struct {
	EntityID  string `json:"entity_id" binding:"required,entity_id"`
	Narrative string `json:"narrative" binding:"required,max=500"`
}
