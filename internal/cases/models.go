package cases

import (
	"time"

	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/risk"
)

// CaseStatus is the lifecycle state of an investigation case
type CaseStatus string

const (
	StatusNew                CaseStatus = "new"
	StatusUnderInvestigation CaseStatus = "under_investigation"
	StatusEscalated          CaseStatus = "escalated"
	StatusResolved           CaseStatus = "resolved"
	StatusClosed             CaseStatus = "closed"
)

// CasePriority orders cases for investigator attention
type CasePriority string

const (
	PriorityLow      CasePriority = "low"
	PriorityMedium   CasePriority = "medium"
	PriorityHigh     CasePriority = "high"
	PriorityCritical CasePriority = "critical"
)

// validTransitions is the case state graph. Closed is terminal.
var validTransitions = map[CaseStatus][]CaseStatus{
	StatusNew:                {StatusUnderInvestigation},
	StatusUnderInvestigation: {StatusEscalated, StatusResolved},
	StatusEscalated:          {StatusResolved},
	StatusResolved:           {StatusClosed},
	StatusClosed:             {},
}

// ValidTransition reports whether moving from one status to another is allowed
func ValidTransition(from, to CaseStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// PriorityForRiskLevel derives a case priority from a risk level
func PriorityForRiskLevel(level risk.RiskLevel) CasePriority {
	switch level {
	case risk.RiskLevelCritical:
		return PriorityCritical
	case risk.RiskLevelHigh:
		return PriorityHigh
	case risk.RiskLevelMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// rank orders priorities for comparison
func (p CasePriority) rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

// MaxPriority returns the higher of two priorities
func MaxPriority(a, b CasePriority) CasePriority {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Case is an investigation case for an entity. Version guards concurrent
// mutation: every write bumps it, and transitions require the expected value.
type Case struct {
	ID             uuid.UUID    `json:"id"`
	EntityID       string       `json:"entity_id"`
	Status         CaseStatus   `json:"status"`
	Priority       CasePriority `json:"priority"`
	InvestigatorID *uuid.UUID   `json:"investigator_id,omitempty"`
	RiskReportID   *uuid.UUID   `json:"risk_report_id,omitempty"`
	LinkedReports  []uuid.UUID  `json:"linked_reports"`
	Version        int          `json:"version"`
	CreatedAt      time.Time    `json:"created_at"`
	LastUpdated    time.Time    `json:"last_updated"`
}

// ListFilters narrows case listing. All set filters are combined with AND.
type ListFilters struct {
	Status         *CaseStatus
	Priority       *CasePriority
	InvestigatorID *uuid.UUID
	RiskLevel      *risk.RiskLevel
}

// TransitionRequest is the payload for a case status transition
type TransitionRequest struct {
	Target          string `json:"target" binding:"required,case_status"`
	ExpectedVersion int    `json:"expected_version" binding:"required,gt=0"`
}

// AssignRequest is the payload for assigning an investigator
type AssignRequest struct {
	InvestigatorID  string `json:"investigator_id" binding:"required,uuid"`
	ExpectedVersion int    `json:"expected_version" binding:"required,gt=0"`
}

// LinkEvidenceRequest attaches evidence to a case
type LinkEvidenceRequest struct {
	EvidenceID string `json:"evidence_id" binding:"required,uuid"`
}
