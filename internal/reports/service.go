package reports

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/internal/risk"
	"github.com/chainwatchhq/chainwatch/pkg/logger"
)

var (
	// ErrEmptyNarrative is returned when a report carries no narrative
	ErrEmptyNarrative = errors.New("narrative must not be empty")
	// ErrNarrativeTooLong is returned when the narrative exceeds the limit
	ErrNarrativeTooLong = errors.New("narrative exceeds maximum length")
	// ErrReportNotFound is returned when an incident report does not exist
	ErrReportNotFound = errors.New("incident report not found")
)

// Service orchestrates the report lifecycle: validation, persistence, risk
// analysis and case escalation
type Service struct {
	repo     RepositoryInterface
	registry EntityRegistry
	analyzer risk.AnalyzerInterface
	risks    risk.RepositoryInterface
	cases    CaseOpener
}

// NewService creates a new report service
func NewService(repo RepositoryInterface, registry EntityRegistry, analyzer risk.AnalyzerInterface, risks risk.RepositoryInterface, caseOpener CaseOpener) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		analyzer: analyzer,
		risks:    risks,
		cases:    caseOpener,
	}
}

// Submit accepts a report, persists it, scores it against the risk model and
// opens a case when the score warrants one. The report survives analyzer
// outages: the row is committed before analysis, and an unavailable model
// leaves it flagged pending rather than fabricating a benign score.
func (s *Service) Submit(ctx context.Context, entityID, narrative string, reporterID *uuid.UUID) (*IncidentReport, error) {
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		return nil, ErrEmptyNarrative
	}
	if utf8.RuneCountInString(narrative) > MaxNarrativeLength {
		return nil, ErrNarrativeTooLong
	}

	// Registry upsert only after the submission is known to be acceptable
	normalized, err := s.registry.Ensure(ctx, entityID)
	if err != nil {
		return nil, err
	}

	report := &IncidentReport{
		ID:          uuid.New(),
		EntityID:    normalized,
		ReporterID:  reporterID,
		Narrative:   narrative,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateIncidentReport(ctx, report); err != nil {
		return nil, err
	}

	riskReport, err := s.analyzer.Analyze(ctx, normalized, narrative)
	if err != nil {
		if errors.Is(err, risk.ErrAnalysisUnavailable) {
			if markErr := s.repo.MarkAnalysisPending(ctx, report.ID); markErr != nil {
				return nil, markErr
			}
			report.AnalysisPending = true
			logger.WithContext(ctx).Warn("Report accepted without risk score",
				zap.String("report_id", report.ID.String()),
				zap.String("entity_id", normalized),
			)
			return report, nil
		}
		return nil, err
	}

	if err := s.risks.CreateRiskReport(ctx, riskReport); err != nil {
		return nil, err
	}
	if err := s.repo.AttachRiskReport(ctx, report.ID, riskReport.ID); err != nil {
		return nil, err
	}
	report.RiskReportID = &riskReport.ID
	report.RiskReport = riskReport

	if riskReport.RiskLevel == risk.RiskLevelHigh || riskReport.RiskLevel == risk.RiskLevelCritical {
		if _, err := s.cases.OpenOrUpdate(ctx, normalized, riskReport, report.ID); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// Get retrieves a report with its risk report attached when one exists
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*IncidentReport, error) {
	report, err := s.repo.GetIncidentReportByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.RiskReportID != nil {
		riskReport, err := s.risks.GetRiskReportByID(ctx, *report.RiskReportID)
		if err != nil && !errors.Is(err, risk.ErrRiskReportNotFound) {
			return nil, err
		}
		report.RiskReport = riskReport
	}

	return report, nil
}

// ListRecent returns reports newest first with the total count
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]*IncidentReport, int64, error) {
	return s.repo.ListRecent(ctx, limit, offset)
}
