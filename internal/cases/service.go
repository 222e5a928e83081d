package cases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/internal/risk"
	"github.com/chainwatchhq/chainwatch/pkg/events"
	"github.com/chainwatchhq/chainwatch/pkg/logger"
)

var (
	// ErrCaseNotFound is returned when a case does not exist
	ErrCaseNotFound = errors.New("case not found")
	// ErrInvalidTransition is returned for moves outside the state graph
	ErrInvalidTransition = errors.New("invalid case status transition")
	// ErrConcurrentModification is returned when the expected version is stale
	ErrConcurrentModification = errors.New("case was modified concurrently")
)

// Service owns case lifecycle: creation, status transitions, report and
// evidence linkage
type Service struct {
	repo      RepositoryInterface
	evidence  EvidenceLinker
	publisher *events.Publisher
}

// NewService creates a new case service
func NewService(repo RepositoryInterface, evidence EvidenceLinker, publisher *events.Publisher) *Service {
	return &Service{repo: repo, evidence: evidence, publisher: publisher}
}

// OpenOrUpdate attaches a scored report to the entity's open case, raising
// its priority if the new report is more severe. Without an open case a new
// one is created in status new.
func (s *Service) OpenOrUpdate(ctx context.Context, entityID string, riskReport *risk.RiskReport, reportID uuid.UUID) (*Case, error) {
	open, err := s.repo.GetOpenCaseByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	if open != nil {
		if err := s.repo.LinkReport(ctx, open.ID, reportID); err != nil {
			return nil, err
		}
		priority := MaxPriority(open.Priority, PriorityForRiskLevel(riskReport.RiskLevel))
		if err := s.repo.UpdateSeverity(ctx, open.ID, priority, riskReport.ID); err != nil {
			return nil, err
		}
		return s.repo.GetCaseByID(ctx, open.ID)
	}

	now := time.Now().UTC()
	c := &Case{
		ID:           uuid.New(),
		EntityID:     entityID,
		Status:       StatusNew,
		Priority:     PriorityForRiskLevel(riskReport.RiskLevel),
		RiskReportID: &riskReport.ID,
		Version:      1,
		CreatedAt:    now,
		LastUpdated:  now,
	}
	if err := s.repo.CreateCase(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.LinkReport(ctx, c.ID, reportID); err != nil {
		return nil, err
	}
	c.LinkedReports = []uuid.UUID{reportID}

	logger.WithContext(ctx).Info("Case opened",
		zap.String("case_id", c.ID.String()),
		zap.String("entity_id", entityID),
		zap.String("priority", string(c.Priority)),
	)
	s.publisher.Publish(events.SubjectCaseOpened, c)

	return c, nil
}

// Transition moves a case to the target status. The expected version guards
// against lost updates: a stale version fails with ErrConcurrentModification.
func (s *Service) Transition(ctx context.Context, caseID uuid.UUID, target CaseStatus, actorID uuid.UUID, expectedVersion int) (*Case, error) {
	c, err := s.repo.GetCaseByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if !ValidTransition(c.Status, target) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatusCAS(ctx, caseID, target, expectedVersion)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrConcurrentModification
	}

	logger.WithContext(ctx).Info("Case transitioned",
		zap.String("case_id", caseID.String()),
		zap.String("from", string(c.Status)),
		zap.String("to", string(target)),
		zap.String("actor_id", actorID.String()),
	)
	s.publisher.Publish(events.SubjectCaseTransitioned, map[string]interface{}{
		"case_id":  caseID,
		"from":     c.Status,
		"to":       target,
		"actor_id": actorID,
	})

	return s.repo.GetCaseByID(ctx, caseID)
}

// LinkEvidence attaches evidence to a case via the evidence gateway
func (s *Service) LinkEvidence(ctx context.Context, caseID, evidenceID uuid.UUID) error {
	if _, err := s.repo.GetCaseByID(ctx, caseID); err != nil {
		return err
	}
	return s.evidence.LinkToCase(ctx, evidenceID, caseID)
}

// AssignInvestigator assigns a case under the same version check as a
// transition. Assigning a new case moves it to under_investigation.
func (s *Service) AssignInvestigator(ctx context.Context, caseID, investigatorID uuid.UUID, expectedVersion int) (*Case, error) {
	if _, err := s.repo.GetCaseByID(ctx, caseID); err != nil {
		return nil, err
	}

	updated, err := s.repo.AssignInvestigatorCAS(ctx, caseID, investigatorID, expectedVersion)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrConcurrentModification
	}

	return s.repo.GetCaseByID(ctx, caseID)
}

// Get retrieves a case by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.repo.GetCaseByID(ctx, id)
}

// List returns cases matching all set filters with the total count
func (s *Service) List(ctx context.Context, filters ListFilters, limit, offset int) ([]*Case, int64, error) {
	return s.repo.ListCases(ctx, filters, limit, offset)
}
