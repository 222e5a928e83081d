package cases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chainwatchhq/chainwatch/internal/risk"
)

type mockCaseRepository struct {
	mock.Mock
}

func (m *mockCaseRepository) CreateCase(ctx context.Context, c *Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCaseRepository) GetCaseByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*Case)
	return c, args.Error(1)
}

func (m *mockCaseRepository) GetOpenCaseByEntity(ctx context.Context, entityID string) (*Case, error) {
	args := m.Called(ctx, entityID)
	c, _ := args.Get(0).(*Case)
	return c, args.Error(1)
}

func (m *mockCaseRepository) LinkReport(ctx context.Context, caseID, reportID uuid.UUID) error {
	args := m.Called(ctx, caseID, reportID)
	return args.Error(0)
}

func (m *mockCaseRepository) UpdateSeverity(ctx context.Context, caseID uuid.UUID, priority CasePriority, riskReportID uuid.UUID) error {
	args := m.Called(ctx, caseID, priority, riskReportID)
	return args.Error(0)
}

func (m *mockCaseRepository) UpdateStatusCAS(ctx context.Context, caseID uuid.UUID, status CaseStatus, expectedVersion int) (bool, error) {
	args := m.Called(ctx, caseID, status, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockCaseRepository) AssignInvestigatorCAS(ctx context.Context, caseID, investigatorID uuid.UUID, expectedVersion int) (bool, error) {
	args := m.Called(ctx, caseID, investigatorID, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockCaseRepository) ListCases(ctx context.Context, filters ListFilters, limit, offset int) ([]*Case, int64, error) {
	args := m.Called(ctx, filters, limit, offset)
	items, _ := args.Get(0).([]*Case)
	return items, args.Get(1).(int64), args.Error(2)
}

type mockEvidenceLinker struct {
	mock.Mock
}

func (m *mockEvidenceLinker) LinkToCase(ctx context.Context, evidenceID, caseID uuid.UUID) error {
	args := m.Called(ctx, evidenceID, caseID)
	return args.Error(0)
}

func criticalReport(entityID string) *risk.RiskReport {
	return &risk.RiskReport{
		ID:               uuid.New(),
		EntityID:         entityID,
		RiskLevel:        risk.RiskLevelCritical,
		FraudProbability: 0.85,
		IsSuspicious:     true,
		ComputedAt:       time.Now().UTC(),
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from CaseStatus
		to   CaseStatus
		want bool
	}{
		{StatusNew, StatusUnderInvestigation, true},
		{StatusUnderInvestigation, StatusEscalated, true},
		{StatusUnderInvestigation, StatusResolved, true},
		{StatusEscalated, StatusResolved, true},
		{StatusResolved, StatusClosed, true},
		{StatusNew, StatusEscalated, false},
		{StatusNew, StatusClosed, false},
		{StatusEscalated, StatusUnderInvestigation, false},
		{StatusClosed, StatusNew, false},
		{StatusClosed, StatusUnderInvestigation, false},
		{StatusClosed, StatusResolved, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidTransition(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOpenOrUpdateCreatesCaseForCriticalReport(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	entityID := "0xabcdef1234567890abcdef1234567890abcdef12"
	report := criticalReport(entityID)
	reportID := uuid.New()

	repo.On("GetOpenCaseByEntity", ctx, entityID).Return(nil, nil).Once()
	repo.On("CreateCase", ctx, mock.MatchedBy(func(c *Case) bool {
		return c.EntityID == entityID &&
			c.Status == StatusNew &&
			c.Priority == PriorityCritical &&
			c.Version == 1 &&
			c.RiskReportID != nil && *c.RiskReportID == report.ID
	})).Return(nil).Once()
	repo.On("LinkReport", ctx, mock.Anything, reportID).Return(nil).Once()

	c, err := service.OpenOrUpdate(ctx, entityID, report, reportID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, c.Status)
	assert.Equal(t, PriorityCritical, c.Priority)
	assert.Equal(t, []uuid.UUID{reportID}, c.LinkedReports)
	repo.AssertExpectations(t)
}

func TestOpenOrUpdateReusesOpenCaseAndRaisesPriority(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	entityID := "exchange-7:acct_991"
	report := criticalReport(entityID)
	reportID := uuid.New()
	existing := &Case{
		ID:       uuid.New(),
		EntityID: entityID,
		Status:   StatusUnderInvestigation,
		Priority: PriorityMedium,
		Version:  3,
	}

	repo.On("GetOpenCaseByEntity", ctx, entityID).Return(existing, nil).Once()
	repo.On("LinkReport", ctx, existing.ID, reportID).Return(nil).Once()
	repo.On("UpdateSeverity", ctx, existing.ID, PriorityCritical, report.ID).Return(nil).Once()
	repo.On("GetCaseByID", ctx, existing.ID).Return(&Case{
		ID:       existing.ID,
		EntityID: entityID,
		Status:   StatusUnderInvestigation,
		Priority: PriorityCritical,
		Version:  4,
	}, nil).Once()

	c, err := service.OpenOrUpdate(ctx, entityID, report, reportID)
	require.NoError(t, err)
	assert.Equal(t, PriorityCritical, c.Priority)
	repo.AssertNotCalled(t, "CreateCase", mock.Anything, mock.Anything)
}

func TestOpenOrUpdateNeverLowersPriority(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	entityID := "exchange-7:acct_991"
	report := &risk.RiskReport{
		ID:               uuid.New(),
		EntityID:         entityID,
		RiskLevel:        risk.RiskLevelLow,
		FraudProbability: 0.1,
	}
	reportID := uuid.New()
	existing := &Case{
		ID:       uuid.New(),
		EntityID: entityID,
		Status:   StatusEscalated,
		Priority: PriorityCritical,
		Version:  5,
	}

	repo.On("GetOpenCaseByEntity", ctx, entityID).Return(existing, nil).Once()
	repo.On("LinkReport", ctx, existing.ID, reportID).Return(nil).Once()
	repo.On("UpdateSeverity", ctx, existing.ID, PriorityCritical, report.ID).Return(nil).Once()
	repo.On("GetCaseByID", ctx, existing.ID).Return(existing, nil).Once()

	_, err := service.OpenOrUpdate(ctx, entityID, report, reportID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTransitionValid(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	caseID := uuid.New()
	actorID := uuid.New()

	repo.On("GetCaseByID", ctx, caseID).Return(&Case{
		ID:      caseID,
		Status:  StatusNew,
		Version: 1,
	}, nil).Once()
	repo.On("UpdateStatusCAS", ctx, caseID, StatusUnderInvestigation, 1).Return(true, nil).Once()
	repo.On("GetCaseByID", ctx, caseID).Return(&Case{
		ID:      caseID,
		Status:  StatusUnderInvestigation,
		Version: 2,
	}, nil).Once()

	c, err := service.Transition(ctx, caseID, StatusUnderInvestigation, actorID, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusUnderInvestigation, c.Status)
	assert.Equal(t, 2, c.Version)
}

func TestTransitionFromClosedAlwaysFails(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	caseID := uuid.New()

	for _, target := range []CaseStatus{StatusNew, StatusUnderInvestigation, StatusEscalated, StatusResolved} {
		repo.On("GetCaseByID", ctx, caseID).Return(&Case{
			ID:      caseID,
			Status:  StatusClosed,
			Version: 7,
		}, nil).Once()

		_, err := service.Transition(ctx, caseID, target, uuid.New(), 7)
		assert.ErrorIs(t, err, ErrInvalidTransition, "closed -> %s", target)
	}
	repo.AssertNotCalled(t, "UpdateStatusCAS", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	caseID := uuid.New()

	repo.On("GetCaseByID", ctx, caseID).Return(&Case{
		ID:      caseID,
		Status:  StatusUnderInvestigation,
		Version: 4,
	}, nil).Once()
	repo.On("UpdateStatusCAS", ctx, caseID, StatusResolved, 3).Return(false, nil).Once()

	_, err := service.Transition(ctx, caseID, StatusResolved, uuid.New(), 3)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestTransitionUnknownCase(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	caseID := uuid.New()

	repo.On("GetCaseByID", ctx, caseID).Return(nil, ErrCaseNotFound).Once()

	_, err := service.Transition(ctx, caseID, StatusUnderInvestigation, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestLinkEvidenceDelegatesAfterExistenceCheck(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	linker := new(mockEvidenceLinker)
	service := NewService(repo, linker, nil)
	caseID := uuid.New()
	evidenceID := uuid.New()

	repo.On("GetCaseByID", ctx, caseID).Return(&Case{ID: caseID, Status: StatusNew}, nil).Once()
	linker.On("LinkToCase", ctx, evidenceID, caseID).Return(nil).Once()

	require.NoError(t, service.LinkEvidence(ctx, caseID, evidenceID))
	linker.AssertExpectations(t)
}

func TestLinkEvidenceUnknownCase(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	linker := new(mockEvidenceLinker)
	service := NewService(repo, linker, nil)
	caseID := uuid.New()

	repo.On("GetCaseByID", ctx, caseID).Return(nil, ErrCaseNotFound).Once()

	err := service.LinkEvidence(ctx, caseID, uuid.New())
	assert.ErrorIs(t, err, ErrCaseNotFound)
	linker.AssertNotCalled(t, "LinkToCase", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignInvestigatorStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCaseRepository)
	service := NewService(repo, new(mockEvidenceLinker), nil)
	caseID := uuid.New()
	investigatorID := uuid.New()

	repo.On("GetCaseByID", ctx, caseID).Return(&Case{ID: caseID, Status: StatusNew, Version: 2}, nil).Once()
	repo.On("AssignInvestigatorCAS", ctx, caseID, investigatorID, 1).Return(false, nil).Once()

	_, err := service.AssignInvestigator(ctx, caseID, investigatorID, 1)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestMaxPriority(t *testing.T) {
	assert.Equal(t, PriorityCritical, MaxPriority(PriorityMedium, PriorityCritical))
	assert.Equal(t, PriorityCritical, MaxPriority(PriorityCritical, PriorityLow))
	assert.Equal(t, PriorityHigh, MaxPriority(PriorityHigh, PriorityHigh))
}
