package evidence

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for evidence repository operations
type RepositoryInterface interface {
	CreateEvidence(ctx context.Context, e *Evidence) error
	GetEvidenceByID(ctx context.Context, id uuid.UUID) (*Evidence, error)
	UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status VerificationStatus) error
	LinkEvidenceToCase(ctx context.Context, evidenceID, caseID uuid.UUID) error
	ListEvidenceByCase(ctx context.Context, caseID uuid.UUID) ([]*Evidence, error)
	UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error
	DeleteEvidence(ctx context.Context, id uuid.UUID) error
	CaseExists(ctx context.Context, caseID uuid.UUID) (bool, error)
}

// EntityRegistry normalizes and records entity identifiers
type EntityRegistry interface {
	Ensure(ctx context.Context, raw string) (string, error)
}
