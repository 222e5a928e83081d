package escalation

import (
	"context"

	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/cases"
)

// RepositoryInterface defines the interface for escalation repository operations
type RepositoryInterface interface {
	CreateEscalationRecord(ctx context.Context, rec *EscalationRecord) error
	UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status DeliveryStatus) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]*EscalationRecord, error)
	// SetFrozen flips the freeze flag only when it currently holds the
	// opposite value; reports whether the flip happened.
	SetFrozen(ctx context.Context, entityID string, frozen bool) (bool, error)
	IsFrozen(ctx context.Context, entityID string) (bool, error)
}

// EntityRegistry normalizes and records entity identifiers
type EntityRegistry interface {
	Ensure(ctx context.Context, raw string) (string, error)
}

// CaseDirectory is the case manager surface the coordinator needs
type CaseDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*cases.Case, error)
}

// Notifier delivers an authority notification over the external channel
type Notifier interface {
	Dispatch(ctx context.Context, n *AuthorityNotification) error
}

// FreezeCache caches freeze flags for read-through lookups
type FreezeCache interface {
	GetFrozen(ctx context.Context, entityID string) (frozen, found bool)
	SetFrozen(ctx context.Context, entityID string, frozen bool)
	Invalidate(ctx context.Context, entityID string)
}

// AuthorityNotification is the payload dispatched to the external channel
type AuthorityNotification struct {
	RecordID    uuid.UUID   `json:"record_id"`
	CaseID      uuid.UUID   `json:"case_id"`
	EntityID    string      `json:"entity_id"`
	StationID   string      `json:"station_id"`
	Description string      `json:"description"`
	EvidenceIDs []uuid.UUID `json:"evidence_ids"`
}
