package escalation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/internal/entity"
	"github.com/chainwatchhq/chainwatch/pkg/events"
	"github.com/chainwatchhq/chainwatch/pkg/logger"
)

var (
	// ErrAlreadyFrozen is returned when freezing a frozen entity
	ErrAlreadyFrozen = errors.New("entity is already frozen")
	// ErrNotFrozen is returned when unfreezing an entity that is not frozen
	ErrNotFrozen = errors.New("entity is not frozen")
	// ErrEmptyReason is returned when a freeze carries no reason
	ErrEmptyReason = errors.New("reason must not be empty")
	// ErrEmptyDescription is returned when a notification carries no description
	ErrEmptyDescription = errors.New("description must not be empty")
)

// Service coordinates enforcement actions: entity freezes and authority
// notifications, each backed by an append-only audit record
type Service struct {
	repo      RepositoryInterface
	registry  EntityRegistry
	cases     CaseDirectory
	notifier  Notifier
	cache     FreezeCache
	publisher *events.Publisher
}

// NewService creates a new escalation service
func NewService(repo RepositoryInterface, registry EntityRegistry, caseDir CaseDirectory, notifier Notifier, cache FreezeCache, publisher *events.Publisher) *Service {
	return &Service{
		repo:      repo,
		registry:  registry,
		cases:     caseDir,
		notifier:  notifier,
		cache:     cache,
		publisher: publisher,
	}
}

// Freeze flips the entity's freeze flag on. The flip is a compare-and-set:
// two concurrent freezes cannot both succeed.
func (s *Service) Freeze(ctx context.Context, entityID, reason string, actorID uuid.UUID) (*EscalationRecord, error) {
	normalized, err := s.registry.Ensure(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}

	flipped, err := s.repo.SetFrozen(ctx, normalized, true)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, ErrAlreadyFrozen
	}
	s.cache.Invalidate(ctx, normalized)

	rec := &EscalationRecord{
		ID:                 uuid.New(),
		EntityID:           normalized,
		Action:             ActionFreeze,
		Reason:             strings.TrimSpace(reason),
		ActorID:            actorID,
		ExternalRecipients: []string{},
		EvidenceIDs:        []uuid.UUID{},
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.repo.CreateEscalationRecord(ctx, rec); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Entity frozen",
		zap.String("entity_id", normalized),
		zap.String("actor_id", actorID.String()),
	)
	s.publisher.Publish(events.SubjectEntityFrozen, rec)

	return rec, nil
}

// Unfreeze flips the entity's freeze flag off, symmetrically to Freeze
func (s *Service) Unfreeze(ctx context.Context, entityID, reason string, actorID uuid.UUID) (*EscalationRecord, error) {
	normalized, err := s.registry.Ensure(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}

	flipped, err := s.repo.SetFrozen(ctx, normalized, false)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, ErrNotFrozen
	}
	s.cache.Invalidate(ctx, normalized)

	rec := &EscalationRecord{
		ID:                 uuid.New(),
		EntityID:           normalized,
		Action:             ActionUnfreeze,
		Reason:             strings.TrimSpace(reason),
		ActorID:            actorID,
		ExternalRecipients: []string{},
		EvidenceIDs:        []uuid.UUID{},
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.repo.CreateEscalationRecord(ctx, rec); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Entity unfrozen",
		zap.String("entity_id", normalized),
		zap.String("actor_id", actorID.String()),
	)
	s.publisher.Publish(events.SubjectEntityUnfrozen, rec)

	return rec, nil
}

// IsFrozen reports the entity's freeze state via a cache read-through.
// The identifier is canonicalized first: flags are keyed on normalized ids,
// so an equivalent spelling must resolve to the same flag.
func (s *Service) IsFrozen(ctx context.Context, entityID string) (bool, error) {
	normalized, err := entity.Normalize(entityID)
	if err != nil {
		return false, err
	}

	if frozen, found := s.cache.GetFrozen(ctx, normalized); found {
		return frozen, nil
	}

	frozen, err := s.repo.IsFrozen(ctx, normalized)
	if err != nil {
		return false, err
	}
	s.cache.SetFrozen(ctx, normalized, frozen)

	return frozen, nil
}

// NotifyAuthority records an authority notification and dispatches it. The
// audit row commits with status pending before any network call, so it is
// never lost; delivery updates it to delivered or failed afterwards.
func (s *Service) NotifyAuthority(ctx context.Context, caseID uuid.UUID, stationID, description string, evidenceIDs []uuid.UUID, actorID uuid.UUID) (*EscalationRecord, error) {
	caseRecord, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	if evidenceIDs == nil {
		evidenceIDs = []uuid.UUID{}
	}

	rec := &EscalationRecord{
		ID:                 uuid.New(),
		CaseID:             &caseID,
		EntityID:           caseRecord.EntityID,
		Action:             ActionNotifyAuthority,
		Reason:             strings.TrimSpace(description),
		ActorID:            actorID,
		ExternalRecipients: []string{stationID},
		EvidenceIDs:        evidenceIDs,
		DeliveryStatus:     DeliveryPending,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.repo.CreateEscalationRecord(ctx, rec); err != nil {
		return nil, err
	}

	go s.dispatch(context.WithoutCancel(ctx), rec)

	return rec, nil
}

// History lists the append-only audit trail for a case
func (s *Service) History(ctx context.Context, caseID uuid.UUID) ([]*EscalationRecord, error) {
	return s.repo.ListByCase(ctx, caseID)
}

func (s *Service) dispatch(ctx context.Context, rec *EscalationRecord) {
	notification := &AuthorityNotification{
		RecordID:    rec.ID,
		CaseID:      *rec.CaseID,
		EntityID:    rec.EntityID,
		StationID:   rec.ExternalRecipients[0],
		Description: rec.Reason,
		EvidenceIDs: rec.EvidenceIDs,
	}

	status := DeliveryDelivered
	if err := s.notifier.Dispatch(ctx, notification); err != nil {
		status = DeliveryFailed
		logger.WithContext(ctx).Error("Authority notification delivery failed",
			zap.String("record_id", rec.ID.String()),
			zap.String("station_id", notification.StationID),
			zap.Error(err),
		)
	}

	if err := s.repo.UpdateDeliveryStatus(ctx, rec.ID, status); err != nil {
		logger.WithContext(ctx).Error("Failed to update delivery status",
			zap.String("record_id", rec.ID.String()),
			zap.Error(err),
		)
		return
	}

	s.publisher.Publish(events.SubjectAuthorityNotified, map[string]interface{}{
		"record_id":       rec.ID,
		"case_id":         rec.CaseID,
		"station_id":      notification.StationID,
		"delivery_status": status,
	})
}
