package escalation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRecordNotFound is returned when an escalation record does not exist
var ErrRecordNotFound = errors.New("escalation record not found")

// Repository handles escalation persistence
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new escalation repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateEscalationRecord appends an audit record
func (r *Repository) CreateEscalationRecord(ctx context.Context, rec *EscalationRecord) error {
	recipientsJSON, err := json.Marshal(rec.ExternalRecipients)
	if err != nil {
		return err
	}
	evidenceJSON, err := json.Marshal(rec.EvidenceIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO escalation_records (
			id, case_id, entity_id, action, reason, actor_id,
			external_recipients, evidence_ids, delivery_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Exec(ctx, query,
		rec.ID,
		rec.CaseID,
		rec.EntityID,
		rec.Action,
		rec.Reason,
		rec.ActorID,
		recipientsJSON,
		evidenceJSON,
		rec.DeliveryStatus,
		rec.CreatedAt,
	)

	return err
}

// UpdateDeliveryStatus records the outcome of a notification dispatch
func (r *Repository) UpdateDeliveryStatus(ctx context.Context, id uuid.UUID, status DeliveryStatus) error {
	query := `UPDATE escalation_records SET delivery_status = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListByCase lists a case's audit trail, oldest first
func (r *Repository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*EscalationRecord, error) {
	query := `
		SELECT id, case_id, entity_id, action, reason, actor_id,
		       external_recipients, evidence_ids, delivery_status, created_at
		FROM escalation_records
		WHERE case_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*EscalationRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}

	return items, rows.Err()
}

// SetFrozen flips the freeze flag only when it currently holds the opposite
// value. The flag row is created on first use.
func (r *Repository) SetFrozen(ctx context.Context, entityID string, frozen bool) (bool, error) {
	ensure := `
		INSERT INTO entity_flags (entity_id, frozen)
		VALUES ($1, FALSE)
		ON CONFLICT (entity_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, ensure, entityID); err != nil {
		return false, err
	}

	flip := `
		UPDATE entity_flags
		SET frozen = $2, updated_at = $3
		WHERE entity_id = $1 AND frozen = $4
	`
	tag, err := r.db.Exec(ctx, flip, entityID, frozen, time.Now().UTC(), !frozen)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// IsFrozen reports the stored freeze flag. Entities without a flag row are
// not frozen.
func (r *Repository) IsFrozen(ctx context.Context, entityID string) (bool, error) {
	var frozen bool
	query := `SELECT frozen FROM entity_flags WHERE entity_id = $1`
	err := r.db.QueryRow(ctx, query, entityID).Scan(&frozen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return frozen, nil
}

func scanRecord(row pgx.Row) (*EscalationRecord, error) {
	var rec EscalationRecord
	var recipientsJSON, evidenceJSON []byte

	err := row.Scan(
		&rec.ID,
		&rec.CaseID,
		&rec.EntityID,
		&rec.Action,
		&rec.Reason,
		&rec.ActorID,
		&recipientsJSON,
		&evidenceJSON,
		&rec.DeliveryStatus,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(recipientsJSON, &rec.ExternalRecipients); err != nil {
		rec.ExternalRecipients = []string{}
	}
	if err := json.Unmarshal(evidenceJSON, &rec.EvidenceIDs); err != nil {
		rec.EvidenceIDs = []uuid.UUID{}
	}

	return &rec, nil
}
