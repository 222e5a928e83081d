package evidence

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles evidence persistence
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new evidence repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateEvidence inserts a new evidence record
func (r *Repository) CreateEvidence(ctx context.Context, e *Evidence) error {
	tagsJSON, err := json.Marshal(e.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO evidence (
			id, file_hash, original_filename, file_size, storage_uri, entity_id,
			case_id, uploaded_by, uploaded_at, tags, risk_level, verification_status, read_only
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.Exec(ctx, query,
		e.ID,
		e.FileHash,
		e.OriginalFilename,
		e.FileSize,
		e.StorageURI,
		e.EntityID,
		e.CaseID,
		e.UploadedBy,
		e.UploadedAt,
		tagsJSON,
		e.RiskLevel,
		e.VerificationStatus,
		e.ReadOnly,
	)

	return err
}

// GetEvidenceByID retrieves evidence by ID
func (r *Repository) GetEvidenceByID(ctx context.Context, id uuid.UUID) (*Evidence, error) {
	query := `
		SELECT id, file_hash, original_filename, file_size, storage_uri, entity_id,
		       case_id, uploaded_by, uploaded_at, tags, risk_level, verification_status, read_only
		FROM evidence
		WHERE id = $1
	`

	e, err := scanEvidence(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEvidenceNotFound
		}
		return nil, err
	}
	return e, nil
}

// UpdateVerificationStatus records the outcome of an integrity check
func (r *Repository) UpdateVerificationStatus(ctx context.Context, id uuid.UUID, status VerificationStatus) error {
	query := `UPDATE evidence SET verification_status = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvidenceNotFound
	}
	return nil
}

// LinkEvidenceToCase attaches evidence to a case and locks it
func (r *Repository) LinkEvidenceToCase(ctx context.Context, evidenceID, caseID uuid.UUID) error {
	query := `UPDATE evidence SET case_id = $2, read_only = TRUE WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, evidenceID, caseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvidenceNotFound
	}
	return nil
}

// ListEvidenceByCase lists evidence linked to a case, newest first
func (r *Repository) ListEvidenceByCase(ctx context.Context, caseID uuid.UUID) ([]*Evidence, error) {
	query := `
		SELECT id, file_hash, original_filename, file_size, storage_uri, entity_id,
		       case_id, uploaded_by, uploaded_at, tags, risk_level, verification_status, read_only
		FROM evidence
		WHERE case_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*Evidence, 0)
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}

	return items, rows.Err()
}

// UpdateTags replaces the tag set on an evidence record
func (r *Repository) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	query := `UPDATE evidence SET tags = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, tagsJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvidenceNotFound
	}
	return nil
}

// DeleteEvidence removes an evidence record
func (r *Repository) DeleteEvidence(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM evidence WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvidenceNotFound
	}
	return nil
}

// CaseExists reports whether a case row exists
func (r *Repository) CaseExists(ctx context.Context, caseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM cases WHERE id = $1)`, caseID).Scan(&exists)
	return exists, err
}

func scanEvidence(row pgx.Row) (*Evidence, error) {
	var e Evidence
	var tagsJSON []byte

	err := row.Scan(
		&e.ID,
		&e.FileHash,
		&e.OriginalFilename,
		&e.FileSize,
		&e.StorageURI,
		&e.EntityID,
		&e.CaseID,
		&e.UploadedBy,
		&e.UploadedAt,
		&tagsJSON,
		&e.RiskLevel,
		&e.VerificationStatus,
		&e.ReadOnly,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsJSON, &e.Tags); err != nil {
		e.Tags = []string{}
	}

	return &e, nil
}
