package evidence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/internal/risk"
	"github.com/chainwatchhq/chainwatch/pkg/logger"
)

var (
	// ErrEvidenceNotFound is returned when evidence does not exist
	ErrEvidenceNotFound = errors.New("evidence not found")
	// ErrEvidenceLocked is returned when mutating evidence linked to a case
	ErrEvidenceLocked = errors.New("evidence is locked to a case")
	// ErrMissingFileHash is returned when an upload carries no hash
	ErrMissingFileHash = errors.New("file hash is required")
	// ErrFileTooLarge is returned when an upload exceeds the size limit
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrCaseNotFound is returned when an upload references an unknown case
	ErrCaseNotFound = errors.New("case not found")
)

// Service owns evidence custody: upload records, integrity verification and
// case linkage
type Service struct {
	repo        RepositoryInterface
	registry    EntityRegistry
	maxFileSize int64
}

// NewService creates a new evidence service. maxFileSizeMB bounds accepted
// uploads.
func NewService(repo RepositoryInterface, registry EntityRegistry, maxFileSizeMB int) *Service {
	return &Service{
		repo:        repo,
		registry:    registry,
		maxFileSize: int64(maxFileSizeMB) * 1024 * 1024,
	}
}

// RecordUpload registers metadata for a file already stored externally.
// Verification starts pending until the storage service confirms the hash.
func (s *Service) RecordUpload(ctx context.Context, req *RecordUploadRequest, uploadedBy uuid.UUID) (*Evidence, error) {
	if strings.TrimSpace(req.FileHash) == "" {
		return nil, ErrMissingFileHash
	}
	if req.FileSize > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	entityID, err := s.registry.Ensure(ctx, req.EntityID)
	if err != nil {
		return nil, err
	}

	var caseID *uuid.UUID
	if req.CaseID != nil {
		parsed, err := uuid.Parse(*req.CaseID)
		if err != nil {
			return nil, errors.New("invalid case id")
		}
		exists, err := s.repo.CaseExists(ctx, parsed)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCaseNotFound
		}
		caseID = &parsed
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	level := risk.RiskLevel(req.RiskLevel)
	if level == "" {
		level = risk.RiskLevelLow
	}

	e := &Evidence{
		ID:                 uuid.New(),
		FileHash:           strings.TrimSpace(req.FileHash),
		OriginalFilename:   req.OriginalFilename,
		FileSize:           req.FileSize,
		StorageURI:         req.StorageURI,
		EntityID:           entityID,
		CaseID:             caseID,
		UploadedBy:         uploadedBy,
		UploadedAt:         time.Now().UTC(),
		Tags:               tags,
		RiskLevel:          level,
		VerificationStatus: VerificationPending,
		ReadOnly:           caseID != nil,
	}

	if err := s.repo.CreateEvidence(ctx, e); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Evidence recorded",
		zap.String("evidence_id", e.ID.String()),
		zap.String("entity_id", e.EntityID),
		zap.Int64("file_size", e.FileSize),
	)

	return e, nil
}

// VerifyIntegrity compares the stored hash against one recomputed by the
// storage service and records the outcome. Verification is part of the
// custody chain, so it is allowed even on locked evidence.
func (s *Service) VerifyIntegrity(ctx context.Context, id uuid.UUID, recomputedHash string) (bool, error) {
	e, err := s.repo.GetEvidenceByID(ctx, id)
	if err != nil {
		return false, err
	}

	verified := strings.EqualFold(e.FileHash, strings.TrimSpace(recomputedHash))

	status := VerificationFailed
	if verified {
		status = VerificationVerified
	}
	if err := s.repo.UpdateVerificationStatus(ctx, id, status); err != nil {
		return false, err
	}

	if !verified {
		logger.WithContext(ctx).Warn("Evidence integrity check failed",
			zap.String("evidence_id", id.String()),
			zap.String("entity_id", e.EntityID),
		)
	}

	return verified, nil
}

// LinkToCase attaches evidence to a case and locks it. Idempotent: relinking
// to the same case is a no-op, relinking to a different case fails.
func (s *Service) LinkToCase(ctx context.Context, evidenceID, caseID uuid.UUID) error {
	e, err := s.repo.GetEvidenceByID(ctx, evidenceID)
	if err != nil {
		return err
	}

	if e.CaseID != nil {
		if *e.CaseID == caseID {
			return nil
		}
		return ErrEvidenceLocked
	}

	return s.repo.LinkEvidenceToCase(ctx, evidenceID, caseID)
}

// Get retrieves evidence by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Evidence, error) {
	return s.repo.GetEvidenceByID(ctx, id)
}

// ListByCase lists all evidence linked to a case
func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*Evidence, error) {
	return s.repo.ListEvidenceByCase(ctx, caseID)
}

// UpdateTags replaces the tag set. Locked evidence cannot be modified.
func (s *Service) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) error {
	e, err := s.repo.GetEvidenceByID(ctx, id)
	if err != nil {
		return err
	}
	if e.ReadOnly {
		return ErrEvidenceLocked
	}
	return s.repo.UpdateTags(ctx, id, tags)
}

// Delete removes an evidence record. Locked evidence cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.repo.GetEvidenceByID(ctx, id)
	if err != nil {
		return err
	}
	if e.ReadOnly {
		return ErrEvidenceLocked
	}
	return s.repo.DeleteEvidence(ctx, id)
}
