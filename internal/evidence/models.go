package evidence

import (
	"time"

	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/risk"
)

// VerificationStatus tracks integrity verification of an uploaded file
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
)

// Evidence is the metadata record for an externally stored file. The bytes
// and hashing live in the storage service; this service owns custody state.
type Evidence struct {
	ID                 uuid.UUID          `json:"id"`
	FileHash           string             `json:"file_hash"`
	OriginalFilename   string             `json:"original_filename"`
	FileSize           int64              `json:"file_size"`
	StorageURI         string             `json:"storage_uri"`
	EntityID           string             `json:"entity_id"`
	CaseID             *uuid.UUID         `json:"case_id,omitempty"`
	UploadedBy         uuid.UUID          `json:"uploaded_by"`
	UploadedAt         time.Time          `json:"uploaded_at"`
	Tags               []string           `json:"tags"`
	RiskLevel          risk.RiskLevel     `json:"risk_level,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	ReadOnly           bool               `json:"read_only"`
}

// RecordUploadRequest is the payload for registering an uploaded file
type RecordUploadRequest struct {
	FileHash         string   `json:"file_hash" binding:"required"`
	OriginalFilename string   `json:"original_filename" binding:"required"`
	FileSize         int64    `json:"file_size" binding:"required,gt=0"`
	StorageURI       string   `json:"storage_uri" binding:"required"`
	EntityID         string   `json:"entity_id" binding:"required,entity_id"`
	CaseID           *string  `json:"case_id,omitempty"`
	Tags             []string `json:"tags"`
	RiskLevel        string   `json:"risk_level,omitempty" binding:"omitempty,risk_level"`
}

// VerifyIntegrityRequest carries the hash recomputed by the storage service
type VerifyIntegrityRequest struct {
	RecomputedHash string `json:"recomputed_hash" binding:"required"`
}

// UpdateTagsRequest replaces the tag set on unlocked evidence
type UpdateTagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}
