package escalation

import (
	"time"

	"github.com/google/uuid"
)

// EscalationAction is the kind of enforcement action taken
type EscalationAction string

const (
	ActionFreeze          EscalationAction = "freeze"
	ActionUnfreeze        EscalationAction = "unfreeze"
	ActionNotifyAuthority EscalationAction = "notify_authority"
)

// DeliveryStatus tracks outbound notification delivery. Freeze actions carry
// no delivery, so the field stays empty for them.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// EscalationRecord is an append-only audit entry for an enforcement action.
// Records are never updated except for delivery status.
type EscalationRecord struct {
	ID                 uuid.UUID        `json:"id"`
	CaseID             *uuid.UUID       `json:"case_id,omitempty"`
	EntityID           string           `json:"entity_id"`
	Action             EscalationAction `json:"action"`
	Reason             string           `json:"reason"`
	ActorID            uuid.UUID        `json:"actor_id"`
	ExternalRecipients []string         `json:"external_recipients"`
	EvidenceIDs        []uuid.UUID      `json:"evidence_ids"`
	DeliveryStatus     DeliveryStatus   `json:"delivery_status,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// FreezeRequest is the payload for freezing or unfreezing an entity
type FreezeRequest struct {
	EntityID string `json:"entity_id" binding:"required,entity_id"`
	Reason   string `json:"reason" binding:"required"`
}

// NotifyAuthorityRequest is the payload for notifying an external authority
type NotifyAuthorityRequest struct {
	CaseID      string   `json:"case_id" binding:"required,uuid"`
	StationID   string   `json:"station_id" binding:"required"`
	Description string   `json:"description" binding:"required"`
	EvidenceIDs []string `json:"evidence_ids"`
}
