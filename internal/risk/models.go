package risk

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel bands a fraud probability into an operational severity
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// Severity orders risk levels for comparison. Unknown levels rank lowest.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskLevelLow:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelHigh:
		return 3
	case RiskLevelCritical:
		return 4
	default:
		return 0
	}
}

// MaxLevel returns the more severe of two risk levels
func MaxLevel(a, b RiskLevel) RiskLevel {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// RiskReport is the normalized output of the external fraud-scoring model.
// Reports are immutable; re-analysis inserts a new report.
type RiskReport struct {
	ID                     uuid.UUID `json:"id"`
	EntityID               string    `json:"entity_id"`
	RiskLevel              RiskLevel `json:"risk_level"`
	FraudProbability       float64   `json:"fraud_probability"`
	IsSuspicious           bool      `json:"is_suspicious"`
	SuspiciousTransactions []string  `json:"suspicious_transactions"`
	SuspiciousAddresses    []string  `json:"suspicious_addresses"`
	ModelType              string    `json:"model_type"`
	ModelVersion           string    `json:"model_version"`
	ComputedAt             time.Time `json:"computed_at"`
}
