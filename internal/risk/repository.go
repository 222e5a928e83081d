package risk

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRiskReportNotFound is returned when a risk report does not exist
var ErrRiskReportNotFound = errors.New("risk report not found")

// RepositoryInterface defines risk report persistence
type RepositoryInterface interface {
	CreateRiskReport(ctx context.Context, report *RiskReport) error
	GetRiskReportByID(ctx context.Context, id uuid.UUID) (*RiskReport, error)
}

// Repository handles risk report persistence
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new risk report repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateRiskReport inserts an immutable risk report
func (r *Repository) CreateRiskReport(ctx context.Context, report *RiskReport) error {
	txJSON, err := json.Marshal(report.SuspiciousTransactions)
	if err != nil {
		return err
	}
	addrJSON, err := json.Marshal(report.SuspiciousAddresses)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO risk_reports (
			id, entity_id, risk_level, fraud_probability, is_suspicious,
			suspicious_transactions, suspicious_addresses, model_type, model_version, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Exec(ctx, query,
		report.ID,
		report.EntityID,
		report.RiskLevel,
		report.FraudProbability,
		report.IsSuspicious,
		txJSON,
		addrJSON,
		report.ModelType,
		report.ModelVersion,
		report.ComputedAt,
	)

	return err
}

// GetRiskReportByID retrieves a risk report by ID
func (r *Repository) GetRiskReportByID(ctx context.Context, id uuid.UUID) (*RiskReport, error) {
	query := `
		SELECT id, entity_id, risk_level, fraud_probability, is_suspicious,
		       suspicious_transactions, suspicious_addresses, model_type, model_version, computed_at
		FROM risk_reports
		WHERE id = $1
	`

	var report RiskReport
	var txJSON, addrJSON []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.EntityID,
		&report.RiskLevel,
		&report.FraudProbability,
		&report.IsSuspicious,
		&txJSON,
		&addrJSON,
		&report.ModelType,
		&report.ModelVersion,
		&report.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRiskReportNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(txJSON, &report.SuspiciousTransactions); err != nil {
		report.SuspiciousTransactions = []string{}
	}
	if err := json.Unmarshal(addrJSON, &report.SuspiciousAddresses); err != nil {
		report.SuspiciousAddresses = []string{}
	}

	return &report, nil
}
