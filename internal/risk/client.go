package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/pkg/httpclient"
	"github.com/chainwatchhq/chainwatch/pkg/logger"
	"github.com/chainwatchhq/chainwatch/pkg/resilience"
)

// ErrAnalysisUnavailable is returned when the scoring model cannot be reached.
// Callers decide how to proceed; a benign score is never fabricated.
var ErrAnalysisUnavailable = errors.New("risk analysis unavailable")

// AnalyzerInterface is the scoring contract consumed by the report service
type AnalyzerInterface interface {
	Analyze(ctx context.Context, entityID, narrative string) (*RiskReport, error)
}

// Client calls the external fraud-scoring model and normalizes its response
type Client struct {
	http    *httpclient.Client
	breaker *resilience.CircuitBreaker
}

var _ AnalyzerInterface = (*Client)(nil)

type analyzeRequest struct {
	EntityID  string `json:"entity_id"`
	Narrative string `json:"narrative"`
}

type analyzeResponse struct {
	FraudProbability       float64  `json:"fraud_probability"`
	IsSuspicious           bool     `json:"is_suspicious"`
	SuspiciousTransactions []string `json:"suspicious_transactions"`
	SuspiciousAddresses    []string `json:"suspicious_addresses"`
	Model                  struct {
		Type    string `json:"type"`
		Version string `json:"version"`
	} `json:"model"`
}

// NewClient creates an analyzer client. One retry with backoff, then the
// caller sees ErrAnalysisUnavailable.
func NewClient(baseURL string, timeout time.Duration) *Client {
	retryConfig := resilience.RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
		RetryableChecker:  httpclient.IsRetryable,
	}

	return &Client{
		http: httpclient.NewClient(baseURL, timeout).WithOptions(httpclient.WithRetry(retryConfig)),
		breaker: resilience.NewCircuitBreaker(
			resilience.BuildSettings("risk-analyzer", 60, 30, 5, 2),
			resilience.GracefulDegradation("risk-analyzer"),
		),
	}
}

// Analyze scores an entity against the external model
func (c *Client) Analyze(ctx context.Context, entityID, narrative string) (*RiskReport, error) {
	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return c.http.Post(ctx, "/v1/analyze", analyzeRequest{
			EntityID:  entityID,
			Narrative: narrative,
		}, nil)
	})
	if err != nil {
		logger.WithContext(ctx).Warn("Risk analysis failed",
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	body, _ := result.([]byte)
	var resp analyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed analyzer response: %v", ErrAnalysisUnavailable, err)
	}

	probability := clampProbability(resp.FraudProbability)

	return &RiskReport{
		ID:                     uuid.New(),
		EntityID:               entityID,
		RiskLevel:              BandRiskLevel(probability),
		FraudProbability:       probability,
		IsSuspicious:           resp.IsSuspicious,
		SuspiciousTransactions: resp.SuspiciousTransactions,
		SuspiciousAddresses:    resp.SuspiciousAddresses,
		ModelType:              resp.Model.Type,
		ModelVersion:           resp.Model.Version,
		ComputedAt:             time.Now().UTC(),
	}, nil
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
