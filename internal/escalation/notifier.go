package escalation

import (
	"context"
	"time"

	"github.com/chainwatchhq/chainwatch/pkg/httpclient"
	"github.com/chainwatchhq/chainwatch/pkg/resilience"
)

// WebhookNotifier delivers authority notifications over an HTTP webhook
type WebhookNotifier struct {
	http    *httpclient.Client
	breaker *resilience.CircuitBreaker
}

var _ Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a notifier for the given channel URL. One retry
// with backoff; the record's delivery status captures the final outcome.
func NewWebhookNotifier(baseURL string, timeout time.Duration) *WebhookNotifier {
	retryConfig := resilience.RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
		RetryableChecker:  httpclient.IsRetryable,
	}

	return &WebhookNotifier{
		http: httpclient.NewClient(baseURL, timeout).WithOptions(httpclient.WithRetry(retryConfig)),
		breaker: resilience.NewCircuitBreaker(
			resilience.BuildSettings("authority-notifier", 60, 30, 5, 2),
			resilience.GracefulDegradation("authority-notifier"),
		),
	}
}

// Dispatch posts the notification to the external channel. The record id
// doubles as the idempotency key so channel-side retries never duplicate.
func (n *WebhookNotifier) Dispatch(ctx context.Context, notification *AuthorityNotification) error {
	_, err := n.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return n.http.PostWithIdempotency(ctx, "/v1/notifications", notification, nil, notification.RecordID.String())
	})
	return err
}
