package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/chainwatchhq/chainwatch/pkg/logger"
)

// Subjects published by the case and escalation services.
const (
	SubjectCaseOpened        = "case.opened"
	SubjectCaseTransitioned  = "case.transitioned"
	SubjectEntityFrozen      = "entity.frozen"
	SubjectEntityUnfrozen    = "entity.unfrozen"
	SubjectAuthorityNotified = "authority.notified"
)

// Publisher publishes lifecycle events to NATS. A nil Publisher is a no-op,
// so callers never need to guard for disabled eventing.
type Publisher struct {
	conn *nats.Conn
}

// Envelope wraps every published event payload.
type Envelope struct {
	Subject   string      `json:"subject"`
	EmittedAt time.Time   `json:"emitted_at"`
	Payload   interface{} `json:"payload"`
}

// NewPublisher connects to NATS at the given URL
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

// Publish sends an event. Failures are logged, never surfaced; eventing is
// best-effort and must not fail the originating operation.
func (p *Publisher) Publish(subject string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(Envelope{
		Subject:   subject,
		EmittedAt: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		logger.Error("Failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		logger.Error("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// Close drains and closes the connection
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
