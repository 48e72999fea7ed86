package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Envelope wraps every published domain event with its subject and send time.
type Envelope struct {
	Subject string      `json:"subject"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// Publisher fans domain events out over NATS. Delivery to learners
// (email, push, in-app feeds) is handled by downstream consumers.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher builds a NATS-backed event publisher.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Connect dials the NATS server at the given URL.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// Publish serialises the payload and sends it on the given subject.
// A nil connection makes Publish a no-op so tests and single-node
// deployments can run without a broker.
func (p *Publisher) Publish(subject string, payload interface{}) error {
	if p == nil || p.conn == nil {
		return nil
	}

	data, err := json.Marshal(Envelope{
		Subject: subject,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return err
	}

	p.logger.Debug().Str("subject", subject).Msg("event published")
	return nil
}
