package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "BLOOD_ALERTS",
			Subjects:  []string{"blood.alerts.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "DONOR_EVENTS",
			Subjects:  []string{"blood.donors.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishAlertCreated emits the alert on a blood-type-scoped subject so
// consumers can filter by subject alone.
func (p *Publisher) PublishAlertCreated(ctx context.Context, event *domain.AlertEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("blood.alerts."+SubjectToken(event.BloodType), data)
	return err
}

// PublishDonorRegistered announces a new donor.
func (p *Publisher) PublishDonorRegistered(ctx context.Context, donor *domain.Donor) error {
	data, err := json.Marshal(donor)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("blood.donors.registered", data)
	return err
}

// PublishBroadcast fans out raw bytes to live listeners, bypassing JetStream.
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("blood.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// SubjectToken converts a blood type into a NATS-safe subject token,
// e.g. "O+" → "o_pos", "AB-" → "ab_neg".
func SubjectToken(bloodType string) string {
	t := strings.ToLower(bloodType)
	t = strings.ReplaceAll(t, "+", "_pos")
	t = strings.ReplaceAll(t, "-", "_neg")
	return t
}
