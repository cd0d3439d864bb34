// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/logging"
	"github.com/tomtom215/aisfleet/internal/metrics"
	"github.com/tomtom215/aisfleet/internal/models"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "ais"

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// PositionEvent is the payload published for every stored position.
type PositionEvent struct {
	EventID    string    `json:"event_id"`
	MMSI       int64     `json:"mmsi"`
	Timestamp  time.Time `json:"ts"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	SOGKnots   *float64  `json:"sog_knots,omitempty"`
	COGDeg     *float64  `json:"cog_deg,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty"`
	NavStatus  *int      `json:"nav_status,omitempty"`
	Name       *string   `json:"name,omitempty"`
	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewPositionEvent builds the event for a stored position.
func NewPositionEvent(p *models.PositionReport) *PositionEvent {
	return &PositionEvent{
		EventID:    uuid.NewString(),
		MMSI:       p.MMSI,
		Timestamp:  p.Timestamp.UTC(),
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		SOGKnots:   p.SOGKnots,
		COGDeg:     p.COGDeg,
		HeadingDeg: p.HeadingDeg,
		NavStatus:  p.NavStatus,
		Name:       p.Name,
		Source:     p.Source,
		ReceivedAt: p.ReceivedAt.UTC(),
	}
}

// Publisher sends stored positions to NATS through Watermill. Publishing
// is best effort: a breaker stops attempts while NATS is unreachable.
type Publisher struct {
	publisher message.Publisher
	cb        *gobreaker.CircuitBreaker[struct{}]
	subject   string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects to cfg.URL and returns a publisher for
// "<prefix>.position".
func NewPublisher(cfg *config.NATSConfig) (*Publisher, error) {
	logger := watermill.NewSlogLogger(logging.NewComponentSlogLogger("events"))

	natsOpts := []natsgo.Option{
		natsgo.Name("aisfleet-ingestor"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled: true,
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "nats-publish",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Publisher circuit breaker state transition")
		},
	})

	return &Publisher{
		publisher: pub,
		cb:        cb,
		subject:   PositionSubject(cfg.SubjectPrefix),
	}, nil
}

// PositionSubject returns the subject positions are published on.
func PositionSubject(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + ".position"
}

// Subject returns the position subject.
func (p *Publisher) Subject() string {
	return p.subject
}

// PublishPosition publishes one stored position.
func (p *Publisher) PublishPosition(ctx context.Context, pos *models.PositionReport) error {
	event := NewPositionEvent(pos)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal position event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set("mmsi", strconv.FormatInt(pos.MMSI, 10))
	msg.Metadata.Set("source", pos.Source)

	return p.Publish(msg)
}

// Publish sends msg on the position subject through the breaker.
func (p *Publisher) Publish(msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(p.subject, msg)
	})
	metrics.RecordNATSPublish(err)
	return err
}

// Close shuts the publisher down. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
