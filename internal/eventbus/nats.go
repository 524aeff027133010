/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus forwards local scheduler events to other hosts.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/friendsincode/radiocompose/internal/events"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubjectPrefix is prepended to the event type to form the NATS subject.
const SubjectPrefix = "radiocompose.events."

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL   string
	Token string

	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSForwarder republishes every bus event on a NATS subject.
type NATSForwarder struct {
	conn   *nats.Conn
	pub    publisher
	nodeID string
	logger zerolog.Logger
}

// ConnectNATS dials the server described by cfg.
func ConnectNATS(cfg NATSConfig, logger zerolog.Logger) (*NATSForwarder, error) {
	opts := []nats.Option{
		nats.Name("radiocompose"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("nats disconnected")
			}
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	f := newForwarder(nc, logger)
	f.conn = nc
	f.logger.Info().Str("url", nc.ConnectedUrlRedacted()).Msg("forwarding events to nats")
	return f, nil
}

func newForwarder(pub publisher, logger zerolog.Logger) *NATSForwarder {
	return &NATSForwarder{
		pub:    pub,
		nodeID: generateNodeID(),
		logger: logger.With().Str("component", "nats_forwarder").Logger(),
	}
}

// Attach forwards every event published on bus from now on.
func (f *NATSForwarder) Attach(bus *events.Bus) {
	bus.Hook(f.Forward)
}

// Forward publishes one event. Failures are logged, never returned: event
// fan-out must not fail a composition.
func (f *NATSForwarder) Forward(eventType events.EventType, payload events.Payload) {
	data, err := marshalNATSMessage(eventType, payload, f.nodeID)
	if err != nil {
		f.logger.Warn().Err(err).Str("event", string(eventType)).Msg("encode event")
		return
	}
	if err := f.pub.Publish(SubjectPrefix+string(eventType), data); err != nil {
		f.logger.Warn().Err(err).Str("event", string(eventType)).Msg("publish event")
	}
}

// Close flushes buffered messages and closes the connection.
func (f *NATSForwarder) Close() error {
	if f.conn == nil {
		return nil
	}
	if err := f.conn.Drain(); err != nil {
		f.conn.Close()
		return fmt.Errorf("drain nats: %w", err)
	}
	return nil
}

// natsMessage is the wire format of a forwarded event.
type natsMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"`
}

func marshalNATSMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := natsMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal nats message: %w", err)
	}
	return data, nil
}

func unmarshalNATSMessage(data []byte) (*natsMessage, error) {
	var msg natsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal nats message: %w", err)
	}
	return &msg, nil
}

func generateNodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "node"
	}
	return host + "-" + uuid.NewString()[:8]
}
