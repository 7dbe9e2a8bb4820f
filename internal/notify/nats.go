// Copyright (c) 2026 Mangadiyari. All rights reserved.
// Author: dev@mangadiyari.net

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// streamName is the JetStream stream that captures all social activity events.
const streamName = "SOCIAL"

// NATSDispatcher implements [Dispatcher] on top of NATS JetStream.
//
// Events are published to their Type as the subject (e.g.
// "social.comment.replied"), all captured by the SOCIAL stream.
type NATSDispatcher struct {
	js     nats.JetStreamContext
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSDispatcher connects to NATS and ensures the SOCIAL stream exists.
func NewNATSDispatcher(natsURL string, logger *slog.Logger) (*NATSDispatcher, error) {
	conn, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: failed to open JetStream context: %w", err)
	}

	// Idempotent: AddStream errors when the stream already exists with a
	// different config, which is fine to surface as a warning only.
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"social.>"},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		logger.Warn("notify_stream_create_failed", slog.Any("error", err))
	}

	logger.Info("notify_dispatcher_connected", slog.String("stream", streamName))

	return &NATSDispatcher{
		js:     js,
		conn:   conn,
		logger: logger,
	}, nil
}

// Dispatch implements [Dispatcher].
func (dispatcher *NATSDispatcher) Dispatch(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: failed to marshal event: %w", err)
	}

	ack, err := dispatcher.js.Publish(event.Type, payload)
	if err != nil {
		return fmt.Errorf("notify: publish failed: %w", err)
	}

	dispatcher.logger.Debug("notify_event_published",
		slog.String("subject", event.Type),
		slog.String("event_id", event.ID),
		slog.Uint64("seq", ack.Sequence),
	)

	return nil
}

// Close drains the NATS connection.
func (dispatcher *NATSDispatcher) Close() {
	if dispatcher.conn != nil {
		dispatcher.conn.Close()
	}
}
