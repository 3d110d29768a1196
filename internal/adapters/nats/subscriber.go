package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// Subscriber consumes queued run requests with a durable JetStream consumer.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and makes sure the request stream exists.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStreams(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRunRequests calls handler for every queued request. Malformed
// messages are terminated; handler errors are retried up to three deliveries.
func (s *Subscriber) SubscribeRunRequests(ctx context.Context, handler func(ctx context.Context, req *domain.RunRequest) error) error {
	sub, err := s.js.Subscribe(SubjectRunRequests, func(msg *nats.Msg) {
		var req domain.RunRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			slog.Warn("dropping malformed run request", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &req); err != nil {
			slog.Warn("run request failed", "run_id", req.RunID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("vertexgen-worker"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
