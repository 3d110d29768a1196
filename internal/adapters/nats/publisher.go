package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// Subjects used by the pipeline. Progress subjects end in the run id so a
// client can follow a single run.
const (
	SubjectProgressPrefix = "vertexgen.progress."
	SubjectProgressAll    = "vertexgen.progress.>"
	SubjectRunCompleted   = "vertexgen.runs.completed"
	SubjectRunRequests    = "vertexgen.requests"
)

// ProgressSubject returns the subject progress of runID is published on.
func ProgressSubject(runID string) string {
	return SubjectProgressPrefix + runID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
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

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      "VERTEX_PROGRESS",
			Subjects:  []string{SubjectProgressAll},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.MemoryStorage,
		},
		{
			Name:      "VERTEX_RUNS",
			Subjects:  []string{"vertexgen.runs.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    7 * 24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "VERTEX_REQUESTS",
			Subjects:  []string{SubjectRunRequests},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

// PublishProgress announces one pipeline stage.
func (p *Publisher) PublishProgress(ctx context.Context, pr domain.Progress) error {
	data, err := json.Marshal(pr)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ProgressSubject(pr.RunID), data, nats.Context(ctx))
	return err
}

// PublishRunCompleted announces a finished run.
func (p *Publisher) PublishRunCompleted(ctx context.Context, rec *domain.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectRunCompleted, data, nats.Context(ctx), nats.MsgId(rec.ID))
	return err
}

// PublishRunRequest queues a run for the worker.
func (p *Publisher) PublishRunRequest(ctx context.Context, req *domain.RunRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectRunRequests, data, nats.Context(ctx), nats.MsgId(req.RunID))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("vertexgen"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
