package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/vertexgen/internal/adapters/postgres"
	"github.com/samirrijal/vertexgen/internal/adapters/valkey"
	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

// RunSubmitter queues a run for the background worker.
type RunSubmitter interface {
	PublishRunRequest(ctx context.Context, req *domain.RunRequest) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Vertices  *usecases.VertexService
	Defaults  domain.Options // applied to requests that leave options unset
	Submitter RunSubmitter
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
