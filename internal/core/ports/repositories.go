package ports

import (
	"context"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// RunRepository persists finished pipeline runs.
type RunRepository interface {
	Save(ctx context.Context, record *domain.RunRecord, points []domain.SequencedPoint) error
	GetByID(ctx context.Context, id string) (*domain.RunRecord, []domain.SequencedPoint, error)
	List(ctx context.Context, limit, offset int) ([]domain.RunRecord, error)
	Count(ctx context.Context) (int, error)
}
