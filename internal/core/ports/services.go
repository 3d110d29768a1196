package ports

import (
	"context"
	"io"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// CoordinateTransformer converts coordinates between reference systems.
// Implementations must be safe for concurrent use.
type CoordinateTransformer interface {
	// ToGeographic converts a native (x, y) pair in sourceCRS to WGS 84
	// latitude and longitude in decimal degrees.
	ToGeographic(x, y float64, sourceCRS string) (lat, lon float64, err error)
	// ToUTM projects a WGS 84 coordinate into the given UTM zone, using the
	// southern variant when lat < 0.
	ToUTM(lat, lon float64, zone int) (northing, easting float64, err error)
}

// PointReader decodes a point set from a stream.
type PointReader interface {
	Read(ctx context.Context, r io.Reader) (*domain.PointSet, error)
}

// TableWriter encodes the coordinate table.
type TableWriter interface {
	WriteTable(ctx context.Context, w io.Writer, rows []domain.TableRow) error
}

// CollectionWriter encodes the re-ordered point collection.
type CollectionWriter interface {
	WriteCollection(ctx context.Context, w io.Writer, collection domain.PointCollection) error
}

// ProgressSink receives coarse progress notifications from a running pipeline.
// Notify must not block for long; the pipeline calls it synchronously.
type ProgressSink interface {
	Notify(p domain.Progress)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(p domain.Progress)

// Notify calls f(p).
func (f ProgressFunc) Notify(p domain.Progress) { f(p) }

// EventPublisher publishes run events to a message broker.
type EventPublisher interface {
	PublishProgress(ctx context.Context, p domain.Progress) error
	PublishRunCompleted(ctx context.Context, record *domain.RunRecord) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
