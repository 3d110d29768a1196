package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/ports"
	"github.com/samirrijal/vertexgen/internal/pkg/metrics"
)

// DefaultCacheTTL is how long a finished result stays in the cache, in seconds.
const DefaultCacheTTL = 3600

var tracer = otel.Tracer("github.com/samirrijal/vertexgen/internal/core/usecases")

// VertexService runs the point sequencing pipeline end to end.
type VertexService struct {
	transform *TransformService
	runs      ports.RunRepository
	events    ports.EventPublisher
	cache     ports.CacheService
	cacheTTL  int

	now   func() time.Time
	newID func() string
}

// NewVertexService creates a new VertexService. runs, events and cache are
// optional and may be nil.
func NewVertexService(transformer ports.CoordinateTransformer, runs ports.RunRepository, events ports.EventPublisher, cache ports.CacheService) *VertexService {
	return &VertexService{
		transform: NewTransformService(transformer),
		runs:      runs,
		events:    events,
		cache:     cache,
		cacheTTL:  DefaultCacheTTL,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// WithCacheTTL overrides the result cache TTL. Non-positive values disable
// caching of new results.
func (s *VertexService) WithCacheTTL(seconds int) *VertexService {
	s.cacheTTL = seconds
	return s
}

// ValidatePointSet rejects empty sets and any feature that is not a single
// point. Nothing is processed when it fails.
func ValidatePointSet(set domain.PointSet) error {
	if len(set.Points) == 0 {
		return &domain.EmptyPointSetError{Stage: domain.StageValidate}
	}
	offending := map[int]string{}
	for i, p := range set.Points {
		if p.GeometryType != "" && !strings.EqualFold(p.GeometryType, "Point") {
			offending[i] = p.GeometryType
		}
	}
	if len(offending) > 0 {
		return &domain.UnsupportedGeometryError{Offending: offending}
	}
	return nil
}

// run carries the state of a single pipeline execution.
type run struct {
	id       string
	svc      *VertexService
	progress ports.ProgressSink
}

func (r *run) notify(ctx context.Context, stage, msg string) {
	p := domain.Progress{RunID: r.id, Stage: stage, Message: msg, Time: r.svc.now()}
	if r.progress != nil {
		r.progress.Notify(p)
	}
	if r.svc.events != nil {
		if err := r.svc.events.PublishProgress(ctx, p); err != nil {
			slog.Warn("publish progress failed", "run_id", r.id, "stage", stage, "error", err)
		}
	}
}

// stage runs fn inside a span and records its duration.
func (r *run) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Run executes the pipeline synchronously. Outputs are only produced once
// every stage has succeeded. progress may be nil.
func (s *VertexService) Run(ctx context.Context, set domain.PointSet, opts domain.Options, progress ports.ProgressSink) (*domain.Result, error) {
	return s.run(ctx, s.newID(), set, opts, progress, true)
}

// RunWithID is Run for callers that assign the run id themselves, such as
// queued requests. An empty id gets a generated one. A caller-assigned id is
// always computed and stored under that id, never served from the cache.
func (s *VertexService) RunWithID(ctx context.Context, runID string, set domain.PointSet, opts domain.Options, progress ports.ProgressSink) (*domain.Result, error) {
	if runID == "" {
		return s.Run(ctx, set, opts, progress)
	}
	return s.run(ctx, runID, set, opts, progress, false)
}

func (s *VertexService) run(ctx context.Context, runID string, set domain.PointSet, opts domain.Options, progress ports.ProgressSink, readCache bool) (res *domain.Result, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.policy", string(opts.ReferencePolicy)),
		attribute.String("run.algorithm", string(opts.Algorithm)),
		attribute.Int("run.points", len(set.Points)),
	))
	defer span.End()

	logger := slog.With("run_id", runID)
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Warn("pipeline run failed", "error", err)
		}
		metrics.PipelineRuns.WithLabelValues(string(opts.ReferencePolicy), string(opts.Algorithm), status).Inc()
		metrics.PipelineRunDuration.Observe(time.Since(started).Seconds())
	}()

	r := &run{id: runID, svc: s, progress: progress}

	r.notify(ctx, domain.StageValidate, fmt.Sprintf("validating %d points", len(set.Points)))
	if err := r.stage(ctx, domain.StageValidate, func(context.Context) error {
		if err := opts.Validate(); err != nil {
			return err
		}
		return ValidatePointSet(set)
	}); err != nil {
		return nil, err
	}

	cacheKey := ResultCacheKey(set, opts)
	if readCache {
		if cached := s.cachedResult(ctx, cacheKey); cached != nil {
			logger.Debug("pipeline result served from cache", "cached_run_id", cached.RunID)
			r.notify(ctx, domain.StageDone, "result served from cache")
			return cached, nil
		}
	}

	points := withSourceCRS(set)

	var geo []domain.GeoPoint
	r.notify(ctx, domain.StageTransform, "converting coordinates to WGS 84 and UTM")
	if err := r.stage(ctx, domain.StageTransform, func(ctx context.Context) error {
		var err error
		geo, err = s.transform.Transform(ctx, points)
		return err
	}); err != nil {
		return nil, err
	}

	var anchor domain.Anchor
	r.notify(ctx, domain.StageAnchor, fmt.Sprintf("selecting reference point (%s)", opts.ReferencePolicy))
	if err := r.stage(ctx, domain.StageAnchor, func(context.Context) error {
		var err error
		anchor, err = SelectAnchor(geo, opts.ReferencePolicy)
		return err
	}); err != nil {
		return nil, err
	}

	r.notify(ctx, domain.StageBearing, "calculating azimuths")
	if err := r.stage(ctx, domain.StageBearing, func(context.Context) error {
		geo = ApplyBearings(geo, anchor)
		return nil
	}); err != nil {
		return nil, err
	}

	var sequenced []domain.SequencedPoint
	r.notify(ctx, domain.StageSequence, fmt.Sprintf("sequencing points (%s)", opts.Algorithm))
	if err := r.stage(ctx, domain.StageSequence, func(context.Context) error {
		var err error
		sequenced, err = Sequence(geo, anchor, opts.Algorithm, opts.LabelWidth)
		return err
	}); err != nil {
		return nil, err
	}

	res = &domain.Result{
		RunID:     runID,
		Options:   opts,
		Anchor:    anchor,
		Points:    sequenced,
		CreatedAt: s.now(),
	}
	r.notify(ctx, domain.StageFormat, "formatting table and point collection")
	if err := r.stage(ctx, domain.StageFormat, func(context.Context) error {
		res.Table = BuildTable(sequenced)
		res.Collection = BuildCollection(set.Name, set.SourceCRS, sequenced, res.Table)
		res.Summary = Summarize(sequenced)
		return nil
	}); err != nil {
		return nil, err
	}

	metrics.PipelinePoints.Add(float64(len(sequenced)))
	s.storeResult(ctx, cacheKey, res)
	s.persist(ctx, set, res)

	r.notify(ctx, domain.StageDone, fmt.Sprintf("%d points sequenced", len(sequenced)))
	logger.Info("pipeline run completed",
		"points", len(sequenced),
		"policy", opts.ReferencePolicy,
		"algorithm", opts.Algorithm,
		"duration", time.Since(started),
	)
	return res, nil
}

// withSourceCRS fills in the set-level CRS on points that carry none.
func withSourceCRS(set domain.PointSet) []domain.Point {
	points := make([]domain.Point, len(set.Points))
	for i, p := range set.Points {
		if p.SourceCRS == "" {
			p.SourceCRS = set.SourceCRS
		}
		points[i] = p
	}
	return points
}

// ResultCacheKey identifies a run by its inputs. Point properties do not
// influence the output and are left out.
func ResultCacheKey(set domain.PointSet, opts domain.Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d\n", set.Name, set.SourceCRS, opts.ReferencePolicy, opts.Algorithm, opts.LabelWidth)
	for _, p := range set.Points {
		fmt.Fprintf(h, "%s|%x|%x\n", p.SourceCRS, math.Float64bits(p.X), math.Float64bits(p.Y))
	}
	return "vertexgen:result:" + hex.EncodeToString(h.Sum(nil))
}

func (s *VertexService) cachedResult(ctx context.Context, key string) *domain.Result {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("result").Inc()
		return nil
	}
	var res domain.Result
	if err := json.Unmarshal(data, &res); err != nil {
		metrics.CacheMisses.WithLabelValues("result").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("result").Inc()
	return &res
}

func (s *VertexService) storeResult(ctx context.Context, key string, res *domain.Result) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		slog.Warn("encode result for cache failed", "run_id", res.RunID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		slog.Warn("cache result failed", "run_id", res.RunID, "error", err)
	}
}

// persist stores and announces a finished run. Failures are logged only:
// the result itself is already complete.
func (s *VertexService) persist(ctx context.Context, set domain.PointSet, res *domain.Result) {
	record := RecordOf(set, res)
	if s.runs != nil {
		if err := s.runs.Save(ctx, record, res.Points); err != nil {
			slog.Error("save run failed", "run_id", res.RunID, "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishRunCompleted(ctx, record); err != nil {
			slog.Warn("publish run completed failed", "run_id", res.RunID, "error", err)
		}
	}
}

// RecordOf builds the persisted header of a result.
func RecordOf(set domain.PointSet, res *domain.Result) *domain.RunRecord {
	return &domain.RunRecord{
		ID:         res.RunID,
		Name:       set.Name,
		SourceCRS:  set.SourceCRS,
		Options:    res.Options,
		PointCount: len(res.Points),
		Anchor:     res.Anchor,
		Perimeter:  res.Summary.PerimeterMeters,
		CreatedAt:  res.CreatedAt,
	}
}

// GetRun returns a persisted run with its sequenced points.
func (s *VertexService) GetRun(ctx context.Context, id string) (*domain.RunRecord, []domain.SequencedPoint, error) {
	if s.runs == nil {
		return nil, nil, domain.ErrHistoryDisabled
	}
	if id == "" {
		return nil, nil, domain.ErrRunNotFound
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns one page of runs, most recent first, and the total number
// of stored runs.
func (s *VertexService) ListRuns(ctx context.Context, limit, offset int) ([]domain.RunRecord, int, error) {
	if s.runs == nil {
		return nil, 0, domain.ErrHistoryDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	runs, err := s.runs.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	total, err := s.runs.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}
	return runs, total, nil
}
