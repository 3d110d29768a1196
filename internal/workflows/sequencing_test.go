package workflows_test

import (
	"errors"
	"testing"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
	"github.com/samirrijal/vertexgen/internal/workflows"
)

// degreesTransformer treats input as lon/lat degrees and projects with a
// flat 111 km per degree, which is enough for ordering.
type degreesTransformer struct{}

func (degreesTransformer) ToGeographic(x, y float64, crs string) (float64, float64, error) {
	return y, x, nil
}

func (degreesTransformer) ToUTM(lat, lon float64, zone int) (float64, float64, error) {
	return lat * 111000, 500000 + lon*111000, nil
}

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.SequencingWorkflow)
	env.RegisterActivity(&workflows.SequencingActivities{
		Service:  usecases.NewVertexService(degreesTransformer{}, nil, nil, nil),
		Defaults: domain.DefaultOptions(),
	})
	return env
}

func request(points ...[2]float64) domain.RunRequest {
	set := domain.PointSet{Name: "wf", SourceCRS: "EPSG:4326"}
	for i, p := range points {
		set.Points = append(set.Points, domain.Point{Index: i, X: p[0], Y: p[1], GeometryType: "Point"})
	}
	return domain.RunRequest{RunID: "run-1", Set: set}
}

func TestSequencingWorkflow_Completes(t *testing.T) {
	env := newEnv(t)
	env.ExecuteWorkflow(workflows.SequencingWorkflow, request(
		[2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1}, [2]float64{-1, 0},
	))

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected workflow error: %v", err)
	}
	var rec domain.RunRecord
	if err := env.GetWorkflowResult(&rec); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if rec.ID != "run-1" {
		t.Errorf("expected run id run-1, got %q", rec.ID)
	}
	if rec.PointCount != 4 {
		t.Errorf("expected 4 points, got %d", rec.PointCount)
	}
	if rec.Options != domain.DefaultOptions() {
		t.Errorf("expected default options, got %+v", rec.Options)
	}
}

func TestSequencingWorkflow_RejectsEmptySet(t *testing.T) {
	env := newEnv(t)
	env.ExecuteWorkflow(workflows.SequencingWorkflow, request())

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	err := env.GetWorkflowError()
	if err == nil {
		t.Fatal("expected workflow error for an empty set")
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected application error, got %T: %v", err, err)
	}
	if appErr.Type() != workflows.ErrTypeCaller {
		t.Errorf("expected type %s, got %s", workflows.ErrTypeCaller, appErr.Type())
	}
}
