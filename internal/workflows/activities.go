package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/ports"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

// ErrTypeCaller marks application errors caused by the request itself.
const ErrTypeCaller = "CallerError"

// SequencingActivities holds the activity implementations for the sequencing workflow.
type SequencingActivities struct {
	Service  *usecases.VertexService
	Defaults domain.Options
}

// ValidateRequest rejects requests the pipeline would refuse, before any
// work is scheduled.
func (a *SequencingActivities) ValidateRequest(ctx context.Context, req domain.RunRequest) error {
	if err := a.options(req).Validate(); err != nil {
		return callerError(err)
	}
	if err := usecases.ValidatePointSet(req.Set); err != nil {
		return callerError(err)
	}
	return nil
}

// RunPipeline executes the pipeline under the request's run id, heartbeating
// once per stage.
func (a *SequencingActivities) RunPipeline(ctx context.Context, req domain.RunRequest) (*domain.RunRecord, error) {
	progress := ports.ProgressFunc(func(p domain.Progress) {
		activity.RecordHeartbeat(ctx, p.Stage)
	})
	res, err := a.Service.RunWithID(ctx, req.RunID, req.Set, a.options(req), progress)
	if err != nil {
		if domain.IsCallerError(err) {
			return nil, callerError(err)
		}
		return nil, err
	}
	activity.GetLogger(ctx).Info("pipeline finished", "runID", res.RunID, "points", len(res.Points))
	return usecases.RecordOf(req.Set, res), nil
}

func (a *SequencingActivities) options(req domain.RunRequest) domain.Options {
	return req.Options.WithDefaults(a.Defaults)
}

func callerError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return err
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeCaller, err)
}
