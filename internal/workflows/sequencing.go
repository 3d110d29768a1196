package workflows

import (
	"context"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// WorkflowIDPrefix namespaces sequencing workflow ids. The run id follows it,
// so a redelivered request maps onto the execution already started.
const WorkflowIDPrefix = "sequencing-"

// SequencingWorkflow validates a queued request, then runs the pipeline as a
// single activity. Caller errors fail the workflow without retries.
func SequencingWorkflow(ctx workflow.Context, req domain.RunRequest) (*domain.RunRecord, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting sequencing workflow", "runID", req.RunID, "points", len(req.Set.Points))

	validateCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
	if err := workflow.ExecuteActivity(validateCtx, "ValidateRequest", req).Get(ctx, nil); err != nil {
		logger.Warn("request rejected", "runID", req.RunID, "error", err)
		return nil, err
	}

	runCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeCaller},
		},
	})
	var rec domain.RunRecord
	if err := workflow.ExecuteActivity(runCtx, "RunPipeline", req).Get(ctx, &rec); err != nil {
		return nil, err
	}

	logger.Info("Sequencing completed", "runID", rec.ID, "points", rec.PointCount)
	return &rec, nil
}

// Submit starts a SequencingWorkflow for req on taskQueue.
func Submit(ctx context.Context, c client.Client, taskQueue string, req domain.RunRequest) (client.WorkflowRun, error) {
	return c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        WorkflowIDPrefix + req.RunID,
		TaskQueue: taskQueue,
	}, SequencingWorkflow, req)
}
