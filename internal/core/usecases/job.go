package usecases

import (
	"context"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/ports"
)

// progressBuffer holds every notification of one run, so a caller that
// never drains Progress does not stall the pipeline.
const progressBuffer = 16

// Job is a pipeline run executing in its own goroutine.
type Job struct {
	id       string
	progress chan domain.Progress
	done     chan struct{}

	result *domain.Result
	err    error
}

// ID returns the run id the job's result and notifications carry.
func (j *Job) ID() string { return j.id }

// Progress streams coarse notifications. The channel is closed when the run
// ends.
func (j *Job) Progress() <-chan domain.Progress { return j.progress }

// Done is closed once the terminal result is available.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the run ends and returns its single terminal outcome.
func (j *Job) Wait() (*domain.Result, error) {
	<-j.done
	return j.result, j.err
}

// Start runs the pipeline off the caller's goroutine.
func (s *VertexService) Start(ctx context.Context, set domain.PointSet, opts domain.Options) *Job {
	j := &Job{
		id:       s.newID(),
		progress: make(chan domain.Progress, progressBuffer),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(j.done)
		defer close(j.progress)

		sink := ports.ProgressFunc(func(p domain.Progress) {
			select {
			case j.progress <- p:
			default:
			}
		})
		j.result, j.err = s.run(ctx, j.id, set, opts, sink, true)
	}()
	return j
}
