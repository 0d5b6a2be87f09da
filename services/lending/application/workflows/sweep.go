// Package workflows runs the overdue sweep as a Temporal cron workflow, an
// alternative to the worker's in-process cron when SWEEP_SCHEDULER=temporal.
package workflows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// SweepWorkflowID is fixed so only one cron run exists per namespace.
const SweepWorkflowID = "lending-overdue-sweep"

// Sweeper is the application-layer overdue sweep.
type Sweeper interface {
	Sweep(ctx context.Context, userID *uuid.UUID) (int, error)
}

// SweepResult is returned by one sweep run.
type SweepResult struct {
	Marked int `json:"marked"`
}

// Activities holds the sweep activity and its dependencies.
type Activities struct {
	sweeper Sweeper
}

// NewActivities returns Activities backed by s.
func NewActivities(s Sweeper) *Activities {
	return &Activities{sweeper: s}
}

// SweepOverdue marks every overdue borrow. Partial failures fail the
// activity so Temporal retries it; already-marked borrows are skipped on retry.
func (a *Activities) SweepOverdue(ctx context.Context) (SweepResult, error) {
	n, err := a.sweeper.Sweep(ctx, nil)
	if n > 0 {
		activity.GetLogger(ctx).Info("overdue sweep marked borrows", "marked", n)
	}
	return SweepResult{Marked: n}, err
}

// OverdueSweepWorkflow runs one sweep. Started with a cron schedule it
// repeats on that schedule.
func OverdueSweepWorkflow(ctx workflow.Context) (SweepResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    10 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	var a *Activities
	var res SweepResult
	err := workflow.ExecuteActivity(ctx, a.SweepOverdue).Get(ctx, &res)
	return res, err
}

// Register adds the sweep workflow and activity to w.
func Register(w worker.Registry, acts *Activities) {
	w.RegisterWorkflow(OverdueSweepWorkflow)
	w.RegisterActivity(acts)
}
