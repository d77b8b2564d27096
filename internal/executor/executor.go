// Package executor runs an assembled pipeline description against a
// toolkit.Runner. It is the collaborator that separates graph construction
// (pure, testable) from execution: stages run strictly sequentially, and
// within a stage each run-order wave runs concurrently, waiting for the
// prior wave to fully succeed.
package executor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/deployfab/stagepipe/internal/approval"
	"github.com/deployfab/stagepipe/internal/ctxlog"
	"github.com/deployfab/stagepipe/internal/pipeline"
	"github.com/deployfab/stagepipe/internal/toolkit"
)

// Executor drives pipeline descriptions. The gate is consulted for
// approval actions; it may be nil, in which case approval actions fail
// immediately instead of blocking forever with nobody to release them.
type Executor struct {
	runner toolkit.Runner
	gate   *approval.Gate
}

// New creates an executor that hands invocations to the given runner.
func New(runner toolkit.Runner, gate *approval.Gate) *Executor {
	return &Executor{runner: runner, gate: gate}
}

// Run executes the pipeline stage by stage. The first action failure
// cancels the remaining actions of its wave and aborts the run; later
// stages never start.
func (e *Executor) Run(ctx context.Context, p *pipeline.Pipeline) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("pipeline run started", "pipeline", p.Name, "stage_count", len(p.Stages))

	for _, stage := range p.Stages {
		if err := e.runStage(ctx, stage); err != nil {
			return fmt.Errorf("stage %q: %w", stage.Name, err)
		}
		logger.Info("stage completed", "stage", stage.Name)
	}

	logger.Info("pipeline run completed", "pipeline", p.Name)
	return nil
}

// runStage executes the stage's waves in ascending run-order. Actions in
// the same wave run concurrently and independently.
func (e *Executor) runStage(ctx context.Context, stage pipeline.Stage) error {
	logger := ctxlog.FromContext(ctx)

	for _, wave := range stage.Waves() {
		group, waveCtx := errgroup.WithContext(ctx)
		for _, action := range wave {
			action := action
			group.Go(func() error {
				logger.Debug("action started",
					"stage", stage.Name, "action", action.Name, "run_order", action.RunOrder)
				if err := e.runAction(waveCtx, stage.Name, action); err != nil {
					return fmt.Errorf("action %q: %w", action.Name, err)
				}
				logger.Debug("action completed", "stage", stage.Name, "action", action.Name)
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runAction(ctx context.Context, stageName string, action pipeline.Action) error {
	if action.Executor == pipeline.ExecApproval {
		if e.gate == nil {
			return fmt.Errorf("no approval gate configured for action %q", action.Name)
		}
		return e.gate.Await(ctx, ActionID(stageName, action.Name))
	}

	return e.runner.Run(ctx, toolkit.Invocation{
		Stage:  stageName,
		Action: action.Name,
		Env:    action.Env,
	})
}

// ActionID is the gate key for an action: "<stage>/<action>".
func ActionID(stage, action string) string {
	return stage + "/" + action
}
