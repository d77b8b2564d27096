package toolkit

import (
	"context"

	"github.com/deployfab/stagepipe/internal/ctxlog"
)

// Invocation is the unit of work handed to a Runner: one action of one
// stage, with the fully resolved environment.
type Invocation struct {
	Stage  string
	Action string
	Env    map[string]string
}

// Runner executes a single toolkit invocation and reports success or
// failure. Implementations perform the actual synthesis/deployment work;
// the pipeline core only shapes what gets passed in.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// LogRunner is a Runner that logs each invocation without side effects.
// It backs the CLI dry-run mode.
type LogRunner struct{}

// Run implements Runner.
func (LogRunner) Run(ctx context.Context, inv Invocation) error {
	ctxlog.FromContext(ctx).Info("toolkit invocation",
		"stage", inv.Stage,
		"action", inv.Action,
		"command", inv.Env[EnvCommand],
		"stage_tag", inv.Env[EnvStage],
	)
	return nil
}
