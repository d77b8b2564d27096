// Package app wires the application together: logging, configuration
// loading, pipeline assembly, rendering, and the optional dry-run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/deployfab/stagepipe/internal/config"
	"github.com/deployfab/stagepipe/internal/ctxlog"
	"github.com/deployfab/stagepipe/internal/executor"
	"github.com/deployfab/stagepipe/internal/pipeline"
	"github.com/deployfab/stagepipe/internal/render"
	"github.com/deployfab/stagepipe/internal/toolkit"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *Config
	loader config.Loader
}

// NewApp is the constructor for the main application. The loader is
// injected so tests can substitute a fake configuration source.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	return &App{outW: outW, logger: logger, cfg: cfg, loader: loader}
}

// Run loads the configuration, assembles the pipeline description, renders
// it to the output writer, and — when dry-run is requested — walks the
// description with a logging runner.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	model, err := a.loader.Load(ctx, a.cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	p, err := pipeline.Assemble(ctx, model)
	if err != nil {
		return fmt.Errorf("assembling pipeline: %w", err)
	}

	switch a.cfg.OutputFormat {
	case "json":
		err = render.JSON(a.outW, p)
	default:
		err = render.Text(a.outW, p)
	}
	if err != nil {
		return err
	}

	if a.cfg.DryRun {
		// A dry run has no approver, so approval actions are stripped
		// rather than blocking forever.
		if _, hasReview := p.Stage(pipeline.StageReview); hasReview {
			a.logger.Warn("dry run skips manual approval; Review stage actions run without a gate decision")
			p = withoutApproval(p)
		}
		exec := executor.New(toolkit.LogRunner{}, nil)
		if err := exec.Run(ctx, p); err != nil {
			return fmt.Errorf("dry run: %w", err)
		}
	}
	return nil
}

// withoutApproval returns a copy of the pipeline with approval actions
// removed, for dry runs where nobody can act on the gate.
func withoutApproval(p *pipeline.Pipeline) *pipeline.Pipeline {
	out := &pipeline.Pipeline{Name: p.Name}
	for _, stage := range p.Stages {
		copied := pipeline.Stage{Name: stage.Name}
		for _, action := range stage.Actions {
			if action.Executor == pipeline.ExecApproval {
				continue
			}
			copied.Actions = append(copied.Actions, action)
		}
		out.Stages = append(out.Stages, copied)
	}
	return out
}
