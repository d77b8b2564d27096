package pipeline

import (
	"errors"
	"fmt"

	"github.com/deployfab/stagepipe/internal/depgraph"
	"github.com/deployfab/stagepipe/internal/toolkit"
)

// ErrDuplicateAction is returned when two actions in the same stage share
// a name.
var ErrDuplicateAction = errors.New("duplicate action name in stage")

// operation describes one action of a deployment stage before run-orders
// are derived: a name, the toolkit command it resolves to (manual-approval
// actions carry none), and the names of the actions it must wait for.
type operation struct {
	name     string
	command  toolkit.Command
	approval bool
	after    []string
}

// actionFactory materializes operations into concrete actions. Every
// produced toolkit action consumes the shared build output as primary input
// and the configuration artifact as a secondary input; none produce an
// artifact.
type actionFactory struct {
	registry *artifactRegistry
}

// build resolves the operation's command into an action at the given
// run-order. A deploy command without a stage tag fails here, at assembly
// time, so a malformed descriptor can never reach the executor.
func (f *actionFactory) build(op operation, runOrder int) (Action, error) {
	buildOut, err := f.registry.Use(ArtifactBuildOutput)
	if err != nil {
		return Action{}, err
	}
	cfg, err := f.registry.Use(ArtifactConfig)
	if err != nil {
		return Action{}, err
	}

	action := Action{
		Name:        op.name,
		RunOrder:    runOrder,
		Input:       buildOut.Name,
		ExtraInputs: []string{cfg.Name},
	}

	if op.approval {
		action.Executor = ExecApproval
		return action, nil
	}

	env, err := op.command.Env()
	if err != nil {
		return Action{}, fmt.Errorf("action %q: %w", op.name, err)
	}
	action.Executor = ExecToolkit
	action.Env = env
	return action, nil
}

// buildStage materializes a full stage from its operations. Run-orders are
// derived from the operations' prerequisite edges by topological layering,
// so the dependency relationships stay checkable rather than living in ad
// hoc integers.
func (f *actionFactory) buildStage(name string, ops []operation) (Stage, error) {
	graph := depgraph.New()
	seen := make(map[string]operation, len(ops))
	for _, op := range ops {
		if _, dup := seen[op.name]; dup {
			return Stage{}, fmt.Errorf("%w: %q in stage %q", ErrDuplicateAction, op.name, name)
		}
		seen[op.name] = op
		graph.AddNode(op.name)
	}
	for _, op := range ops {
		for _, prereq := range op.after {
			if err := graph.AddEdge(prereq, op.name); err != nil {
				return Stage{}, fmt.Errorf("stage %q: %w", name, err)
			}
		}
	}

	layers, err := graph.Layers()
	if err != nil {
		return Stage{}, fmt.Errorf("stage %q: %w", name, err)
	}

	stage := Stage{Name: name}
	for i, layer := range layers {
		for _, actionName := range layer {
			action, err := f.build(seen[actionName], i+1)
			if err != nil {
				return Stage{}, fmt.Errorf("stage %q: %w", name, err)
			}
			stage.Actions = append(stage.Actions, action)
		}
	}
	return stage, nil
}
