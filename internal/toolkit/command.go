package toolkit

import (
	"errors"
	"fmt"
)

// Environment variable keys consumed by the remote toolkit. EnvCommand
// always carries the resolved command string; EnvStage is set only for
// commands that target a specific deployment stage.
const (
	EnvCommand = "CDK_OPTIONS"
	EnvStage   = "ACCELERATOR_STAGE"
)

// ErrMissingStageTag is returned when a deploy command is resolved without
// a target stage tag.
var ErrMissingStageTag = errors.New("deploy command requires a stage tag")

// verb is the closed set of operations the remote toolkit understands.
type verb string

const (
	verbBootstrap verb = "bootstrap"
	verbDiff      verb = "diff"
	verbDeploy    verb = "deploy"
)

// Command is a closed variant over the operations the remote toolkit
// accepts. Construct values with Bootstrap, Diff, or Deploy; the zero value
// is invalid and fails to resolve.
type Command struct {
	verb     verb
	stageTag string
}

// Bootstrap returns the command that bootstraps the toolkit environments.
func Bootstrap() Command {
	return Command{verb: verbBootstrap}
}

// Diff returns the command that produces a change-set diff for review.
func Diff() Command {
	return Command{verb: verbDiff}
}

// Deploy returns the command that deploys the given target stage. The tag
// is validated at resolve time so a malformed descriptor aborts assembly
// rather than producing a broken command.
func Deploy(stageTag string) Command {
	return Command{verb: verbDeploy, stageTag: stageTag}
}

// StageTag returns the deployment stage tag carried by the command, if any.
func (c Command) StageTag() (string, bool) {
	return c.stageTag, c.stageTag != ""
}

// Resolve derives the single command string for this operation.
// Bootstrap and diff are unparameterized; deploy requires a stage tag.
func (c Command) Resolve() (string, error) {
	switch c.verb {
	case verbBootstrap, verbDiff:
		return string(c.verb), nil
	case verbDeploy:
		if c.stageTag == "" {
			return "", ErrMissingStageTag
		}
		return fmt.Sprintf("%s --stage %s", c.verb, c.stageTag), nil
	default:
		return "", fmt.Errorf("unknown toolkit command verb %q", string(c.verb))
	}
}

// Env resolves the command and returns the environment variable mapping
// passed to the remote toolkit.
func (c Command) Env() (map[string]string, error) {
	resolved, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	env := map[string]string{EnvCommand: resolved}
	if tag, ok := c.StageTag(); ok {
		env[EnvStage] = tag
	}
	return env, nil
}
