package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/deployfab/stagepipe/internal/config"
	"github.com/deployfab/stagepipe/internal/ctxlog"
	"github.com/deployfab/stagepipe/internal/toolkit"
)

// Assembly invariant errors.
var (
	ErrDuplicateStage     = errors.New("duplicate stage name")
	ErrArtifactOutOfOrder = errors.New("artifact consumed before it is produced")
)

// Assemble builds the complete pipeline description for the given
// configuration. It is a pure function: identical configuration yields a
// structurally identical description, and no provisioning API is touched.
// All configuration errors and invariant violations abort assembly with a
// descriptive error; there is no partial description.
func Assemble(ctx context.Context, m *config.Model) (*Pipeline, error) {
	logger := ctxlog.FromContext(ctx)

	// Work on a copy so defaulting never mutates the caller's model.
	cfg := *m
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}
	logger.Debug("Assemble: configuration validated.", "qualifier", cfg.Qualifier)

	registry := newArtifactRegistry()
	for name, producer := range map[string]string{
		ArtifactSource:      StageSource,
		ArtifactConfig:      StageSource,
		ArtifactBuildOutput: StageBuild,
	} {
		if _, err := registry.Register(name, producer); err != nil {
			return nil, err
		}
	}

	p := &Pipeline{Name: cfg.Qualifier + "-pipeline"}
	p.Stages = append(p.Stages, sourceStage(&cfg), buildStage(&cfg))

	factory := &actionFactory{registry: registry}
	for _, spec := range deploymentStages(&cfg) {
		stage, err := factory.buildStage(spec.name, spec.ops)
		if err != nil {
			return nil, err
		}
		p.Stages = append(p.Stages, stage)
	}
	logger.Debug("Assemble: stage construction complete.", "stage_count", len(p.Stages))

	if err := verify(p, registry); err != nil {
		return nil, err
	}
	logger.Debug("Assemble: invariant verification passed.")
	return p, nil
}

// sourceStage fetches the toolkit source and the deployment configuration
// as two concurrent actions.
func sourceStage(cfg *config.Model) Stage {
	return Stage{
		Name: StageSource,
		Actions: []Action{
			{
				Name:     "Source",
				RunOrder: 1,
				Executor: ExecSource,
				Output:   ArtifactSource,
				Env: map[string]string{
					EnvRepository: cfg.SourceRepository,
					EnvBranch:     cfg.SourceBranch,
				},
			},
			{
				Name:     "Configuration",
				RunOrder: 1,
				Executor: ExecSource,
				Output:   ArtifactConfig,
				Env: map[string]string{
					EnvRepository: cfg.ConfigRepository,
					EnvBranch:     cfg.SourceBranch,
				},
			},
		},
	}
}

// buildStage synthesizes the toolkit from source and configuration,
// producing the build output every later stage consumes.
func buildStage(cfg *config.Model) Stage {
	env := map[string]string{EnvQualifier: cfg.Qualifier}
	if ma := cfg.ManagementAccount; ma != nil {
		env[EnvManagementAccountID] = ma.ID
		env[EnvManagementAccountRoleName] = ma.RoleName
	}
	return Stage{
		Name: StageBuild,
		Actions: []Action{
			{
				Name:        "Build",
				RunOrder:    1,
				Executor:    ExecBuild,
				Input:       ArtifactSource,
				ExtraInputs: []string{ArtifactConfig},
				Output:      ArtifactBuildOutput,
				Env:         env,
			},
		},
	}
}

// stageSpec pairs a stage name with the operations it contains.
type stageSpec struct {
	name string
	ops  []operation
}

// deploymentStages is the fixed, hand-ordered table of stages downstream of
// Build. The Review stage is included iff the approval stage is enabled.
// Dependencies between actions are declared as explicit edges; run-order
// waves are derived from them during stage construction.
func deploymentStages(cfg *config.Model) []stageSpec {
	specs := []stageSpec{
		{StagePrepare, []operation{
			{name: "Prepare", command: toolkit.Deploy(TagPrepare)},
		}},
		{StageAccounts, []operation{
			{name: "Accounts", command: toolkit.Deploy(TagAccounts)},
		}},
		{StageBootstrap, []operation{
			{name: "Bootstrap", command: toolkit.Bootstrap()},
		}},
	}

	if cfg.EnableApprovalStage {
		specs = append(specs, stageSpec{StageReview, []operation{
			{name: "Diff", command: toolkit.Diff()},
			{name: "Approve", approval: true, after: []string{"Diff"}},
		}})
	}

	return append(specs,
		stageSpec{StageLogging, []operation{
			{name: "Logging", command: toolkit.Deploy(TagLogging)},
		}},
		stageSpec{StageOrganization, []operation{
			{name: "Organization", command: toolkit.Deploy(TagOrganizations)},
		}},
		stageSpec{StageSecurityAudit, []operation{
			{name: "SecurityAudit", command: toolkit.Deploy(TagSecurityAudit)},
		}},
		stageSpec{StageDeploy, []operation{
			{name: "Network_Prepare", command: toolkit.Deploy(TagNetworkPrep)},
			{name: "Security", command: toolkit.Deploy(TagSecurity)},
			{name: "Operations", command: toolkit.Deploy(TagOperations)},
			{name: "Network_VPCs", command: toolkit.Deploy(TagNetworkVPC), after: []string{"Network_Prepare"}},
			{name: "Network_Associations", command: toolkit.Deploy(TagNetworkAssociations), after: []string{"Network_VPCs"}},
		}},
	)
}

// verify checks the assembled description's structural invariants: unique
// stage names, and every artifact produced by a strictly earlier stage than
// any stage consuming it.
func verify(p *Pipeline, registry *artifactRegistry) error {
	stageIndex := make(map[string]int, len(p.Stages))
	for i, s := range p.Stages {
		if _, dup := stageIndex[s.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateStage, s.Name)
		}
		stageIndex[s.Name] = i
	}

	for i, s := range p.Stages {
		for _, a := range s.Actions {
			var inputs []string
			if a.Input != "" {
				inputs = append(inputs, a.Input)
			}
			inputs = append(inputs, a.ExtraInputs...)
			for _, name := range inputs {
				artifact, err := registry.Use(name)
				if err != nil {
					return fmt.Errorf("stage %q action %q: %w", s.Name, a.Name, err)
				}
				producerIdx, ok := stageIndex[artifact.ProducedBy]
				if !ok {
					return fmt.Errorf("artifact %q produced by unknown stage %q", name, artifact.ProducedBy)
				}
				if producerIdx >= i {
					return fmt.Errorf("%w: %q consumed by stage %q but produced by %q",
						ErrArtifactOutOfOrder, name, s.Name, artifact.ProducedBy)
				}
			}
		}
	}
	return nil
}
