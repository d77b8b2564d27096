// Package hclconf is the HCL implementation of the config.Loader interface.
package hclconf

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/deployfab/stagepipe/internal/config"
	"github.com/deployfab/stagepipe/internal/ctxlog"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// evalContext exposes the built-in defaults to configuration expressions,
// e.g. `qualifier = defaults.qualifier`.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"defaults": cty.ObjectVal(map[string]cty.Value{
				"qualifier": cty.StringVal(config.DefaultQualifier),
			}),
		},
	}
}

// Load implements config.Loader. It parses a single HCL file, translates it
// into the format-agnostic model, applies defaults, and validates it.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", path, diags)
	}
	if root.Pipeline == nil {
		return nil, fmt.Errorf("configuration %s is missing the required pipeline block", path)
	}

	model := translate(root.Pipeline)
	model.Normalize()
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	logger.Debug("Configuration loaded and translated into unified model.",
		"qualifier", model.Qualifier,
		"approval_stage", model.EnableApprovalStage,
	)
	return model, nil
}

// translate converts the HCL-specific schema into the agnostic model.
func translate(p *pipelineBlock) *config.Model {
	model := &config.Model{
		Qualifier:           p.Qualifier,
		SourceRepository:    p.SourceRepository,
		SourceBranch:        p.SourceBranch,
		ConfigRepository:    p.ConfigRepository,
		EnableApprovalStage: p.EnableApprovalStage,
	}
	if p.ManagementAccount != nil {
		model.ManagementAccount = &config.ManagementAccount{
			ID:       p.ManagementAccount.ID,
			RoleName: p.ManagementAccount.RoleName,
		}
	}
	return model
}
