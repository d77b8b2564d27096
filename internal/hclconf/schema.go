package hclconf

import "github.com/hashicorp/hcl/v2"

// pipelineBlock mirrors the `pipeline` block of a configuration file.
type pipelineBlock struct {
	Qualifier           string                  `hcl:"qualifier,optional"`
	SourceRepository    string                  `hcl:"source_repository"`
	SourceBranch        string                  `hcl:"source_branch"`
	ConfigRepository    string                  `hcl:"config_repository,optional"`
	EnableApprovalStage bool                    `hcl:"enable_approval_stage,optional"`
	ManagementAccount   *managementAccountBlock `hcl:"management_account,block"`
}

// managementAccountBlock mirrors the optional `management_account` block.
type managementAccountBlock struct {
	ID       string `hcl:"id,optional"`
	RoleName string `hcl:"role_name,optional"`
}

// fileRoot is the top-level structure of a configuration file.
type fileRoot struct {
	Pipeline *pipelineBlock `hcl:"pipeline,block"`
	Remain   hcl.Body       `hcl:",remain"`
}
