package pipeline

// Canonical stage names. These form a stable public surface: external
// tooling and operators refer to stages by these names, so renaming any of
// them is a breaking change.
const (
	StageSource        = "Source"
	StageBuild         = "Build"
	StagePrepare       = "Prepare"
	StageAccounts      = "Accounts"
	StageBootstrap     = "Bootstrap"
	StageReview        = "Review"
	StageLogging       = "Logging"
	StageOrganization  = "Organization"
	StageSecurityAudit = "SecurityAudit"
	StageDeploy        = "Deploy"
)

// Pipeline-lifetime artifact names.
const (
	ArtifactSource      = "source"
	ArtifactConfig      = "config"
	ArtifactBuildOutput = "build-output"
)

// Deployment phase tags understood by the remote toolkit. These are the
// values passed with `deploy --stage <tag>`.
const (
	TagPrepare             = "prepare"
	TagAccounts            = "accounts"
	TagLogging             = "logging"
	TagOrganizations       = "organizations"
	TagSecurityAudit       = "security-audit"
	TagNetworkPrep         = "network-prep"
	TagSecurity            = "security"
	TagOperations          = "operations"
	TagNetworkVPC          = "network-vpc"
	TagNetworkAssociations = "network-associations"
)

// Executor kinds referenced by actions. The executor field tells the
// execution engine which collaborator performs the work.
const (
	ExecSource   = "source"
	ExecBuild    = "build"
	ExecToolkit  = "toolkit"
	ExecApproval = "approval"
)

// Environment variable keys attached to non-toolkit actions.
const (
	EnvRepository                = "REPOSITORY"
	EnvBranch                    = "BRANCH"
	EnvQualifier                 = "QUALIFIER"
	EnvManagementAccountID       = "MANAGEMENT_ACCOUNT_ID"
	EnvManagementAccountRoleName = "MANAGEMENT_ACCOUNT_ROLE_NAME"
)
