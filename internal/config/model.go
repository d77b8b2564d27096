package config

import (
	"errors"
	"fmt"
)

// DefaultQualifier is the naming prefix applied when the configuration does
// not supply one.
const DefaultQualifier = "accel"

// ErrManagementAccountPair is returned when only one half of the management
// account identity is configured.
var ErrManagementAccountPair = errors.New("management account id and role name must be configured together")

// ManagementAccount identifies the management-account role the toolkit
// assumes for cross-account work. Both fields are required together.
type ManagementAccount struct {
	ID       string
	RoleName string
}

// Model is the unified, format-agnostic representation of the pipeline
// configuration.
type Model struct {
	// Qualifier prefixes generated pipeline and project names.
	Qualifier string
	// SourceRepository and SourceBranch locate the toolkit source code.
	SourceRepository string
	SourceBranch     string
	// ConfigRepository locates the deployment configuration. Defaults to
	// "<SourceRepository>-config".
	ConfigRepository string
	// EnableApprovalStage inserts a manual review stage before any
	// infrastructure is touched.
	EnableApprovalStage bool
	// ManagementAccount is optional; nil means the pipeline runs entirely
	// in the local account.
	ManagementAccount *ManagementAccount
}

// Normalize fills defaulted fields in place. It is idempotent.
func (m *Model) Normalize() {
	if m.Qualifier == "" {
		m.Qualifier = DefaultQualifier
	}
	if m.ConfigRepository == "" && m.SourceRepository != "" {
		m.ConfigRepository = m.SourceRepository + "-config"
	}
}

// Validate checks the model for configuration errors. It does not mutate
// the model; call Normalize first if defaults should apply.
func (m *Model) Validate() error {
	if m.SourceRepository == "" {
		return errors.New("source repository is required")
	}
	if m.SourceBranch == "" {
		return errors.New("source branch is required")
	}
	if ma := m.ManagementAccount; ma != nil {
		if (ma.ID == "") != (ma.RoleName == "") {
			return fmt.Errorf("%w: got id=%q role=%q", ErrManagementAccountPair, ma.ID, ma.RoleName)
		}
		if ma.ID == "" && ma.RoleName == "" {
			return fmt.Errorf("%w: block present but empty", ErrManagementAccountPair)
		}
	}
	return nil
}
