// Package config defines the format-agnostic configuration model for the
// pipeline assembler, along with the Loader interface for reading it from a
// concrete syntax. The `config.Model` is the single source of truth for the
// `pipeline` package. The HCL implementation lives in internal/hclconf.
package config
