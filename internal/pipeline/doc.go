// Package pipeline builds the multi-stage, multi-account deployment
// pipeline description. Assemble is a pure function from configuration to
// an ordered list of stages; it performs no provisioning. The description
// is handed to an external executor (see internal/executor for the local
// reference implementation).
package pipeline
