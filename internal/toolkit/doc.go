// Package toolkit models the contract between the pipeline and the remote
// toolkit that performs the actual infrastructure synthesis and deployment.
// The pipeline never invokes cloud APIs itself; every deployment action
// reduces to a command string and a pair of environment variables handed to
// a Runner implementation.
package toolkit
