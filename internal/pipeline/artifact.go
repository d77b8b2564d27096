package pipeline

import (
	"errors"
	"fmt"
)

// Artifact registry errors.
var (
	ErrDuplicateArtifact = errors.New("artifact already registered")
	ErrUnknownArtifact   = errors.New("artifact not registered")
)

// Artifact is an opaque named bundle of files produced by one stage and
// consumed read-only by later stages.
type Artifact struct {
	// Name is unique for the pipeline's lifetime.
	Name string
	// ProducedBy is the name of the stage that writes the artifact.
	ProducedBy string
}

// artifactRegistry tracks artifact name to producing-stage bindings. Each
// artifact is produced exactly once; referencing an artifact before it is
// registered, or registering the same name twice, is an assembly error.
type artifactRegistry struct {
	artifacts map[string]*Artifact
}

func newArtifactRegistry() *artifactRegistry {
	return &artifactRegistry{artifacts: make(map[string]*Artifact)}
}

// Register binds an artifact name to its producing stage.
func (r *artifactRegistry) Register(name, producedBy string) (*Artifact, error) {
	if _, exists := r.artifacts[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateArtifact, name)
	}
	a := &Artifact{Name: name, ProducedBy: producedBy}
	r.artifacts[name] = a
	return a, nil
}

// Use looks up a registered artifact for wiring as an action input.
func (r *artifactRegistry) Use(name string) (*Artifact, error) {
	a, ok := r.artifacts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, name)
	}
	return a, nil
}
