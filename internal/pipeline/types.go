package pipeline

// Action is a unit of work inside a stage. Actions are constructed once
// during assembly and are immutable thereafter.
type Action struct {
	// Name is unique within the owning stage.
	Name string `json:"name"`
	// RunOrder places the action in an execution wave. Actions sharing a
	// run-order execute concurrently; distinct run-orders execute in
	// ascending order, each wave waiting for the prior to complete.
	RunOrder int `json:"run_order"`
	// Executor names the collaborator that performs the work (source,
	// build, toolkit, approval).
	Executor string `json:"executor"`
	// Input is the primary input artifact, if any.
	Input string `json:"input,omitempty"`
	// ExtraInputs are additional read-only input artifacts.
	ExtraInputs []string `json:"extra_inputs,omitempty"`
	// Output is the artifact this action produces, if any.
	Output string `json:"output,omitempty"`
	// Env is the environment variable mapping handed to the executor.
	Env map[string]string `json:"env,omitempty"`
}

// Stage is a named, ordered unit of pipeline execution. Stage order is
// fixed at assembly time; stages execute strictly sequentially.
type Stage struct {
	Name    string   `json:"name"`
	Actions []Action `json:"actions"`
}

// Waves groups the stage's actions by run-order, ascending. Action order
// within a wave follows the stage's action order.
func (s Stage) Waves() [][]Action {
	var waves [][]Action
	byOrder := make(map[int][]Action)
	maxOrder := 0
	for _, a := range s.Actions {
		byOrder[a.RunOrder] = append(byOrder[a.RunOrder], a)
		if a.RunOrder > maxOrder {
			maxOrder = a.RunOrder
		}
	}
	for order := 1; order <= maxOrder; order++ {
		if actions, ok := byOrder[order]; ok {
			waves = append(waves, actions)
		}
	}
	return waves
}

// Pipeline is the complete, static deployment pipeline description.
type Pipeline struct {
	// Name is the generated pipeline name, derived from the qualifier.
	Name   string  `json:"name"`
	Stages []Stage `json:"stages"`
}

// StageNames returns the stage names in execution order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = s.Name
	}
	return names
}

// Stage returns the stage with the given name, if present.
func (p *Pipeline) Stage(name string) (Stage, bool) {
	for _, s := range p.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}
