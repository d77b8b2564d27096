// Package render serializes an assembled pipeline description for humans
// (text) and tooling (JSON). Output is deterministic: stages keep their
// assembly order and environment keys are sorted.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/deployfab/stagepipe/internal/pipeline"
)

// JSON writes the pipeline description as indented JSON.
func JSON(w io.Writer, p *pipeline.Pipeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding pipeline description: %w", err)
	}
	return nil
}

// Text writes a compact human-readable listing of the pipeline: one line
// per stage, one indented line per action.
func Text(w io.Writer, p *pipeline.Pipeline) error {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline %s (%d stages)\n", p.Name, len(p.Stages))
	for _, stage := range p.Stages {
		fmt.Fprintf(&b, "stage %s\n", stage.Name)
		for _, action := range stage.Actions {
			fmt.Fprintf(&b, "  [%d] %s (%s)", action.RunOrder, action.Name, action.Executor)
			if action.Output != "" {
				fmt.Fprintf(&b, " -> %s", action.Output)
			}
			for _, kv := range sortedEnv(action.Env) {
				fmt.Fprintf(&b, " %s", kv)
			}
			b.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing pipeline listing: %w", err)
	}
	return nil
}

// sortedEnv renders an env map as "KEY=value" strings in key order.
func sortedEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + env[k]
	}
	return out
}
