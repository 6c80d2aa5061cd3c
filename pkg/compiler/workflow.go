package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// Workflow is the compiled form of a strategy: one ordered list of command strings
// per entry node.
type Workflow [][]string

// Encode returns the JSON string sent to the execution service and stored as
// orderedWorkflow. Comparison operators are written as-is, not HTML-escaped.
func (w Workflow) Encode() (string, error) {
	return domain.EncodeWorkflow(w)
}

// Commands returns every command of every workflow, in order.
func (w Workflow) Commands() []string {
	var out []string
	for _, path := range w {
		out = append(out, path...)
	}
	return out
}

// DecodeWorkflow parses an encoded workflow.
func DecodeWorkflow(s string) (Workflow, error) {
	var w Workflow
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		return nil, fmt.Errorf("failed to decode workflow: %w", err)
	}
	return w, nil
}
