package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BlockKind determines which menu subtree applies to a node and how traversal treats it.
type BlockKind string

const (
	// KindCondition is a block that evaluates an expression over two operands.
	KindCondition BlockKind = "condition"
	// KindAction is a block that places an order.
	KindAction BlockKind = "action"
)

// Editor labels used by the canvas for each block kind.
const (
	LabelCondition = "Condition Block"
	LabelAction    = "Action Block"
)

// ParseBlockKind accepts the canonical kind names and the canvas labels.
func ParseBlockKind(s string) (BlockKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "condition", strings.ToLower(LabelCondition):
		return KindCondition, nil
	case "action", strings.ToLower(LabelAction):
		return KindAction, nil
	}
	return "", fmt.Errorf("unknown block kind %q", s)
}

// Label returns the canvas label for the kind.
func (k BlockKind) Label() string {
	switch k {
	case KindCondition:
		return LabelCondition
	case KindAction:
		return LabelAction
	}
	return string(k)
}

// UnmarshalJSON accepts both canonical names and canvas labels.
func (k *BlockKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBlockKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Position is the canvas location of a node. It is cosmetic only.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// EvaluatedResult is the outcome the execution service reported for a Condition node.
type EvaluatedResult struct {
	LHS      string `json:"lhs"`
	RHS      string `json:"rhs"`
	Operator string `json:"operator"`
	Result   string `json:"result,omitempty"`
}

// Node represents a block on the canvas.
type Node struct {
	ID       string    `json:"id"`
	Kind     BlockKind `json:"kind"`
	Position Position  `json:"position"`

	// Menus holds the active sub-menu per menu name.
	Menus map[string]string `json:"menus,omitempty"`

	// Selections holds the prompt values per menu name, keyed by prompt label.
	Selections map[string]map[string]Value `json:"menuSelections,omitempty"`

	// Summary is derived from the configuration by the compiler and never edited by hand.
	Summary string `json:"summary"`

	// Result is only ever set on Condition nodes, by the binder.
	Result *EvaluatedResult `json:"evaluatedResult,omitempty"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := n
	if n.Menus != nil {
		out.Menus = make(map[string]string, len(n.Menus))
		for k, v := range n.Menus {
			out.Menus[k] = v
		}
	}
	if n.Selections != nil {
		out.Selections = make(map[string]map[string]Value, len(n.Selections))
		for menu, prompts := range n.Selections {
			cp := make(map[string]Value, len(prompts))
			for label, v := range prompts {
				cp[label] = v.Clone()
			}
			out.Selections[menu] = cp
		}
	}
	if n.Result != nil {
		r := *n.Result
		out.Result = &r
	}
	return out
}

// SelectedSubMenu returns the active sub-menu for a menu, if any.
func (n Node) SelectedSubMenu(menu string) (string, bool) {
	sub, ok := n.Menus[menu]
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}

// PromptValue returns the saved value for a prompt under a menu.
func (n Node) PromptValue(menu, label string) (Value, bool) {
	v, ok := n.Selections[menu][label]
	return v, ok
}
