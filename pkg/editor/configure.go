package editor

import (
	"errors"
	"fmt"

	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
)

// SelectSubMenu makes subMenu the active choice of menu on a node.
// The menu's saved prompt values are discarded: values entered for one sub-menu
// do not carry over to another. The summary is recompiled before returning.
func (e *Editor) SelectSubMenu(nodeID, menu, subMenu string) error {
	n, ok := e.strategy.Graph.Node(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	m, ok := e.catalog.Menu(n.Kind, menu)
	if !ok {
		return fmt.Errorf("%w: %q for %s", domain.ErrUnknownMenu, menu, n.Kind)
	}
	if _, ok := m.SubMenu(subMenu); !ok {
		return fmt.Errorf("%w: %q under %q", domain.ErrUnknownSubMenu, subMenu, menu)
	}

	if n.Menus == nil {
		n.Menus = make(map[string]string)
	}
	if n.Selections == nil {
		n.Selections = make(map[string]map[string]domain.Value)
	}
	n.Menus[menu] = subMenu
	n.Selections[menu] = make(map[string]domain.Value)
	n.Summary = compiler.Summarize(e.catalog, *n)
	e.touch()
	return nil
}

// SetPromptValue saves a prompt value under a menu and recompiles the summary.
//
// The value is checked against the prompt loosely: a value of the wrong shape (a
// set for a single-valued prompt or the reverse) is rejected, while values outside
// the prompt's options or not matching its value type are kept as entered and
// returned as a warning.
func (e *Editor) SetPromptValue(nodeID, menu, label string, value domain.Value) (warning error, err error) {
	n, ok := e.strategy.Graph.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	if _, ok := e.catalog.Menu(n.Kind, menu); !ok {
		return nil, fmt.Errorf("%w: %q for %s", domain.ErrUnknownMenu, menu, n.Kind)
	}
	subName, ok := n.SelectedSubMenu(menu)
	if !ok {
		return nil, fmt.Errorf("%w: menu %q", domain.ErrNoSubMenu, menu)
	}
	sub, _ := e.catalog.Lookup(n.Kind, menu, subName)
	prompt, ok := sub.Prompt(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", domain.ErrUnknownPrompt, label, subName)
	}

	if verr := prompt.Validate(value); verr != nil {
		if errors.Is(verr, schema.ErrValueShape) {
			return nil, verr
		}
		warning = verr
		e.logger.Warn("Prompt value accepted despite validation failure",
			"node_id", nodeID, "menu", menu, "prompt", label, "error", verr)
	}

	if n.Selections == nil {
		n.Selections = make(map[string]map[string]domain.Value)
	}
	if n.Selections[menu] == nil {
		n.Selections[menu] = make(map[string]domain.Value)
	}
	n.Selections[menu][label] = value.Clone()
	n.Summary = compiler.Summarize(e.catalog, *n)
	e.touch()
	return warning, nil
}
