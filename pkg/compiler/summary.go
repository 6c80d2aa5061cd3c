package compiler

import (
	"sort"
	"strings"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
)

// EmptySummary is the summary of a node that has no configured menu.
const EmptySummary = "No operations defined"

// Summarize renders a node's configuration into its canonical command string.
//
// Menus are visited in catalog declaration order. For every menu with an active
// sub-menu the sub-menu name is emitted, followed by the saved prompt values in the
// sub-menu's declared prompt order. On Condition nodes the operator sub-menu emits
// only its value, so conditions read "<operand> <operator> <operand>".
func Summarize(c *schema.Catalog, n domain.Node) string {
	var tokens []string
	for _, menu := range c.Menus(n.Kind) {
		subName, ok := n.SelectedSubMenu(menu.Name)
		if !ok {
			continue
		}
		values := promptValues(menu, subName, n.Selections[menu.Name])

		if n.Kind == domain.KindCondition && subName == schema.SubMenuOperator {
			if values != "" {
				tokens = append(tokens, values)
			}
			continue
		}
		tokens = append(tokens, subName)
		if values != "" {
			tokens = append(tokens, values)
		}
	}
	if len(tokens) == 0 {
		return EmptySummary
	}
	return strings.Join(tokens, " ")
}

// promptValues joins the saved values of a sub-menu in declared prompt order,
// skipping prompts without a value. Values for labels the sub-menu does not declare
// are ignored.
func promptValues(menu schema.Menu, subName string, saved map[string]domain.Value) string {
	sub, ok := menu.SubMenu(subName)
	if !ok || len(saved) == 0 {
		return ""
	}
	var parts []string
	for _, p := range sub.Prompts {
		v, ok := saved[p.Label()]
		if !ok || v.IsZero() {
			continue
		}
		if ms, ok := p.(*schema.MultiSelect); ok {
			parts = append(parts, strings.Join(declaredOrder(ms.Options, v.Items()), " "))
			continue
		}
		parts = append(parts, v.Tokens())
	}
	return strings.Join(parts, " ")
}

// declaredOrder returns the selected items in the order the prompt declares its
// options. Items outside the option list follow, sorted.
func declaredOrder(options, items []string) []string {
	selected := make(map[string]bool, len(items))
	for _, it := range items {
		selected[it] = true
	}
	out := make([]string, 0, len(items))
	for _, o := range options {
		if selected[o] {
			out = append(out, o)
			delete(selected, o)
		}
	}
	rest := make([]string, 0, len(selected))
	for it := range selected {
		rest = append(rest, it)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Recompile returns a copy of the graph with every node's summary recomputed.
func Recompile(c *schema.Catalog, g domain.Graph) domain.Graph {
	out := g.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Summary = Summarize(c, out.Nodes[i])
	}
	return out
}
