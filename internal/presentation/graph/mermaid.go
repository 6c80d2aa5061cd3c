package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a strategy graph.
// Shapes follow the block kind:
// - Condition: {Rhombus}
// - Action: [Rectangle]
// Evaluated Condition nodes carry their result in the label and are styled
// as passed or failed. Dangling edges are left out.
func GenerateMermaid(g domain.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var passed, failed []string
	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		if node.Kind == domain.KindCondition {
			opener, closer = "{", "}"
		}

		label := escapeLabel(node.Summary)
		if r := node.Result; r != nil {
			label += fmt.Sprintf("<br/>%s %s %s: %s",
				escapeLabel(r.LHS), escapeLabel(r.Operator), escapeLabel(r.RHS), escapeLabel(r.Result))
			switch strings.ToLower(r.Result) {
			case "true":
				passed = append(passed, safeID)
			case "false":
				failed = append(failed, safeID)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	nodes := g.NodeMap()
	for _, e := range g.Edges {
		if _, ok := nodes[e.Source]; !ok {
			continue
		}
		if _, ok := nodes[e.Target]; !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target)))
	}

	if len(passed)+len(failed) > 0 {
		sb.WriteString("\n    %% Evaluation Results\n")
		// Black text keeps labels readable on both themes.
		sb.WriteString("    classDef passed fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		for _, id := range passed {
			sb.WriteString(fmt.Sprintf("    class %s passed;\n", id))
		}
		for _, id := range failed {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", id))
		}
	}

	return sb.String()
}

// Node IDs are numeric strings, which Mermaid reads poorly, so they get a prefix.
func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return "n" + s
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
