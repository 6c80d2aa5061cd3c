package domain

import "fmt"

// Edge is a directed connection between two nodes.
// Several edges may share a source (fan-out).
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// EdgeID returns the identifier the canvas assigns to a connection.
func EdgeID(source, target string) string {
	return fmt.Sprintf("e%s-%s", source, target)
}

// NewEdge creates an edge with the canvas identifier.
func NewEdge(source, target string) Edge {
	return Edge{ID: EdgeID(source, target), Source: source, Target: target}
}
