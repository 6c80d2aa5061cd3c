package domain

// Graph holds the node and edge sets of a strategy.
// It owns no business logic beyond storage and connectivity queries.
// Declaration order of both slices is significant to the workflow extractor.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, g.Edges)
	return out
}

// Index returns the position of a node in the declaration order, or -1.
func (g Graph) Index(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// Node returns a pointer to the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	i := g.Index(id)
	if i < 0 {
		return nil, false
	}
	return &g.Nodes[i], true
}

// NodeMap indexes nodes by ID. Later duplicates win.
func (g Graph) NodeMap() map[string]Node {
	m := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		m[n.ID] = n
	}
	return m
}

// Outgoing returns the edges leaving a node, in declaration order.
func (g Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// HasIncoming reports whether the node is the target of any edge.
func (g Graph) HasIncoming(id string) bool {
	for _, e := range g.Edges {
		if e.Target == id {
			return true
		}
	}
	return false
}

// EntryNodes returns the nodes with no incoming edges, in declaration order.
func (g Graph) EntryNodes() []Node {
	targets := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		targets[e.Target] = true
	}
	var entries []Node
	for _, n := range g.Nodes {
		if !targets[n.ID] {
			entries = append(entries, n)
		}
	}
	return entries
}

// DanglingEdges returns the edges whose source or target is not a node.
func (g Graph) DanglingEdges() []Edge {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	var out []Edge
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
