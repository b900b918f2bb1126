// Package network builds and queries the protein interaction network with GO term annotations.
package network

import (
	"github.com/annopredict/annopredict/schema"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Node is a protein or GO term in the network.
type Node struct {
	id   int64
	Key  string
	Name string
	Type schema.NodeType
}

// ID implements graph.Node.
func (n *Node) ID() int64 { return n.id }

// Edge is an undirected typed connection between two nodes.
type Edge struct {
	F, T *Node
	Type schema.EdgeType
}

// From implements graph.Edge.
func (e *Edge) From() graph.Node { return e.F }

// To implements graph.Edge.
func (e *Edge) To() graph.Node { return e.T }

// ReversedEdge implements graph.Edge.
func (e *Edge) ReversedEdge() graph.Edge { return &Edge{F: e.T, T: e.F, Type: e.Type} }

// Graph is a simple undirected graph keyed by external identifiers.
// It is read-only once Build returns.
type Graph struct {
	g          *simple.UndirectedGraph
	ids        map[string]int64
	nodes      []*Node
	proteins   []string
	goTerms    []string
	edges      []*Edge
	edgeCounts map[schema.EdgeType]int
	selfLoops  int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		g:          simple.NewUndirectedGraph(),
		ids:        make(map[string]int64),
		edgeCounts: make(map[schema.EdgeType]int),
	}
}

// ensureNode returns the node for key, creating it with the given type on first reference.
// The type is fixed at creation. A non-empty name replaces a missing one.
func (g *Graph) ensureNode(key string, typ schema.NodeType, name string) *Node {
	if id, ok := g.ids[key]; ok {
		n := g.nodes[id]
		if n.Name == "" && name != "" {
			n.Name = name
		}
		return n
	}
	n := &Node{id: int64(len(g.nodes)), Key: key, Name: name, Type: typ}
	g.ids[key] = n.id
	g.nodes = append(g.nodes, n)
	g.g.AddNode(n)
	switch typ {
	case schema.ProteinNode:
		g.proteins = append(g.proteins, key)
	case schema.GOTermNode:
		g.goTerms = append(g.goTerms, key)
	}
	return n
}

// addEdge connects a and b. Re-adding an existing edge is a no-op and self-loops
// are counted and dropped. It reports whether a new edge was stored.
func (g *Graph) addEdge(a, b *Node, typ schema.EdgeType) bool {
	if a.id == b.id {
		g.selfLoops++
		return false
	}
	if g.g.HasEdgeBetween(a.id, b.id) {
		return false
	}
	e := &Edge{F: a, T: b, Type: typ}
	g.g.SetEdge(e)
	g.edges = append(g.edges, e)
	g.edgeCounts[typ]++
	return true
}

// HasNode reports whether key is a node.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.ids[key]
	return ok
}

// Node returns the node for key, or nil.
func (g *Graph) Node(key string) *Node {
	id, ok := g.ids[key]
	if !ok {
		return nil
	}
	return g.nodes[id]
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b string) bool {
	ia, okA := g.ids[a]
	ib, okB := g.ids[b]
	if !okA || !okB {
		return false
	}
	return g.g.HasEdgeBetween(ia, ib)
}

// EdgeType returns the type of the edge between a and b.
func (g *Graph) EdgeType(a, b string) (schema.EdgeType, bool) {
	ia, okA := g.ids[a]
	ib, okB := g.ids[b]
	if !okA || !okB {
		return "", false
	}
	e, ok := g.g.Edge(ia, ib).(*Edge)
	if !ok {
		return "", false
	}
	return e.Type, true
}

// Neighbors returns the keys adjacent to key over edges of the given type.
// Order is unspecified.
func (g *Graph) Neighbors(key string, typ schema.EdgeType) []string {
	id, ok := g.ids[key]
	if !ok {
		return nil
	}
	var out []string
	it := g.g.From(id)
	for it.Next() {
		other := it.Node().(*Node)
		if e, ok := g.g.Edge(id, other.id).(*Edge); ok && e.Type == typ {
			out = append(out, other.Key)
		}
	}
	return out
}

// Degree returns the number of edges of any type incident to key.
func (g *Graph) Degree(key string) int {
	id, ok := g.ids[key]
	if !ok {
		return 0
	}
	n := 0
	it := g.g.From(id)
	for it.Next() {
		n++
	}
	return n
}

// Proteins returns protein keys in first-seen order.
func (g *Graph) Proteins() []string {
	return append([]string(nil), g.proteins...)
}

// GOTerms returns GO term keys in first-seen order.
func (g *Graph) GOTerms() []string {
	return append([]string(nil), g.goTerms...)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Summary reports node and edge counts by type.
func (g *Graph) Summary() schema.NetworkSummary {
	return schema.NetworkSummary{
		ProteinProteinEdges: g.edgeCounts[schema.ProteinProteinEdge],
		ProteinGOTermEdges:  g.edgeCounts[schema.ProteinGOTermEdge],
		ProteinNodes:        len(g.proteins),
		GOTermNodes:         len(g.goTerms),
		TotalEdges:          g.EdgeCount(),
		TotalNodes:          g.NodeCount(),
		SelfLoopsSkipped:    g.selfLoops,
	}
}
