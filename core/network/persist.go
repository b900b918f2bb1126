package network

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/annopredict/annopredict/schema"
	"gonum.org/v1/gonum/graph/formats/cytoscapejs"
)

// document is a Cytoscape.js graph with the build counters kept in the
// top-level data object.
type document struct {
	cytoscapejs.GraphNodeEdge
	Data documentData `json:"data"`
}

type documentData struct {
	SelfLoopsSkipped int `json:"self_loops_skipped,omitempty"`
}

// Marshal encodes the graph as a Cytoscape.js document. Nodes and edges are
// written in insertion order so a round trip keeps the protein order.
func Marshal(g *Graph) ([]byte, error) {
	doc := document{
		GraphNodeEdge: cytoscapejs.GraphNodeEdge{
			Elements: cytoscapejs.Elements{
				Nodes: make([]cytoscapejs.Node, 0, len(g.nodes)),
				Edges: make([]cytoscapejs.Edge, 0, len(g.edges)),
			},
		},
		Data: documentData{SelfLoopsSkipped: g.selfLoops},
	}
	for _, n := range g.nodes {
		attrs := map[string]any{"type": string(n.Type)}
		if n.Name != "" {
			attrs["name"] = n.Name
		}
		doc.Elements.Nodes = append(doc.Elements.Nodes, cytoscapejs.Node{
			Data: cytoscapejs.NodeData{ID: n.Key, Attributes: attrs},
		})
	}
	for i, e := range g.edges {
		doc.Elements.Edges = append(doc.Elements.Edges, cytoscapejs.Edge{
			Data: cytoscapejs.EdgeData{
				ID:         "e" + strconv.Itoa(i),
				Source:     e.F.Key,
				Target:     e.T.Key,
				Attributes: map[string]any{"type": string(e.Type)},
			},
		})
	}
	return json.Marshal(&doc)
}

// Unmarshal decodes a graph written by Marshal.
func Unmarshal(data []byte) (*Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Source: "graph", Reason: err.Error()}
	}

	g := NewGraph()
	for i, n := range doc.Elements.Nodes {
		typ := schema.NodeType(stringAttr(n.Data.Attributes, "type"))
		if typ != schema.ProteinNode && typ != schema.GOTermNode {
			return nil, &FormatError{Source: "graph", Reason: fmt.Sprintf("node %d (%s) has unknown type %q", i, n.Data.ID, typ)}
		}
		if g.HasNode(n.Data.ID) {
			return nil, &FormatError{Source: "graph", Reason: fmt.Sprintf("duplicate node %s", n.Data.ID)}
		}
		g.ensureNode(n.Data.ID, typ, stringAttr(n.Data.Attributes, "name"))
	}
	for _, e := range doc.Elements.Edges {
		typ := schema.EdgeType(stringAttr(e.Data.Attributes, "type"))
		if typ != schema.ProteinProteinEdge && typ != schema.ProteinGOTermEdge {
			return nil, &FormatError{Source: "graph", Reason: fmt.Sprintf("edge %s has unknown type %q", e.Data.ID, typ)}
		}
		from, to := g.Node(e.Data.Source), g.Node(e.Data.Target)
		if from == nil || to == nil {
			return nil, &FormatError{Source: "graph", Reason: fmt.Sprintf("edge %s references a missing node", e.Data.ID)}
		}
		if from.id == to.id {
			return nil, &FormatError{Source: "graph", Reason: fmt.Sprintf("edge %s is a self-loop", e.Data.ID)}
		}
		g.addEdge(from, to, typ)
	}
	if doc.Data.SelfLoopsSkipped < 0 {
		return nil, &FormatError{Source: "graph", Reason: "negative self-loop count"}
	}
	g.selfLoops = doc.Data.SelfLoopsSkipped
	return g, nil
}

// Save writes the graph to path, creating parent directories as needed.
func Save(g *Graph, path string) error {
	data, err := Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a graph written by Save and returns it with its protein list.
func Load(path string) (*Graph, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read graph %s: %w", path, err)
	}
	g, err := Unmarshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load graph %s: %w", path, err)
	}
	return g, g.Proteins(), nil
}

func stringAttr(attrs map[string]any, key string) string {
	if v, ok := attrs[key].(string); ok {
		return v
	}
	return ""
}
