package network

import (
	"context"
	"fmt"
	"strings"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
	"go.uber.org/zap"
)

// Build constructs the network from interaction and annotation records and
// returns it with the protein identifiers in first-seen order.
//
// Every interaction adds two protein nodes and a protein_protein edge. Every
// annotation adds a go_term node and a protein_go_term edge; an unseen protein
// endpoint becomes a protein node. Progress is reported once per record.
// Any malformed record aborts the build and no graph is returned.
func Build(ctx context.Context, interactions []schema.Interaction, annotations []schema.Annotation, progress contract.ProgressFunc) (*Graph, []string, error) {
	g := NewGraph()
	total := len(interactions) + len(annotations)
	current := 0

	for i, rec := range interactions {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := validateInteraction(rec); err != nil {
			return nil, nil, &FormatError{Source: "interactions", Reason: fmt.Sprintf("record %d: %v", i+1, err)}
		}
		a, err := g.typedNode(rec.IDA, schema.ProteinNode, rec.NameA)
		if err != nil {
			return nil, nil, &FormatError{Source: "interactions", Reason: fmt.Sprintf("record %d: %v", i+1, err)}
		}
		b, err := g.typedNode(rec.IDB, schema.ProteinNode, rec.NameB)
		if err != nil {
			return nil, nil, &FormatError{Source: "interactions", Reason: fmt.Sprintf("record %d: %v", i+1, err)}
		}
		if a.id == b.id {
			contract.Logger().Warn("skipping self-interaction", zap.String("protein", rec.IDA))
		}
		g.addEdge(a, b, schema.ProteinProteinEdge)
		current++
		if progress != nil {
			progress(current, total)
		}
	}

	for i, rec := range annotations {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if strings.TrimSpace(rec.Protein) == "" || strings.TrimSpace(rec.GOTerm) == "" {
			return nil, nil, &FormatError{Source: "annotations", Reason: fmt.Sprintf("record %d: empty protein or GO term identifier", i+1)}
		}
		goNode, err := g.typedNode(rec.GOTerm, schema.GOTermNode, "")
		if err != nil {
			return nil, nil, &FormatError{Source: "annotations", Reason: fmt.Sprintf("record %d: %v", i+1, err)}
		}
		protein, err := g.typedNode(rec.Protein, schema.ProteinNode, "")
		if err != nil {
			return nil, nil, &FormatError{Source: "annotations", Reason: fmt.Sprintf("record %d: %v", i+1, err)}
		}
		g.addEdge(goNode, protein, schema.ProteinGOTermEdge)
		current++
		if progress != nil {
			progress(current, total)
		}
	}

	contract.LogDebug("network built",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("records", total))
	return g, g.Proteins(), nil
}

// typedNode is ensureNode for identifiers that must keep one node type.
// An identifier used both as a protein and as a GO term is rejected.
func (g *Graph) typedNode(key string, typ schema.NodeType, name string) (*Node, error) {
	if n := g.Node(key); n != nil && n.Type != typ {
		return nil, fmt.Errorf("%s is a %s node, not a %s", key, n.Type, typ)
	}
	return g.ensureNode(key, typ, name), nil
}

func validateInteraction(rec schema.Interaction) error {
	if strings.TrimSpace(rec.IDA) == "" || strings.TrimSpace(rec.IDB) == "" {
		return fmt.Errorf("empty protein identifier")
	}
	return nil
}
