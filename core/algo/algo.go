// Package algo has the link prediction heuristics that score protein to GO term pairs.
package algo

import (
	"context"
	"fmt"
	"strings"

	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
)

// Algorithm scores every pair of a dataset against a read-only network.
//
// Predict returns 2N results for N pairs, positive before negative per index,
// with normalized scores in [0,1] and the table sorted by normalized score.
type Algorithm interface {
	Name() string
	Predict(ctx context.Context, ds *schema.Dataset, g *network.Graph, progress contract.ProgressFunc) (*schema.PredictionTable, error)
}

// PairScorer is implemented by deterministic algorithms that can score a single
// pair outside a dataset.
type PairScorer interface {
	Score(g *network.Graph, protein, goTerm string) (float64, map[string]float64)
}

// Options parameterize algorithm construction.
type Options struct {
	Seed int64
}

// Factory creates an algorithm.
type Factory func(opts Options) Algorithm

type registration struct {
	info    schema.AlgorithmInfo
	factory Factory
}

// registry lists the algorithms in the order they are reported.
var registry = []registration{
	{
		info: schema.AlgorithmInfo{
			Name:    OverlappingNeighborsName,
			Purpose: "Neighbourhood overlap between the protein's partners and the GO term's proteins",
			Formula: "(1 + A) / (|PP| + |GO|), 0 when both neighbourhoods are empty",
			Details: []string{ProProNeighborColumn, GONeighborColumn, AnnotatedNeighborsColumn},
		},
		factory: func(Options) Algorithm { return &OverlappingNeighbors{} },
	},
	{
		info: schema.AlgorithmInfo{
			Name:    RandomBaselineName,
			Purpose: "Null model control with independent uniform scores",
			Formula: "U(0, 1) per pair from the seeded generator",
		},
		factory: func(opts Options) Algorithm { return NewRandomBaseline(opts.Seed) },
	},
	{
		info: schema.AlgorithmInfo{
			Name:    ProteinDegreeName,
			Purpose: "Scores a pair by how connected the protein is",
			Formula: "deg(protein) over all edge types",
			Details: []string{DegreeColumn},
		},
		factory: func(Options) Algorithm { return &ProteinDegree{} },
	},
}

// Lookup creates the algorithm registered under name.
func Lookup(name string, opts Options) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range registry {
		if r.info.Name == key {
			return r.factory(opts), nil
		}
	}
	return nil, fmt.Errorf("unknown algorithm %q (available: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the registered algorithm names in registration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.info.Name
	}
	return names
}

// Describe returns the catalogue of registered algorithms.
func Describe() []schema.AlgorithmInfo {
	infos := make([]schema.AlgorithmInfo, len(registry))
	for i, r := range registry {
		infos[i] = r.info
	}
	return infos
}

// Normalize applies min-max scaling. When every value is equal the result is all zeros.
func Normalize(raw []float64) []float64 {
	out := make([]float64, len(raw))
	if len(raw) == 0 {
		return out
	}
	lo, hi := raw[0], raw[0]
	for _, v := range raw[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		return out
	}
	span := hi - lo
	for i, v := range raw {
		out[i] = (v - lo) / span
	}
	return out
}

// scoreFunc returns the raw score of one pair and its detail values.
type scoreFunc func(protein, goTerm string) (float64, map[string]float64)

// predict runs score over the dataset and assembles the normalized, sorted table.
func predict(ctx context.Context, name string, detailColumns []string, ds *schema.Dataset, progress contract.ProgressFunc, score scoreFunc) (*schema.PredictionTable, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	total := 2 * ds.Len()
	results := make([]schema.PredictionResult, 0, total)
	for i := range ds.Positive {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, pair := range []schema.LabeledPair{ds.Positive[i], ds.Negative[i]} {
			raw, details := score(pair.Protein, pair.GOTerm)
			results = append(results, schema.PredictionResult{
				Protein:   pair.Protein,
				GOTerm:    pair.GOTerm,
				RawScore:  raw,
				TrueLabel: pair.Label,
				Details:   details,
			})
			if progress != nil {
				progress(len(results), total)
			}
		}
	}

	raw := make([]float64, len(results))
	for i := range results {
		raw[i] = results[i].RawScore
	}
	for i, v := range Normalize(raw) {
		results[i].NormScore = v
	}

	table := &schema.PredictionTable{Algorithm: name, DetailColumns: detailColumns, Results: results}
	table.SortByScore()
	return table, nil
}

// isAnnotated reports whether protein carries a protein_go_term edge to goTerm.
func isAnnotated(g *network.Graph, protein, goTerm string) bool {
	typ, ok := g.EdgeType(protein, goTerm)
	return ok && typ == schema.ProteinGOTermEdge
}
