package algo

import (
	"context"

	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
)

// OverlappingNeighborsName is the registry name of OverlappingNeighbors.
const OverlappingNeighborsName = "overlapping_neighbors"

// Detail columns written by OverlappingNeighbors.
const (
	ProProNeighborColumn     = "pro_pro_neighbor"
	GONeighborColumn         = "go_neighbor"
	AnnotatedNeighborsColumn = "go_annotated_pro_pro_neighbors"
)

// OverlappingNeighbors scores a pair by how many interaction partners of the
// protein are already annotated to the GO term, relative to the size of both
// neighbourhoods.
type OverlappingNeighbors struct{}

// Name implements Algorithm.
func (*OverlappingNeighbors) Name() string { return OverlappingNeighborsName }

// Predict implements Algorithm.
func (a *OverlappingNeighbors) Predict(ctx context.Context, ds *schema.Dataset, g *network.Graph, progress contract.ProgressFunc) (*schema.PredictionTable, error) {
	columns := []string{ProProNeighborColumn, GONeighborColumn, AnnotatedNeighborsColumn}
	return predict(ctx, a.Name(), columns, ds, progress, func(protein, goTerm string) (float64, map[string]float64) {
		return a.Score(g, protein, goTerm)
	})
}

// Score implements PairScorer.
func (*OverlappingNeighbors) Score(g *network.Graph, protein, goTerm string) (float64, map[string]float64) {
	pp := g.Neighbors(protein, schema.ProteinProteinEdge)
	goNeighbors := g.Neighbors(goTerm, schema.ProteinGOTermEdge)
	annotated := 0
	for _, n := range pp {
		if isAnnotated(g, n, goTerm) {
			annotated++
		}
	}
	details := map[string]float64{
		ProProNeighborColumn:     float64(len(pp)),
		GONeighborColumn:         float64(len(goNeighbors)),
		AnnotatedNeighborsColumn: float64(annotated),
	}
	return OverlapScore(len(pp), len(goNeighbors), annotated), details
}

// OverlapScore computes (1 + annotated) / (ppCount + goCount). An empty pair of
// neighbourhoods scores 0.
func OverlapScore(ppCount, goCount, annotated int) float64 {
	denom := ppCount + goCount
	if denom == 0 {
		return 0
	}
	return float64(1+annotated) / float64(denom)
}
