package algo

import (
	"context"

	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
)

// ProteinDegreeName is the registry name of ProteinDegree.
const ProteinDegreeName = "protein_degree"

// DegreeColumn is the detail column written by ProteinDegree.
const DegreeColumn = "degree"

// ProteinDegree scores a pair by the total degree of its protein, ignoring the GO term.
type ProteinDegree struct{}

// Name implements Algorithm.
func (*ProteinDegree) Name() string { return ProteinDegreeName }

// Predict implements Algorithm.
func (a *ProteinDegree) Predict(ctx context.Context, ds *schema.Dataset, g *network.Graph, progress contract.ProgressFunc) (*schema.PredictionTable, error) {
	return predict(ctx, a.Name(), []string{DegreeColumn}, ds, progress, func(protein, goTerm string) (float64, map[string]float64) {
		return a.Score(g, protein, goTerm)
	})
}

// Score implements PairScorer.
func (*ProteinDegree) Score(g *network.Graph, protein, _ string) (float64, map[string]float64) {
	degree := float64(g.Degree(protein))
	return degree, map[string]float64{DegreeColumn: degree}
}
