package algo

import (
	"context"
	"math/rand/v2"

	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
)

// RandomBaselineName is the registry name of RandomBaseline.
const RandomBaselineName = "random"

// RandomBaseline assigns independent uniform scores. It is the null model
// the other heuristics are compared against.
type RandomBaseline struct {
	seed int64
}

// NewRandomBaseline returns a baseline whose scores depend only on seed.
func NewRandomBaseline(seed int64) *RandomBaseline {
	return &RandomBaseline{seed: seed}
}

// Name implements Algorithm.
func (*RandomBaseline) Name() string { return RandomBaselineName }

// Predict implements Algorithm. Each call restarts the generator, so repeated
// calls on the same dataset agree.
func (a *RandomBaseline) Predict(ctx context.Context, ds *schema.Dataset, _ *network.Graph, progress contract.ProgressFunc) (*schema.PredictionTable, error) {
	rnd := rand.New(rand.NewPCG(uint64(a.seed), 0xda3e39cb94b95bdb))
	return predict(ctx, a.Name(), nil, ds, progress, func(string, string) (float64, map[string]float64) {
		return rnd.Float64(), nil
	})
}
