// Package sample draws balanced positive and negative protein to GO term datasets.
package sample

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Options control a sampling pass.
type Options struct {
	Seed        int64
	MaxRetries  int
	OnExhausted schema.ExhaustedPolicy
	Progress    contract.ProgressFunc
}

// NewSource returns the random source for a seed. The same seed always yields
// the same stream.
func NewSource(seed int64) *rand.PCG {
	return rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
}

// Sample draws size distinct positive pairs from the annotation population and
// pairs each with a negative protein that has no annotation to the same GO term.
//
// Negative proteins are drawn uniformly with replacement from proteins until one
// qualifies. After opts.MaxRetries rejections the pair is either fatal
// (abort) or dropped together with its positive (skip).
func Sample(ctx context.Context, pairs []schema.LabeledPair, size int, proteins []string, g *network.Graph, opts Options) (*schema.Dataset, error) {
	if size <= 0 || size > len(pairs) {
		return nil, &SampleSizeError{Requested: size, Available: len(pairs)}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = contract.DefaultMaxRetries
	}
	if opts.OnExhausted == "" {
		opts.OnExhausted = schema.AbortOnExhausted
	}

	src := NewSource(opts.Seed)
	idxs := make([]int, size)
	sampleuv.WithoutReplacement(idxs, len(pairs), src)
	rnd := rand.New(src)

	ds := &schema.Dataset{
		Positive: make([]schema.LabeledPair, 0, size),
		Negative: make([]schema.LabeledPair, 0, size),
	}
	skipped := 0
	for i, idx := range idxs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pos := pairs[idx]
		negative, err := drawNegative(ctx, rnd, pos, proteins, g, opts.MaxRetries)
		if err != nil {
			var exhausted *ExhaustedCandidatesError
			if opts.OnExhausted == schema.SkipOnExhausted && errors.As(err, &exhausted) {
				contract.LogWarn("skipping positive pair without negative candidate", err)
				skipped++
				reportProgress(opts.Progress, i+1, size)
				continue
			}
			return nil, err
		}
		ds.Positive = append(ds.Positive, schema.LabeledPair{Protein: pos.Protein, GOTerm: pos.GOTerm, Label: 1})
		ds.Negative = append(ds.Negative, schema.LabeledPair{Protein: negative, GOTerm: pos.GOTerm, Label: 0})
		reportProgress(opts.Progress, i+1, size)
	}

	contract.LogInfo("dataset sampled",
		zap.Int("pairs", ds.Len()),
		zap.Int("skipped", skipped),
		zap.Int64("seed", opts.Seed))
	return ds, nil
}

// drawNegative rejects candidates that carry a protein_go_term edge to the positive's GO term.
func drawNegative(ctx context.Context, rnd *rand.Rand, pos schema.LabeledPair, proteins []string, g *network.Graph, maxRetries int) (string, error) {
	if len(proteins) == 0 {
		return "", &ExhaustedCandidatesError{GOTerm: pos.GOTerm, Protein: pos.Protein}
	}
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := proteins[rnd.IntN(len(proteins))]
		if !isAnnotated(g, candidate, pos.GOTerm) {
			return candidate, nil
		}
	}
	return "", &ExhaustedCandidatesError{GOTerm: pos.GOTerm, Protein: pos.Protein, Attempts: maxRetries}
}

func isAnnotated(g *network.Graph, protein, goTerm string) bool {
	typ, ok := g.EdgeType(protein, goTerm)
	return ok && typ == schema.ProteinGOTermEdge
}

func reportProgress(progress contract.ProgressFunc, current, total int) {
	if progress != nil {
		progress(current, total)
	}
}
