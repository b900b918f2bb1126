package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/annopredict/annopredict/core/algo"
	"github.com/annopredict/annopredict/core/metrics"
	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
	"go.uber.org/zap"
)

// AlgorithmFailure wraps whatever stopped one algorithm from producing metrics.
type AlgorithmFailure struct {
	Algorithm string
	Err       error
}

func (e *AlgorithmFailure) Error() string {
	return fmt.Sprintf("algorithm %s failed: %v", e.Algorithm, e.Err)
}

func (e *AlgorithmFailure) Unwrap() error { return e.Err }

// RunOptions customize a workflow run.
type RunOptions struct {
	// Progress returns the progress callback for one algorithm. It may be nil.
	Progress func(algorithm string) contract.ProgressFunc
}

// Run evaluates every algorithm in order against the same dataset and network.
// A failing algorithm is logged and listed in the result's Failures; the others
// still run. Only cancellation of ctx aborts the whole run.
func Run(ctx context.Context, algorithms []algo.Algorithm, ds *schema.Dataset, g *network.Graph, opts RunOptions) (*schema.WorkflowResult, error) {
	result := &schema.WorkflowResult{
		Results:  []schema.AlgorithmResult{},
		Failures: []schema.AlgorithmFailure{},
	}
	for _, a := range algorithms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var progress contract.ProgressFunc
		if opts.Progress != nil {
			progress = opts.Progress(a.Name())
		}

		res, err := runAlgorithm(ctx, a, ds, g, progress)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			contract.LogWarn("Algorithm omitted from results", err)
			result.Failures = append(result.Failures, schema.AlgorithmFailure{Name: a.Name(), Reason: reason(err)})
			continue
		}
		contract.LogInfo("algorithm evaluated",
			zap.String("algorithm", a.Name()),
			zap.Float64("roc_auc", res.Metrics.ROCAUC),
			zap.Float64("pr_auc", res.Metrics.PRAUC))
		result.Results = append(result.Results, *res)
	}
	return result, nil
}

// runAlgorithm scores and evaluates one algorithm, converting panics into failures.
func runAlgorithm(ctx context.Context, a algo.Algorithm, ds *schema.Dataset, g *network.Graph, progress contract.ProgressFunc) (res *schema.AlgorithmResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &AlgorithmFailure{Algorithm: a.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	table, err := a.Predict(ctx, ds, g, progress)
	if err != nil {
		return nil, &AlgorithmFailure{Algorithm: a.Name(), Err: err}
	}
	m, err := metrics.Evaluate(table.Scores(), table.Labels())
	if err != nil {
		return nil, &AlgorithmFailure{Algorithm: a.Name(), Err: err}
	}
	return &schema.AlgorithmResult{Name: a.Name(), Predictions: table, Metrics: m}, nil
}

// reason returns the message of the cause behind an algorithm failure.
func reason(err error) string {
	var failure *AlgorithmFailure
	if errors.As(err, &failure) {
		return failure.Err.Error()
	}
	return err.Error()
}

// ResolveAlgorithms creates the named algorithms in the given order.
func ResolveAlgorithms(names []string, seed int64) ([]algo.Algorithm, error) {
	algorithms := make([]algo.Algorithm, 0, len(names))
	for _, name := range names {
		a, err := algo.Lookup(name, algo.Options{Seed: seed})
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, a)
	}
	return algorithms, nil
}
