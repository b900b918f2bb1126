// Package metrics computes ROC and precision-recall curves and selects decision thresholds.
package metrics

import (
	"fmt"
	"math"
	"slices"

	"github.com/annopredict/annopredict/schema"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Evaluate sweeps every distinct score as a cutoff, predicting positive when
// score >= threshold. The sweep starts at +Inf and descends, and all three
// threshold criteria break ties by the first index of that sweep.
func Evaluate(scores []float64, labels []int) (*schema.MetricsResult, error) {
	if len(scores) != len(labels) {
		return nil, fmt.Errorf("got %d scores but %d labels", len(scores), len(labels))
	}

	y := slices.Clone(scores)
	classes := make([]bool, len(labels))
	var positives, negatives int
	for i, l := range labels {
		switch l {
		case 1:
			classes[i] = true
			positives++
		case 0:
			negatives++
		default:
			return nil, fmt.Errorf("label %d at index %d is not 0 or 1", l, i)
		}
	}
	if positives == 0 || negatives == 0 {
		return nil, &UndefinedMetricError{Positives: positives, Negatives: negatives}
	}
	for i, s := range y {
		if math.IsNaN(s) {
			return nil, fmt.Errorf("score at index %d is NaN", i)
		}
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, thresholds := stat.ROC(nil, y, classes, nil)

	// Recover exact counts so the rates carry no rounding residue.
	p, n := float64(positives), float64(negatives)
	tps := make([]float64, len(thresholds))
	fps := make([]float64, len(thresholds))
	for i := range thresholds {
		tps[i] = math.Round(tpr[i] * p)
		fps[i] = math.Round(fpr[i] * n)
		tpr[i] = tps[i] / p
		fpr[i] = fps[i] / n
	}

	m := &schema.MetricsResult{
		FPR:        fpr,
		TPR:        tpr,
		Thresholds: thresholds,
		ROCAUC:     integrate.Trapezoidal(fpr, tpr),
		Recall:     []float64{0},
		Precision:  []float64{1},
	}

	bestJ, bestDist, bestF1 := math.Inf(-1), math.Inf(1), math.Inf(-1)
	for i, thresh := range thresholds {
		tp, fp := tps[i], fps[i]
		fn := p - tp

		if j := tpr[i] - fpr[i]; j > bestJ {
			bestJ = j
			m.OptimalThresholdYouden = thresh
		}
		if d := math.Hypot(1-tpr[i], fpr[i]); d < bestDist {
			bestDist = d
			m.OptimalThresholdDistance = thresh
		}
		if i == 0 {
			// +Inf predicts nothing positive, so it has no precision and no F1
			continue
		}

		f1 := 0.0
		if denom := 2*tp + fp + fn; denom > 0 {
			f1 = 2 * tp / denom
		}
		if f1 > bestF1 {
			bestF1 = f1
			m.OptimalThresholdF1 = thresh
		}

		precision := 0.0
		if tp+fp > 0 {
			precision = tp / (tp + fp)
		}
		m.Recall = append(m.Recall, tpr[i])
		m.Precision = append(m.Precision, precision)
	}
	m.PRAUC = integrate.Trapezoidal(m.Recall, m.Precision)
	return m, nil
}
