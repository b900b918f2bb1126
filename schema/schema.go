// Package schema has the shared data types for annotation prediction.
package schema

import (
	"fmt"
	"math"
	"sort"
)

// Annotation is a single protein to GO term association read from the annotation table.
type Annotation struct {
	Protein string `json:"protein"`
	GOTerm  string `json:"go_term"`
}

// Interaction is a single protein-protein interaction read from the interactome table.
type Interaction struct {
	NameA string `json:"name_a"`
	NameB string `json:"name_b"`
	IDA   string `json:"id_a"`
	IDB   string `json:"id_b"`
}

// LabeledPair is a protein and GO term pair with its ground-truth label (1 or 0).
type LabeledPair struct {
	Protein string `json:"protein"`
	GOTerm  string `json:"go_term"`
	Label   int    `json:"label"`
}

// Dataset holds the balanced evaluation pairs. Index i of Positive and
// Negative always refers to the same GO term.
type Dataset struct {
	Positive []LabeledPair `json:"positive"`
	Negative []LabeledPair `json:"negative"`
}

// Len returns the number of positive (and negative) pairs.
func (d *Dataset) Len() int {
	return len(d.Positive)
}

// Validate checks that both sides have equal length, share GO terms per index
// and carry the correct labels.
func (d *Dataset) Validate() error {
	if len(d.Positive) != len(d.Negative) {
		return fmt.Errorf("dataset is unbalanced: %d positive vs %d negative pairs", len(d.Positive), len(d.Negative))
	}
	for i := range d.Positive {
		pos, neg := d.Positive[i], d.Negative[i]
		if pos.GOTerm != neg.GOTerm {
			return fmt.Errorf("dataset row %d pairs GO term %q with %q", i, pos.GOTerm, neg.GOTerm)
		}
		if pos.Label != 1 || neg.Label != 0 {
			return fmt.Errorf("dataset row %d has labels %d/%d, want 1/0", i, pos.Label, neg.Label)
		}
	}
	return nil
}

// PredictionResult is the score one algorithm assigned to one labeled pair.
type PredictionResult struct {
	Protein   string             `json:"protein"`
	GOTerm    string             `json:"go_term"`
	RawScore  float64            `json:"score"`
	NormScore float64            `json:"norm_score"`
	TrueLabel int                `json:"true_label"`
	Details   map[string]float64 `json:"details,omitempty"`
}

// PredictionTable is the full output of one algorithm over a dataset.
type PredictionTable struct {
	Algorithm     string             `json:"algorithm"`
	DetailColumns []string           `json:"detail_columns,omitempty"`
	Results       []PredictionResult `json:"results"`
}

// SortByScore orders results by normalized score, highest first. Ties keep generation order.
func (t *PredictionTable) SortByScore() {
	sort.SliceStable(t.Results, func(i, j int) bool {
		return t.Results[i].NormScore > t.Results[j].NormScore
	})
}

// Scores returns the normalized scores in table order.
func (t *PredictionTable) Scores() []float64 {
	scores := make([]float64, len(t.Results))
	for i, r := range t.Results {
		scores[i] = r.NormScore
	}
	return scores
}

// Labels returns the true labels in table order.
func (t *PredictionTable) Labels() []int {
	labels := make([]int, len(t.Results))
	for i, r := range t.Results {
		labels[i] = r.TrueLabel
	}
	return labels
}

// MetricsResult holds the ROC/PR curves, their areas and the selected thresholds.
type MetricsResult struct {
	FPR        []float64 `json:"fpr"`
	TPR        []float64 `json:"tpr"`
	Thresholds []float64 `json:"-"` // first entry is +Inf
	ROCAUC     float64   `json:"roc_auc"`
	Precision  []float64 `json:"precision"`
	Recall     []float64 `json:"recall"`
	PRAUC      float64   `json:"pr_auc"`

	OptimalThresholdYouden   float64 `json:"-"`
	OptimalThresholdDistance float64 `json:"-"`
	OptimalThresholdF1       float64 `json:"-"`
}

// Metric returns the value of the ranking metric named by key.
func (m *MetricsResult) Metric(key MetricKey) float64 {
	if key == PRAUCKey {
		return m.PRAUC
	}
	return m.ROCAUC
}

// AlgorithmResult is the successful outcome of one algorithm in a workflow run.
type AlgorithmResult struct {
	Name        string           `json:"algorithm"`
	Predictions *PredictionTable `json:"-"`
	Metrics     *MetricsResult   `json:"metrics"`
}

// AlgorithmFailure records an algorithm that was omitted from a workflow run.
type AlgorithmFailure struct {
	Name   string `json:"algorithm"`
	Reason string `json:"reason"`
}

// WorkflowResult holds every successful algorithm outcome in registration order
// plus the algorithms that failed.
type WorkflowResult struct {
	Results  []AlgorithmResult  `json:"results"`
	Failures []AlgorithmFailure `json:"failures"`
}

// NetworkSummary reports the size of a built network.
type NetworkSummary struct {
	ProteinProteinEdges int `json:"protein_protein_edges"`
	ProteinGOTermEdges  int `json:"protein_go_term_edges"`
	ProteinNodes        int `json:"protein_nodes"`
	GOTermNodes         int `json:"go_term_nodes"`
	TotalEdges          int `json:"total_edges"`
	TotalNodes          int `json:"total_nodes"`
	SelfLoopsSkipped    int `json:"self_loops_skipped"`
}

// AlgorithmInfo describes a registered scoring algorithm.
type AlgorithmInfo struct {
	Name    string   `json:"name"`
	Purpose string   `json:"purpose"`
	Formula string   `json:"formula"`
	Details []string `json:"details,omitempty"`
}

// JSONFloat renders non-finite floats as strings so they survive JSON encoding.
func JSONFloat(v float64) any {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	default:
		return v
	}
}
