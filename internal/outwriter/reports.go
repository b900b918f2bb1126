package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/annopredict/annopredict/schema"
)

// Suffixes of the per-algorithm files written to the output directory.
const (
	PredictionSuffix = "_data.tsv"
	ROCCurveSuffix   = "_roc.tsv"
	PRCurveSuffix    = "_pr.tsv"
)

// WritePredictionTables writes <dir>/<algorithm>_data.tsv for every result.
// Rows keep the table order, which is by normalized score descending.
func WritePredictionTables(dir string, results []schema.AlgorithmResult, precision int) error {
	fmtFloat := createFormatter(precision)
	for _, r := range results {
		path := filepath.Join(dir, r.Name+PredictionSuffix)
		if err := createFile(path, func(w io.Writer) error {
			return writePredictionTable(w, r.Predictions, fmtFloat)
		}); err != nil {
			return err
		}
	}
	return nil
}

// writePredictionTable writes one prediction table as tab-separated values.
func writePredictionTable(w io.Writer, table *schema.PredictionTable, fmtFloat func(float64) string) error {
	header := []string{"protein", "go_term"}
	header = append(header, table.DetailColumns...)
	header = append(header, "score", "norm_score", "true_label")

	return writeCSVWithHeader(w, '\t', header, func(cw *csv.Writer) error {
		for _, res := range table.Results {
			rec := []string{res.Protein, res.GOTerm}
			for _, col := range table.DetailColumns {
				rec = append(rec, strconv.FormatFloat(res.Details[col], 'f', -1, 64))
			}
			rec = append(rec, fmtFloat(res.RawScore), fmtFloat(res.NormScore), strconv.Itoa(res.TrueLabel))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteThresholdReport writes the optimal thresholds of every successful algorithm to path.
func WriteThresholdReport(path string, result *schema.WorkflowResult) error {
	return createFile(path, func(w io.Writer) error {
		return writeThresholdReport(w, result)
	})
}

func writeThresholdReport(w io.Writer, result *schema.WorkflowResult) error {
	for _, r := range result.Results {
		m := r.Metrics
		if _, err := fmt.Fprintf(w, "%s\n", r.Name); err != nil {
			return err
		}
		lines := []struct {
			name  string
			value float64
		}{
			{"Youden's J", m.OptimalThresholdYouden},
			{"F1 Score", m.OptimalThresholdF1},
			{"Min Distance to (0,1)", m.OptimalThresholdDistance},
		}
		for _, l := range lines {
			if _, err := fmt.Fprintf(w, "Optimal Threshold (%s): %s\n", l.name, formatThreshold(l.value)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	for _, f := range result.Failures {
		if _, err := fmt.Fprintf(w, "%s FAILED: %s\n", f.Name, f.Reason); err != nil {
			return err
		}
	}
	return nil
}

// formatThreshold prints thresholds at full precision.
func formatThreshold(v float64) string {
	return createFormatter(-1)(v)
}

// WriteCurves writes <dir>/<algorithm>_roc.tsv and <dir>/<algorithm>_pr.tsv for every result.
func WriteCurves(dir string, results []schema.AlgorithmResult, precision int) error {
	fmtFloat := createFormatter(precision)
	for _, r := range results {
		m := r.Metrics
		roc := filepath.Join(dir, r.Name+ROCCurveSuffix)
		if err := createFile(roc, func(w io.Writer) error {
			return writeCurve(w, []string{"fpr", "tpr", "threshold"}, fmtFloat, m.FPR, m.TPR, m.Thresholds)
		}); err != nil {
			return err
		}
		pr := filepath.Join(dir, r.Name+PRCurveSuffix)
		if err := createFile(pr, func(w io.Writer) error {
			return writeCurve(w, []string{"recall", "precision"}, fmtFloat, m.Recall, m.Precision)
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeCurve writes parallel columns of curve points.
func writeCurve(w io.Writer, header []string, fmtFloat func(float64) string, columns ...[]float64) error {
	if len(columns) == 0 {
		return nil
	}
	n := len(columns[0])
	for _, col := range columns {
		if len(col) != n {
			return fmt.Errorf("curve columns have different lengths: %d vs %d", n, len(col))
		}
	}
	return writeCSVWithHeader(w, '\t', header, func(cw *csv.Writer) error {
		for i := range n {
			rec := make([]string, len(columns))
			for j, col := range columns {
				rec[j] = fmtFloat(col[i])
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
