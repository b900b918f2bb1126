package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/internal/parquet"
	"github.com/annopredict/annopredict/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRanking outputs the ranked algorithm results, dispatching based on the output format configured.
// Failed algorithms are reported after the ranking.
func PrintRanking(ranked []schema.AlgorithmResult, failures []schema.AlgorithmFailure, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteRankingJSON(w, ranked, failures, cfg.RankBy)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingCSV(w, ranked, cfg.RankBy, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		rows := parquet.ConvertRanking(ranked, contract.GetPlainLabel)
		if err := parquet.WriteRankingParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingTable(w, ranked, failures, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// rankingLabel returns the quality label of a result under the ranking metric.
func rankingLabel(r schema.AlgorithmResult, key schema.MetricKey, colored bool) string {
	v := r.Metrics.Metric(key)
	if colored {
		return contract.GetColorLabel(v)
	}
	return contract.GetPlainLabel(v)
}

// writeRankingTable generates and writes the human-readable table.
func writeRankingTable(w io.Writer, ranked []schema.AlgorithmResult, failures []schema.AlgorithmFailure, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Algorithm", "ROC AUC", "PR AUC", "Label", "Youden", "F1", "Distance"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		m := r.Metrics
		data = append(data, []string{
			strconv.Itoa(i + 1),
			r.Name,
			fmtFloat(m.ROCAUC),
			fmtFloat(m.PRAUC),
			rankingLabel(r, cfg.RankBy, cfg.UseColors),
			fmtFloat(m.OptimalThresholdYouden),
			fmtFloat(m.OptimalThresholdF1),
			fmtFloat(m.OptimalThresholdDistance),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, f := range failures {
		if _, err := fmt.Fprintf(w, "%s FAILED: %s\n", f.Name, f.Reason); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Evaluated %d of %d algorithms in %v, ranked by %s\n",
		len(ranked), len(ranked)+len(failures), duration.Round(time.Millisecond), cfg.RankBy)
	return err
}

// writeRankingCSV writes the ranking in CSV format.
func writeRankingCSV(w io.Writer, ranked []schema.AlgorithmResult, key schema.MetricKey, fmtFloat func(float64) string) error {
	header := []string{"rank", "algorithm", "roc_auc", "pr_auc", "label", "threshold_youden", "threshold_f1", "threshold_distance"}
	return writeCSVWithHeader(w, ',', header, func(cw *csv.Writer) error {
		for i, r := range ranked {
			m := r.Metrics
			rec := []string{
				strconv.Itoa(i + 1),
				r.Name,
				fmtFloat(m.ROCAUC),
				fmtFloat(m.PRAUC),
				rankingLabel(r, key, false),
				fmtFloat(m.OptimalThresholdYouden),
				fmtFloat(m.OptimalThresholdF1),
				fmtFloat(m.OptimalThresholdDistance),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteRankingJSON writes the ranking and the failures in JSON format.
func WriteRankingJSON(w io.Writer, ranked []schema.AlgorithmResult, failures []schema.AlgorithmFailure, key schema.MetricKey) error {
	type jsonRanking struct {
		Rank              int     `json:"rank"`
		Algorithm         string  `json:"algorithm"`
		ROCAUC            float64 `json:"roc_auc"`
		PRAUC             float64 `json:"pr_auc"`
		Label             string  `json:"label"`
		ThresholdYouden   any     `json:"threshold_youden"`
		ThresholdF1       any     `json:"threshold_f1"`
		ThresholdDistance any     `json:"threshold_distance"`
	}
	type jsonReport struct {
		RankBy   schema.MetricKey          `json:"rank_by"`
		Ranking  []jsonRanking             `json:"ranking"`
		Failures []schema.AlgorithmFailure `json:"failures"`
	}

	report := jsonReport{RankBy: key, Ranking: make([]jsonRanking, len(ranked)), Failures: failures}
	if report.Failures == nil {
		report.Failures = []schema.AlgorithmFailure{}
	}
	for i, r := range ranked {
		m := r.Metrics
		report.Ranking[i] = jsonRanking{
			Rank:              i + 1,
			Algorithm:         r.Name,
			ROCAUC:            m.ROCAUC,
			PRAUC:             m.PRAUC,
			Label:             rankingLabel(r, key, false),
			ThresholdYouden:   schema.JSONFloat(m.OptimalThresholdYouden),
			ThresholdF1:       schema.JSONFloat(m.OptimalThresholdF1),
			ThresholdDistance: schema.JSONFloat(m.OptimalThresholdDistance),
		}
	}
	return writeJSON(w, report)
}
