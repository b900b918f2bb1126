package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// summaryRow is one name/value line of a summary table.
type summaryRow struct {
	name  string
	value int
}

func networkRows(s schema.NetworkSummary) []summaryRow {
	return []summaryRow{
		{"protein_protein_edges", s.ProteinProteinEdges},
		{"protein_go_term_edges", s.ProteinGOTermEdges},
		{"protein_nodes", s.ProteinNodes},
		{"go_term_nodes", s.GOTermNodes},
		{"total_edges", s.TotalEdges},
		{"total_nodes", s.TotalNodes},
		{"self_loops_skipped", s.SelfLoopsSkipped},
	}
}

// PrintNetworkSummary outputs the node and edge counts of a built network.
func PrintNetworkSummary(summary schema.NetworkSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, networkRows(summary))
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeSummaryTable(w, networkRows(summary)); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Built network in %v, saved to %s\n", duration.Round(time.Millisecond), cfg.GraphFile)
			return err
		}, "Wrote table")
	}
}

// datasetSummary is the serialized form of a sampled dataset summary.
type datasetSummary struct {
	Directory     string `json:"directory"`
	PositivePairs int    `json:"positive_pairs"`
	NegativePairs int    `json:"negative_pairs"`
	GOTerms       int    `json:"go_terms"`
	Proteins      int    `json:"proteins"`
}

func summarizeDataset(ds *schema.Dataset, dir string) datasetSummary {
	terms := make(map[string]struct{})
	proteins := make(map[string]struct{})
	for _, side := range [][]schema.LabeledPair{ds.Positive, ds.Negative} {
		for _, p := range side {
			terms[p.GOTerm] = struct{}{}
			proteins[p.Protein] = struct{}{}
		}
	}
	return datasetSummary{
		Directory:     dir,
		PositivePairs: len(ds.Positive),
		NegativePairs: len(ds.Negative),
		GOTerms:       len(terms),
		Proteins:      len(proteins),
	}
}

// PrintDatasetSummary outputs the size of a sampled dataset and where it was saved.
func PrintDatasetSummary(ds *schema.Dataset, dir string, cfg *contract.Config, duration time.Duration) error {
	s := summarizeDataset(ds, dir)
	rows := []summaryRow{
		{"positive_pairs", s.PositivePairs},
		{"negative_pairs", s.NegativePairs},
		{"go_terms", s.GOTerms},
		{"proteins", s.Proteins},
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, s)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, rows)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeSummaryTable(w, rows); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Sampled dataset in %v, saved to %s\n", duration.Round(time.Millisecond), dir)
			return err
		}, "Wrote table")
	}
}

func writeSummaryTable(w io.Writer, rows []summaryRow) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Count"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.name, strconv.Itoa(r.value)}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSummaryCSV(w io.Writer, rows []summaryRow) error {
	return writeCSVWithHeader(w, ',', []string{"metric", "count"}, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{r.name, strconv.Itoa(r.value)}); err != nil {
				return err
			}
		}
		return nil
	})
}
