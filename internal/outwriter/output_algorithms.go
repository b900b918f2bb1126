package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/annopredict/annopredict/internal/contract"
	"github.com/annopredict/annopredict/schema"
)

// PrintAlgorithms displays the registered scoring algorithms.
// This is a static display that does not read any input.
func PrintAlgorithms(infos []schema.AlgorithmInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, infos)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printAlgorithmsCSV(w, infos)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printAlgorithmsText(w, infos)
		}, "Wrote text")
	}
}

// printAlgorithmsText displays the algorithms in human-readable text format.
func printAlgorithmsText(w io.Writer, infos []schema.AlgorithmInfo) error {
	if _, err := fmt.Fprintf(w, "🧬 Scoring Algorithms\n====================\n\n"); err != nil {
		return err
	}
	for _, info := range infos {
		if _, err := fmt.Fprintf(w, "%s: %s\n", info.Name, info.Purpose); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "   Formula: %s\n", info.Formula); err != nil {
			return err
		}
		for _, d := range info.Details {
			if _, err := fmt.Fprintf(w, "   - %s\n", d); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Scores are min-max normalized per algorithm before metrics are computed.\n")
	return err
}

// printAlgorithmsCSV writes one row per algorithm. Details are joined with "; ".
func printAlgorithmsCSV(w io.Writer, infos []schema.AlgorithmInfo) error {
	return writeCSVWithHeader(w, ',', []string{"name", "purpose", "formula", "details"}, func(cw *csv.Writer) error {
		for _, info := range infos {
			if err := cw.Write([]string{info.Name, info.Purpose, info.Formula, strings.Join(info.Details, "; ")}); err != nil {
				return err
			}
		}
		return nil
	})
}
