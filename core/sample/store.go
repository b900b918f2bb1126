package sample

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/annopredict/annopredict/core/network"
	"github.com/annopredict/annopredict/schema"
)

// File names of the persisted dataset.
const (
	PositiveFile = "positive_protein_go_term_pairs.csv"
	NegativeFile = "negative_protein_go_term_pairs.csv"
)

// Save writes both halves of the dataset to dir as tab-delimited tables with a
// "protein go" header.
func Save(dir string, ds *schema.Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory %s: %w", dir, err)
	}
	if err := writePairs(filepath.Join(dir, PositiveFile), ds.Positive); err != nil {
		return err
	}
	return writePairs(filepath.Join(dir, NegativeFile), ds.Negative)
}

// Load reads a dataset written by Save.
func Load(dir string) (*schema.Dataset, error) {
	positive, err := readPairs(filepath.Join(dir, PositiveFile), 1)
	if err != nil {
		return nil, err
	}
	negative, err := readPairs(filepath.Join(dir, NegativeFile), 0)
	if err != nil {
		return nil, err
	}
	ds := &schema.Dataset{Positive: positive, Negative: negative}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset in %s: %w", dir, err)
	}
	return ds, nil
}

func writePairs(path string, pairs []schema.LabeledPair) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	w.Comma = '\t'
	if err := w.Write([]string{"protein", "go"}); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := w.Write([]string{p.Protein, p.GOTerm}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

func readPairs(path string, label int) ([]schema.LabeledPair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rows, err := network.ReadColumns(file, path, []int{0, 1}, '\t')
	if err != nil {
		return nil, err
	}
	pairs := make([]schema.LabeledPair, len(rows))
	for i, row := range rows {
		if row[0] == "" || row[1] == "" {
			return nil, &network.FormatError{Source: path, Line: i + 2, Reason: "empty protein or GO term"}
		}
		pairs[i] = schema.LabeledPair{Protein: row[0], GOTerm: row[1], Label: label}
	}
	return pairs, nil
}
