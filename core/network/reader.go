package network

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/annopredict/annopredict/schema"
)

// ReadColumns reads delimited records from r and returns the requested columns
// of every row. The first row is a header and is always skipped.
// A row that lacks one of the columns yields a FormatError naming its line.
func ReadColumns(r io.Reader, source string, columns []int, delimiter rune) ([][]string, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns requested from %s", source)
	}
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var rows [][]string
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &FormatError{Source: source, Line: parseErr.Line, Reason: parseErr.Err.Error()}
			}
			return nil, fmt.Errorf("failed to read %s: %w", source, err)
		}
		if header {
			header = false
			continue
		}

		line, _ := reader.FieldPos(0)
		row := make([]string, len(columns))
		for i, col := range columns {
			if col >= len(record) {
				return nil, &FormatError{
					Source: source,
					Line:   line,
					Reason: fmt.Sprintf("expected column %d but row has %d columns", col, len(record)),
				}
			}
			row[i] = strings.TrimSpace(record[col])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadInteractions loads interaction records from a delimited file.
// columns holds the positions of nameA, nameB, idA and idB.
func ReadInteractions(path string, columns []int, delimiter rune) ([]schema.Interaction, error) {
	if len(columns) != 4 {
		return nil, fmt.Errorf("interactions need 4 columns, got %d", len(columns))
	}
	rows, err := readFile(path, columns, delimiter)
	if err != nil {
		return nil, err
	}
	records := make([]schema.Interaction, 0, len(rows))
	for i, row := range rows {
		if row[2] == "" || row[3] == "" {
			return nil, &FormatError{Source: path, Reason: fmt.Sprintf("row %d has an empty protein identifier", i+1)}
		}
		records = append(records, schema.Interaction{NameA: row[0], NameB: row[1], IDA: row[2], IDB: row[3]})
	}
	return records, nil
}

// ReadAnnotations loads protein to GO term annotations from a delimited file.
// columns holds the positions of the protein and the GO term.
func ReadAnnotations(path string, columns []int, delimiter rune) ([]schema.Annotation, error) {
	if len(columns) != 2 {
		return nil, fmt.Errorf("annotations need 2 columns, got %d", len(columns))
	}
	rows, err := readFile(path, columns, delimiter)
	if err != nil {
		return nil, err
	}
	records := make([]schema.Annotation, 0, len(rows))
	for i, row := range rows {
		if row[0] == "" || row[1] == "" {
			return nil, &FormatError{Source: path, Reason: fmt.Sprintf("row %d has an empty protein or GO term identifier", i+1)}
		}
		records = append(records, schema.Annotation{Protein: row[0], GOTerm: row[1]})
	}
	return records, nil
}

// AnnotationPairs converts annotations into the positive population for sampling.
// Duplicate rows stay as separate entries.
func AnnotationPairs(annotations []schema.Annotation) []schema.LabeledPair {
	pairs := make([]schema.LabeledPair, len(annotations))
	for i, a := range annotations {
		pairs[i] = schema.LabeledPair{Protein: a.Protein, GOTerm: a.GOTerm, Label: 1}
	}
	return pairs
}

func readFile(path string, columns []int, delimiter rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	return ReadColumns(file, path, columns, delimiter)
}
