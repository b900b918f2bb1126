package network

import (
	"errors"
	"strings"
	"testing"
)

// FuzzReadColumns feeds arbitrary tables to the reader. It must either fail
// or return rows with exactly the requested width.
func FuzzReadColumns(f *testing.F) {
	seeds := []string{
		"h1,h2,h3\na,b,c\n",
		"h\n\"unterminated\n",
		"only header",
		"",
		"a,b\n1\n2,3,4\n",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		rows, err := ReadColumns(strings.NewReader(input), "fuzz", []int{0, 2}, ',')
		if err != nil {
			var formatErr *FormatError
			if !errors.As(err, &formatErr) && !strings.Contains(err.Error(), "failed to read") {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			return
		}
		for _, row := range rows {
			if len(row) != 2 {
				t.Fatalf("row has %d columns, want 2", len(row))
			}
		}
	})
}
