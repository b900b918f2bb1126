package sample

import "fmt"

// SampleSizeError reports a sample size the annotation population cannot satisfy.
type SampleSizeError struct {
	Requested int
	Available int
}

func (e *SampleSizeError) Error() string {
	if e.Requested <= 0 {
		return fmt.Sprintf("sample size must be positive (requested %d)", e.Requested)
	}
	return fmt.Sprintf("sample size %d exceeds the %d available annotation pairs", e.Requested, e.Available)
}

// ExhaustedCandidatesError reports that no negative protein was found for a GO term
// within the retry budget.
type ExhaustedCandidatesError struct {
	GOTerm   string
	Protein  string
	Attempts int
}

func (e *ExhaustedCandidatesError) Error() string {
	return fmt.Sprintf("no negative protein found for GO term %s (positive %s) after %d attempts", e.GOTerm, e.Protein, e.Attempts)
}
