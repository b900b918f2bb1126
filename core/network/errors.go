package network

import "fmt"

// FormatError reports a malformed input record.
// Line is 1-based and counts the header row; it is 0 when the record did not come from a file.
type FormatError struct {
	Source string
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	switch {
	case e.Source != "" && e.Line > 0:
		return fmt.Sprintf("malformed record in %s at line %d: %s", e.Source, e.Line, e.Reason)
	case e.Line > 0:
		return fmt.Sprintf("malformed record at line %d: %s", e.Line, e.Reason)
	case e.Source != "":
		return fmt.Sprintf("malformed record in %s: %s", e.Source, e.Reason)
	default:
		return "malformed record: " + e.Reason
	}
}
