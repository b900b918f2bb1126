package metrics

import "fmt"

// UndefinedMetricError reports label sets for which ROC and PR curves do not exist.
type UndefinedMetricError struct {
	Positives int
	Negatives int
}

func (e *UndefinedMetricError) Error() string {
	return fmt.Sprintf("metrics are undefined for %d positive and %d negative labels: both classes are required", e.Positives, e.Negatives)
}
