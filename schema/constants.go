package schema

// Custom string types for type safety.
type (
	// NodeType represents the kind of a network node.
	NodeType string

	// EdgeType represents the kind of a network edge.
	EdgeType string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// MetricKey represents the metric used to rank algorithms.
	MetricKey string

	// ExhaustedPolicy represents what the sampler does when no negative candidate is found.
	ExhaustedPolicy string
)

// All node types supported.
const (
	ProteinNode NodeType = "protein"
	GOTermNode  NodeType = "go_term"
)

// All edge types supported.
const (
	ProteinProteinEdge EdgeType = "protein_protein"
	ProteinGOTermEdge  EdgeType = "protein_go_term"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All ranking metrics supported.
const (
	ROCAUCKey MetricKey = "roc_auc" // default
	PRAUCKey  MetricKey = "pr_auc"
)

// All exhaustion policies supported.
const (
	AbortOnExhausted ExhaustedPolicy = "abort" // default
	SkipOnExhausted  ExhaustedPolicy = "skip"
)

// Algorithm outcome labels stored with run metrics.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidMetricKeys lists all valid ranking metrics.
var ValidMetricKeys = map[MetricKey]struct{}{
	ROCAUCKey: {},
	PRAUCKey:  {},
}

// ValidExhaustedPolicies lists all valid exhaustion policies.
var ValidExhaustedPolicies = map[ExhaustedPolicy]struct{}{
	AbortOnExhausted: {},
	SkipOnExhausted:  {},
}
