package contract

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/annopredict/annopredict/schema"
)

// Default values for configuration.
const (
	DefaultSampleSize     = 10000
	DefaultSeed           = 1
	DefaultMaxRetries     = 10000
	DefaultPrecision      = 4
	MaxPrecision          = 6
	DefaultDatasetDir     = "output/dataset"
	DefaultOutputDir      = "output/data"
	DefaultLogLevel       = "warn"
	DefaultAlgorithm      = "overlapping_neighbors"
	DefaultGraphFile      = "graph.json"
	DefaultThresholdsFile = "threshold_results.txt"
)

// Default column layouts and delimiters of the input tables.
const (
	DefaultInteractomeColumns   = "0,1,4,5"
	DefaultAnnotationColumns    = "0,2"
	DefaultInteractomeDelimiter = "tab"
	DefaultAnnotationDelimiter  = "comma"
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for network building, sampling and evaluation.
// This struct is the "final, validated" config.
type Config struct {
	InteractomePath      string
	AnnotationPath       string
	InteractomeColumns   []int // nameA, nameB, idA, idB
	AnnotationColumns    []int // protein, go term
	InteractomeDelimiter rune
	AnnotationDelimiter  rune

	DatasetDir string
	OutputDir  string
	GraphFile  string

	SampleSize  int
	Seed        int64
	MaxRetries  int
	OnExhausted schema.ExhaustedPolicy

	Algorithms      []string
	RankBy          schema.MetricKey
	WriteThresholds bool
	WriteCurves     bool

	Precision  int
	Output     schema.OutputMode
	OutputFile string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	LogLevel     string
	UseColors    bool // Enable colored labels in table output
	ShowProgress bool // Draw progress bars on interactive terminals
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Interactome          string `mapstructure:"interactome"`
	Annotations          string `mapstructure:"annotations"`
	InteractomeColumns   string `mapstructure:"interactome-columns"`
	AnnotationColumns    string `mapstructure:"annotation-columns"`
	InteractomeDelimiter string `mapstructure:"interactome-delimiter"`
	AnnotationDelimiter  string `mapstructure:"annotation-delimiter"`
	DatasetDir           string `mapstructure:"dataset-dir"`
	OutputDir            string `mapstructure:"output-dir"`
	GraphFile            string `mapstructure:"graph-file"`
	Precision            int    `mapstructure:"precision"`
	Output               string `mapstructure:"output"`
	OutputFile           string `mapstructure:"output-file"`
	CacheBackend         string `mapstructure:"cache-backend"`
	CacheDBConnect       string `mapstructure:"cache-db-connect"`
	RunsBackend          string `mapstructure:"runs-backend"`
	RunsDBConnect        string `mapstructure:"runs-db-connect"`
	LogLevel             string `mapstructure:"log-level"`
	Color                string `mapstructure:"color"`
	Progress             string `mapstructure:"progress"`

	// --- Fields from sampleCmd.Flags() and runCmd.Flags() ---
	SampleSize  int    `mapstructure:"sample-size"`
	Seed        int64  `mapstructure:"seed"`
	MaxRetries  int    `mapstructure:"max-retries"`
	OnExhausted string `mapstructure:"on-exhausted"`

	// --- Fields from evaluateCmd.Flags() and runCmd.Flags() ---
	Algorithms string `mapstructure:"algorithms"`
	RankBy     string `mapstructure:"rank-by"`
	Thresholds string `mapstructure:"thresholds"`
	Curves     string `mapstructure:"curves"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.InteractomeColumns = slices.Clone(c.InteractomeColumns)
	clone.AnnotationColumns = slices.Clone(c.AnnotationColumns)
	clone.Algorithms = slices.Clone(c.Algorithms)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processInputTables(cfg, input); err != nil {
		return err
	}
	if err := processSampling(cfg, input); err != nil {
		return err
	}
	if err := processEvaluation(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs processes and validates the output-related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	progress, err := ParseBoolString(input.Progress)
	if err != nil {
		return fmt.Errorf("invalid --progress value: %w", err)
	}
	cfg.ShowProgress = progress

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required when using parquet output")
	}
	return nil
}

// processInputTables resolves the input paths, column layouts and delimiters.
func processInputTables(cfg *Config, input *ConfigRawInput) error {
	cfg.InteractomePath = strings.TrimSpace(input.Interactome)
	cfg.AnnotationPath = strings.TrimSpace(input.Annotations)

	var err error
	if cfg.InteractomeColumns, err = ParseColumns(input.InteractomeColumns, 4); err != nil {
		return fmt.Errorf("invalid --interactome-columns: %w", err)
	}
	if cfg.AnnotationColumns, err = ParseColumns(input.AnnotationColumns, 2); err != nil {
		return fmt.Errorf("invalid --annotation-columns: %w", err)
	}
	if cfg.InteractomeDelimiter, err = ParseDelimiter(input.InteractomeDelimiter); err != nil {
		return fmt.Errorf("invalid --interactome-delimiter: %w", err)
	}
	if cfg.AnnotationDelimiter, err = ParseDelimiter(input.AnnotationDelimiter); err != nil {
		return fmt.Errorf("invalid --annotation-delimiter: %w", err)
	}

	cfg.DatasetDir = strings.TrimSpace(input.DatasetDir)
	if cfg.DatasetDir == "" {
		cfg.DatasetDir = DefaultDatasetDir
	}
	cfg.OutputDir = strings.TrimSpace(input.OutputDir)
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	cfg.GraphFile = strings.TrimSpace(input.GraphFile)
	if cfg.GraphFile == "" {
		cfg.GraphFile = filepath.Join(cfg.DatasetDir, DefaultGraphFile)
	}
	return nil
}

// processSampling validates the sampler parameters.
func processSampling(cfg *Config, input *ConfigRawInput) error {
	if input.SampleSize <= 0 {
		return fmt.Errorf("sample-size must be greater than 0 (received %d)", input.SampleSize)
	}
	cfg.SampleSize = input.SampleSize
	cfg.Seed = input.Seed

	if input.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0 (received %d)", input.MaxRetries)
	}
	cfg.MaxRetries = input.MaxRetries

	cfg.OnExhausted = schema.ExhaustedPolicy(strings.ToLower(input.OnExhausted))
	if cfg.OnExhausted == "" {
		cfg.OnExhausted = schema.AbortOnExhausted
	}
	if _, ok := schema.ValidExhaustedPolicies[cfg.OnExhausted]; !ok {
		return fmt.Errorf("invalid on-exhausted policy '%s'. must be abort, skip", input.OnExhausted)
	}
	return nil
}

// processEvaluation validates the algorithm list and ranking options.
func processEvaluation(cfg *Config, input *ConfigRawInput) error {
	cfg.Algorithms = nil
	seen := make(map[string]bool)
	for name := range strings.SplitSeq(input.Algorithms, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cfg.Algorithms = append(cfg.Algorithms, name)
	}
	if len(cfg.Algorithms) == 0 {
		return fmt.Errorf("at least one algorithm must be specified via --algorithms")
	}

	cfg.RankBy = schema.MetricKey(strings.ToLower(input.RankBy))
	if cfg.RankBy == "" {
		cfg.RankBy = schema.ROCAUCKey
	}
	if _, ok := schema.ValidMetricKeys[cfg.RankBy]; !ok {
		return fmt.Errorf("invalid rank-by metric '%s'. must be roc_auc, pr_auc", input.RankBy)
	}

	thresholds, err := ParseBoolString(input.Thresholds)
	if err != nil {
		return fmt.Errorf("invalid --thresholds value: %w", err)
	}
	cfg.WriteThresholds = thresholds

	curves, err := ParseBoolString(input.Curves)
	if err != nil {
		return fmt.Errorf("invalid --curves value: %w", err)
	}
	cfg.WriteCurves = curves
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates graph cache and run tracking backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// SQLite stores must live in separate files
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseColumns parses a comma-separated list of zero-based column indices.
// The list must hold exactly want entries.
func ParseColumns(s string, want int) ([]int, error) {
	var cols []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("column %q is not an integer", part)
		}
		if idx < 0 {
			return nil, fmt.Errorf("column %d must not be negative", idx)
		}
		cols = append(cols, idx)
	}
	if len(cols) != want {
		return nil, fmt.Errorf("expected %d columns, got %d", want, len(cols))
	}
	return cols, nil
}

// ParseDelimiter parses a delimiter name ("tab", "comma", "semicolon", "space", "pipe")
// or a literal single character.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`, "\t":
		return '\t', nil
	case "comma", ",":
		return ',', nil
	case "semicolon", ";":
		return ';', nil
	case "space", " ":
		return ' ', nil
	case "pipe", "|":
		return '|', nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return 0, fmt.Errorf("delimiter %q is not allowed", s)
		}
		return r, nil
	}
	return 0, fmt.Errorf("unknown delimiter %q (expected tab, comma, semicolon, space, pipe or a single character)", s)
}
