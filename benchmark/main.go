// Package main provides a performance benchmarking tool for the annopredict CLI.
// It generates synthetic interactomes of increasing size, measures the network and
// run commands on each, running every test multiple times, treating the first
// successful run as cold and averaging the rest as warm, and writes a CSV summary.
//
// Prerequisites:
// - annopredict binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic datasets are generated
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// DatasetSize describes one synthetic network.
type DatasetSize struct {
	Name         string
	Proteins     int
	Interactions int
	GOTerms      int
	Annotations  int
	SampleSize   int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Algorithms  string
	Datasets    []DatasetSize
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Algorithms:  "overlapping_neighbors,protein_degree,random",
		Datasets: []DatasetSize{
			{Name: "small", Proteins: 1000, Interactions: 5000, GOTerms: 100, Annotations: 3000, SampleSize: 500},
			{Name: "medium", Proteins: 10000, Interactions: 100000, GOTerms: 1000, Annotations: 50000, SampleSize: 5000},
			{Name: "large", Proteins: 20000, Interactions: 800000, GOTerms: 5000, Annotations: 200000, SampleSize: 10000},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the annopredict binary exists and the work dir is writable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("annopredict"); err != nil {
		return fmt.Errorf("annopredict binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateDataset writes a random interactome and annotation table for size.
// The same size always produces the same files.
func generateDataset(dir string, size DatasetSize) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	rnd := rand.New(rand.NewPCG(uint64(size.Proteins), uint64(size.Interactions)))
	protein := func() string { return "P" + strconv.Itoa(rnd.IntN(size.Proteins)) }

	interactome := [][]string{{"name_a", "name_b", "id_a", "id_b"}}
	for range size.Interactions {
		a, b := protein(), protein()
		interactome = append(interactome, []string{strings.ToLower(a), strings.ToLower(b), a, b})
	}
	if err := writeTable(filepath.Join(dir, "interactome.tsv"), '\t', interactome); err != nil {
		return err
	}

	annotations := [][]string{{"protein", "go_term"}}
	for range size.Annotations {
		annotations = append(annotations, []string{protein(), fmt.Sprintf("GO:%07d", rnd.IntN(size.GOTerms))})
	}
	return writeTable(filepath.Join(dir, "go_annotations.csv"), ',', annotations)
}

func writeTable(path string, comma rune, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	writer.Comma = comma
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.Datasets {
		dir := filepath.Join(config.WorkDir, size.Name)
		fmt.Printf("Generating %s dataset (%d proteins, %d interactions)\n", size.Name, size.Proteins, size.Interactions)
		if err := generateDataset(dir, size); err != nil {
			fmt.Printf("Warning: failed to generate %s: %v\n", size.Name, err)
			continue
		}

		inputs := []string{
			"--interactome", filepath.Join(dir, "interactome.tsv"),
			"--annotations", filepath.Join(dir, "go_annotations.csv"),
			"--interactome-columns", "0,1,2,3",
			"--annotation-columns", "0,1",
			"--dataset-dir", filepath.Join(dir, "dataset"),
			"--output-dir", filepath.Join(dir, "data"),
			"--progress", "no",
		}

		results = append(results, runBenchmarkSuite(config, size.Name, dir, "network", "network build", inputs))

		runArgs := append(inputs, "--sample-size", strconv.Itoa(size.SampleSize), "--algorithms", config.Algorithms)
		results = append(results, runBenchmarkSuite(config, size.Name, dir, "run", "full pipeline", runArgs))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, dir, command, description string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, dataset)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, dir, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs, starting from an empty cache
	clearCache(dir)
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// clearCache removes the SQLite graph cache of the dataset directory.
func clearCache(dir string) {
	cmd := exec.Command("annopredict", "cache", "clear")
	cmd.Env = append(os.Environ(), "HOME="+dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

// runBenchmark executes an annopredict command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, dir, command string, extraArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command, "--cache-backend", cacheBackend}, extraArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("annopredict", args...)
		cmd.Dir = dir
		// Keep the SQLite cache next to the dataset
		cmd.Env = append(os.Environ(), "HOME="+dir)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.Output()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	completionPhrase := "Evaluated"
	if command == "network" {
		completionPhrase = "Built network in"
	}
	return strings.Contains(string(output), completionPhrase)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/annopredict_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "network", "Network Build:")
	printCommandSummary(results, "run", "Full Pipeline:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
