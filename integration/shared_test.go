//go:build basic || database

// Package integration contains end-to-end tests that drive the annopredict binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or with database backends: go test -tags database ./integration
package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedBinaryPath holds the path to a shared annopredict binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the annopredict binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "annopredict-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "annopredict")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build annopredict: %v\n%s", err, out))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// workspace is a temp directory with a small interactome and annotation table.
//
// Proteins A, B and C carry GO1 and D carries GO2; E and F are unannotated.
type workspace struct {
	dir         string
	interactome string
	annotations string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		dir:         dir,
		interactome: filepath.Join(dir, "interactome.tsv"),
		annotations: filepath.Join(dir, "go_annotations.csv"),
	}
	interactome := "name_a\tname_b\tid_a\tid_b\n" +
		"a\tb\tA\tB\n" +
		"b\tc\tB\tC\n" +
		"c\td\tC\tD\n" +
		"d\te\tD\tE\n" +
		"e\tf\tE\tF\n" +
		"a\tc\tA\tC\n"
	annotations := "protein,go_term\nA,GO1\nB,GO1\nC,GO1\nD,GO2\n"
	require.NoError(t, os.WriteFile(ws.interactome, []byte(interactome), 0o644))
	require.NoError(t, os.WriteFile(ws.annotations, []byte(annotations), 0o644))
	return ws
}

// inputArgs are the flags that point the CLI at the workspace tables.
func (ws *workspace) inputArgs() []string {
	return []string{
		"--interactome", ws.interactome,
		"--annotations", ws.annotations,
		"--interactome-columns", "0,1,2,3",
		"--annotation-columns", "0,1",
	}
}

// pathArgs keep every output of the CLI inside the workspace.
func (ws *workspace) pathArgs() []string {
	return []string{
		"--dataset-dir", filepath.Join(ws.dir, "dataset"),
		"--output-dir", filepath.Join(ws.dir, "data"),
		"--progress", "no",
		"--color", "no",
	}
}

// run executes the binary in the workspace and returns its stdout.
// HOME points at the workspace so default SQLite files stay inside it.
func (ws *workspace) run(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = ws.dir
	cmd.Env = append(os.Environ(), "HOME="+ws.dir)
	cmd.Env = append(cmd.Env, env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), err
}
