package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/orgaudit"
)

const scenario = `Id,firstName,lastName,salary,managerId
1,John,Doe,60000,
2,Jane,Smith,55000,1
3,Bob,Johnson,50000,1
4,Alice,Walker,45000,2
5,Tom,Jackson,40000,3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRoot_Text(t *testing.T) {
	stdout, stderr, err := execute(t, writeFile(t, "employees.csv", scenario))
	require.NoError(t, err)
	assert.Equal(t, "John Doe earns too little: 3000.00 (expected 63000.00..78750.00)\n", stdout)
	assert.Empty(t, stderr)
}

func TestRoot_MaxDepthFlag(t *testing.T) {
	stdout, _, err := execute(t, "--max-depth", "1", "--kind", "reporting_chain_too_long",
		writeFile(t, "employees.csv", scenario))
	require.NoError(t, err)
	assert.Equal(t,
		"Alice Walker has a reporting line too long: 2 (limit 1)\n"+
			"Tom Jackson has a reporting line too long: 2 (limit 1)\n",
		stdout)
}

func TestRoot_JSONL(t *testing.T) {
	stdout, _, err := execute(t, "--format", "jsonl", writeFile(t, "employees.csv", scenario))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "compensation_too_low", got["kind"])
	assert.Equal(t, float64(1), got["subject_id"])
}

func TestRoot_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "findings.csv")
	stdout, _, err := execute(t, "--format", "csv", "--output", out, writeFile(t, "employees.csv", scenario))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,kind,subject_id"))
	assert.Contains(t, lines[1], "compensation_too_low")
}

func TestRoot_ConfigFileWithOverride(t *testing.T) {
	input := writeFile(t, "employees.csv", scenario)
	cfgPath := writeFile(t, "orgaudit.yaml", "source:\n  path: "+input+"\nanalysis:\n  max_chain_depth: 1\noutput:\n  min_severity: medium\n")

	stdout, _, err := execute(t, "--config", cfgPath)
	require.NoError(t, err)
	assert.Empty(t, stdout, "depth 2 over limit 1 is low severity")

	stdout, _, err = execute(t, "--config", cfgPath, "--min-severity", "low")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(stdout, "\n"))
}

func TestRoot_DiagnosticsAndSummary(t *testing.T) {
	input := scenario + "6,Bad\n7,Sam,Lost,100,99\n"
	_, stderr, err := execute(t, "--diagnostics", "--summary", writeFile(t, "employees.csv", input))
	require.NoError(t, err)

	assert.Contains(t, stderr, "malformed_record: line 7:")
	assert.Contains(t, stderr, "dangling_superior: record 7:")
	assert.Contains(t, stderr, "6 records, 1 findings (1 written), 2 diagnostics, health degraded")
}

func TestRoot_MissingSource(t *testing.T) {
	stdout, _, err := execute(t, filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, orgaudit.ErrSourceUnreadable)
	assert.Empty(t, stdout)
}

func TestRoot_InvalidFlags(t *testing.T) {
	input := writeFile(t, "employees.csv", scenario)

	for _, args := range [][]string{
		{"--format", "xml", input},
		{"--min-ratio", "2", "--max-ratio", "1", input},
		{"--where", "depth >", input},
		{"--log-level", "loud", input},
	} {
		_, _, err := execute(t, args...)
		assert.ErrorIs(t, err, orgaudit.ErrInvalidConfig, args)
	}
}

func TestRoot_TooManyArgs(t *testing.T) {
	_, _, err := execute(t, "a.csv", "b.csv")
	assert.Error(t, err)
}
