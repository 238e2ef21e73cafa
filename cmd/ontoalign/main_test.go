package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// smallConfig writes a config that trains quickly.
func smallConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ontoalign.toml")
	content := `
[alignment]
threshold = 0.8
kinds = ["transe", "distmult"]

[embedding]
dim = 8
epochs = 5
learning_rate = 0.01
margin = 1.0
negatives = 1
seed = 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCmd_Definition(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "ontoalign", cmd.Use)

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"align", "inspect", "version"})

	align, _, err := cmd.Find([]string{"align"})
	require.NoError(t, err)
	threshold := align.Flags().Lookup("threshold")
	require.NotNil(t, threshold)
	assert.Equal(t, "0.8", threshold.DefValue)
	for _, name := range []string{"kinds", "workers", "review", "persist", "json"} {
		assert.NotNil(t, align.Flags().Lookup(name), name)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
}

func TestAlignCmd_Report(t *testing.T) {
	out, err := execute(t, "align", "--config", smallConfig(t), "--threshold", "-1",
		"../../testdata/cmt.owl", "../../testdata/ekaw.owl")
	require.NoError(t, err)

	// 7 x 8 pairs all pass: 56 / 7 and 56 / 8.
	assert.Equal(t, "Accuracy: 8.00\nRecall: 7.00\nF-measure: 7.47\n", out)
}

func TestAlignCmd_JSON(t *testing.T) {
	out, err := execute(t, "align", "--config", smallConfig(t), "--json", "--kinds", "transe", "--workers", "3",
		"../../testdata/cmt.owl", "../../testdata/cmt.owl")
	require.NoError(t, err)

	var result struct {
		Threshold float64 `json:"threshold"`
		Source    struct {
			ModelKind string `json:"model_kind"`
			Dim       int    `json:"dim"`
		} `json:"source"`
		Matches []struct {
			Source int `json:"source"`
			Target int `json:"target"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 0.8, result.Threshold)
	assert.Equal(t, "TransE", result.Source.ModelKind)
	assert.Equal(t, 8, result.Source.Dim)
	assert.GreaterOrEqual(t, len(result.Matches), 7)
}

func TestAlignCmd_Errors(t *testing.T) {
	cfg := smallConfig(t)

	_, err := execute(t, "align", "../../testdata/cmt.owl")
	assert.Error(t, err)

	_, err = execute(t, "align", "--config", cfg, "--kinds", "rescal", "../../testdata/cmt.owl", "../../testdata/ekaw.owl")
	assert.ErrorContains(t, err, "unknown embedding model kind")

	_, err = execute(t, "align", "--config", cfg, "--workers", "0", "../../testdata/cmt.owl", "../../testdata/ekaw.owl")
	assert.ErrorContains(t, err, "--workers")

	t.Setenv("MEMGRAPH_URI", "")
	_, err = execute(t, "align", "--config", cfg, "--persist", "../../testdata/cmt.owl", "../../testdata/ekaw.owl")
	assert.ErrorContains(t, err, "--persist")

	_, err = execute(t, "align", "--config", cfg, "../../testdata/cmt.owl", "../../testdata/nope.ttl")
	assert.Error(t, err)
}

func TestInspectCmd(t *testing.T) {
	out, err := execute(t, "inspect", "../../testdata/cmt.owl")
	require.NoError(t, err)

	assert.Contains(t, out, "Classes:     7\n")
	assert.Contains(t, out, "  [0] http://cmt#Document (")
	// The ontology header node and owl:Ontology form their own component.
	assert.Contains(t, out, "Components:  2\n")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev\n")
	assert.Contains(t, out, "Commit:     n/a\n")
}
