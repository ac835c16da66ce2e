package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaultsRoundTripsThroughCompute(t *testing.T) {
	out, _, err := run(t, "", "defaults")
	require.NoError(t, err)

	var cfg efficiency.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, efficiency.DefaultTotalHours, cfg.TotalHours)
	assert.Len(t, cfg.InitiativeMaturity, 7)

	out, _, err = run(t, out, "compute", "-f", "-", "-o", "json")
	require.NoError(t, err)
	var res efficiency.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 1459, res.TotalHoursSaved, 1e-9)
}

func TestTablesCommand(t *testing.T) {
	out, _, err := run(t, "", "tables")
	require.NoError(t, err)

	tables, err := efficiency.LoadTables(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, efficiency.MustDefaultTables().Matrix().Names(), tables.Matrix().Names())
}

func TestTablesFlag(t *testing.T) {
	path := writeFile(t, "tables.yaml", `
initiatives:
  - name: Solo
    deltas: {Discover: -10, Plan: 0, Design: 0, Build: 0, Test: 0, Deploy: 0, Post Go-Live: 0}
    buckets: {methodology: 100, ootb: 0, ai: 0}
roles:
  - name: Everyone
    group: Pod
    hourly_rate: 90
    hours: {Discover: 1, Plan: 1, Design: 1, Build: 1, Test: 1, Deploy: 1, Post Go-Live: 1}
`)
	cfg := writeFile(t, "cfg.yaml", "initiative_maturity: {Solo: 100}\n")

	out, _, err := run(t, "", "compute", "--tables", path, "-f", cfg, "-o", "json")
	require.NoError(t, err)
	var res efficiency.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 10, res.TotalHoursSaved, 1e-9)
	require.Len(t, res.PerRole, 1)
	assert.InDelta(t, 900, res.PerRole[0].CostSavings, 1e-9)
}

func TestValidateCommand(t *testing.T) {
	good := writeFile(t, "good.yaml", "initiative_maturity: {EDCC: 40}\n")
	out, _, err := run(t, "", "validate", "-f", good)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	bad := writeFile(t, "bad.yaml", "initiative_maturity: {EDCC: 140, Nope: 1}\n")
	out, _, err = run(t, "", "validate", "-f", bad)
	assert.EqualError(t, err, "2 issue(s)")
	assert.Contains(t, out, "MaturityOutOfRangeError: initiative_maturity[EDCC]")
	assert.Contains(t, out, "UnknownInitiativeError: initiative_maturity[Nope]")

	typo := writeFile(t, "typo.yaml", "maturity: {EDCC: 40}\n")
	_, _, err = run(t, "", "validate", "-f", typo)
	assert.ErrorContains(t, err, "decode")
}

func TestComputeAcceptsSparseAllocation(t *testing.T) {
	cfg := writeFile(t, "sparse.yaml", "phase_allocation: {Build: 50, Test: 50}\nrisk_weights: {Test: 2}\n")

	out, _, err := run(t, "", "validate", "-f", cfg)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, _, err = run(t, "", "compute", "-f", cfg, "-o", "json")
	require.NoError(t, err)
	var res efficiency.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Zero(t, res.PerPhase[0].BaselineHours)
	assert.Equal(t, 2.0, res.PerPhase[4].RiskWeight)
	assert.Equal(t, 1.0, res.PerPhase[3].RiskWeight)
}

func TestComputeRefusesInvalidConfig(t *testing.T) {
	_, stderr, err := run(t, "phase_allocation: {Test: 30}\n", "compute", "-f", "-")
	assert.ErrorIs(t, err, efficiency.ErrInvalidConfig)
	assert.Contains(t, stderr, "PhaseAllocationSumError")
}

func TestSweepCommand(t *testing.T) {
	out, _, err := run(t, "{}\n", "sweep", "-f", "-", "--initiative", "Automated Testing", "--steps", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "hours_saved")
	assert.Contains(t, lines[2], "305.0")
	assert.Contains(t, lines[3], "610.0")

	_, _, err = run(t, "{}\n", "sweep", "-f", "-", "--initiative", "Nope")
	assert.ErrorContains(t, err, "unknown initiative")
}
