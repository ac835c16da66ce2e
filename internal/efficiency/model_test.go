package efficiency

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDecodeConfigReplacesMapsWhole(t *testing.T) {
	doc := `{"phase_allocation":{"Build":50,"Test":50},"risk_weights":{"Test":2},"cost_avoidance_phases":[]}`
	cfg, err := DecodeConfig(json.NewDecoder(strings.NewReader(doc)).Decode)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"Build": 50, "Test": 50}, cfg.PhaseAllocation)
	assert.Equal(t, map[string]float64{"Test": 2}, cfg.RiskWeights)
	assert.Empty(t, cfg.CostAvoidancePhases)
	assert.Empty(t, cfg.InitiativeMaturity)
	assert.Equal(t, DefaultTotalHours, cfg.TotalHours)
	assert.Equal(t, DefaultCostAvoidanceFraction, cfg.CostAvoidanceFraction)

	issues, err := defaultEngine(t).Validate(cfg)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestDecodeConfigSparseMapsCompute(t *testing.T) {
	doc := "phase_allocation: {Build: 50, Test: 50}\nrisk_weights: {Test: 2}\ninitiative_maturity: {Automated Testing: 100}\n"
	cfg, err := DecodeConfig(yaml.NewDecoder(strings.NewReader(doc)).Decode)
	require.NoError(t, err)

	res, err := defaultEngine(t).Compute(cfg)
	require.NoError(t, err)
	assert.Zero(t, res.PerPhase[0].BaselineHours, "Discover is unallocated")
	assert.InDelta(t, float64(DefaultTotalHours)/2, res.PerPhase[4].BaselineHours, tol)
	assert.Equal(t, 2.0, res.PerPhase[4].RiskWeight)
	assert.Equal(t, 1.0, res.PerPhase[3].RiskWeight, "missing weight counts as 1")
}

func TestDecodeConfigEmptyDocumentIsDefault(t *testing.T) {
	cfg, err := DecodeConfig(yaml.NewDecoder(strings.NewReader("")).Decode)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = DecodeConfig(json.NewDecoder(strings.NewReader(`{"total_hours": 900}`)).Decode)
	require.NoError(t, err)
	want := DefaultConfig()
	want.TotalHours = 900
	assert.Equal(t, want, cfg)
}
