package efficiency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(issues []Issue) []IssueKind {
	out := make([]IssueKind, len(issues))
	for i, is := range issues {
		out[i] = is.Kind
	}
	return out
}

func TestValidateDefaultConfigIsClean(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.InitiativeMaturity = allAt(50, e.Tables().Matrix().Names()...)

	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidatePhaseAllocationSumsTo99(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.PhaseAllocation[PhaseDiscover] = 4

	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, PhaseAllocationSumError, issues[0].Kind)
	assert.Equal(t, "phase_allocation", issues[0].Field)

	_, err = e.Compute(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidateToleratesFloatingPointAllocation(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.PhaseAllocation = map[string]float64{
		PhaseDiscover: 100.0 / 3, PhasePlan: 100.0 / 3, PhaseDesign: 100.0 / 3,
	}
	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateNegativeAllocation(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.PhaseAllocation[PhaseDiscover] = -5
	cfg.PhaseAllocation[PhasePlan] = 20

	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "phase_allocation[Discover]", issues[0].Field)
}

func TestValidateMaturityOutOfRange(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.InitiativeMaturity = map[string]float64{"EDCC": 101, "AI/Automation": -1, "N2S CARM": 100}

	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, []IssueKind{MaturityOutOfRangeError, MaturityOutOfRangeError}, kinds(issues))
	assert.Equal(t, "initiative_maturity[AI/Automation]", issues[0].Field)
	assert.Equal(t, "initiative_maturity[EDCC]", issues[1].Field)
}

func TestValidateBucketWeights(t *testing.T) {
	f := smallTablesFile()
	f.Initiatives[1].Buckets = BucketWeights{Methodology: 50, OOTB: 50, AI: 10}
	e := NewEngine(mustTables(t, f))

	cfg := DefaultConfig()
	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, BucketWeightSumError, issues[0].Kind)
	assert.Equal(t, "buckets[Integration Code Reuse]", issues[0].Field)
}

func TestValidateUnknownNames(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.PhaseAllocation["Hypercare"] = 0
	cfg.RiskWeights["UAT"] = 2
	cfg.CostAvoidancePhases = append(cfg.CostAvoidancePhases, "Warranty")
	cfg.InitiativeMaturity = map[string]float64{"Low Code": 20}

	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	assert.Equal(t, []IssueKind{
		UnknownPhaseError, UnknownPhaseError, UnknownPhaseError, UnknownInitiativeError,
	}, kinds(issues))
	assert.Equal(t, "phase_allocation[Hypercare]", issues[0].Field)
	assert.Equal(t, "risk_weights[UAT]", issues[1].Field)
	assert.Equal(t, "cost_avoidance_phases[Warranty]", issues[2].Field)
	assert.Equal(t, "initiative_maturity[Low Code]", issues[3].Field)
}

func TestValidateRates(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.BlendedRate = -1
	cfg.CostAvoidanceFraction = 1.5
	cfg.ReductionCeilingFraction = -0.1

	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	require.Len(t, issues, 3)
	for _, is := range issues {
		assert.Equal(t, RateOutOfRangeError, is.Kind)
	}
	assert.Equal(t, "blended_rate", issues[0].Field)

	cfg = DefaultConfig()
	cfg.BlendedRate = MaxBlendedRate + 1
	issues, err = e.Validate(cfg)
	require.NoError(t, err)
	assert.Equal(t, []IssueKind{RateOutOfRangeError}, kinds(issues))
}

func TestValidateReportsChecksInOrder(t *testing.T) {
	e := defaultEngine(t)
	cfg := DefaultConfig()
	cfg.BlendedRate = -10
	cfg.InitiativeMaturity = map[string]float64{"Nope": 10, "EDCC": 300}
	cfg.PhaseAllocation[PhaseBuild] = 30

	issues, err := e.Validate(cfg)
	require.NoError(t, err)
	assert.Equal(t, []IssueKind{
		PhaseAllocationSumError, MaturityOutOfRangeError, UnknownInitiativeError, RateOutOfRangeError,
	}, kinds(issues))
}

func TestValidateStructuralErrors(t *testing.T) {
	e := defaultEngine(t)
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero total hours", func(c *Config) { c.TotalHours = 0 }},
		{"missing phase allocation", func(c *Config) { c.PhaseAllocation = nil }},
		{"NaN blended rate", func(c *Config) { c.BlendedRate = math.NaN() }},
		{"infinite maturity", func(c *Config) { c.InitiativeMaturity = map[string]float64{"EDCC": math.Inf(1)} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			issues, err := e.Validate(cfg)
			assert.ErrorIs(t, err, ErrMalformedConfig)
			assert.Nil(t, issues)

			_, err = e.Compute(cfg)
			assert.ErrorIs(t, err, ErrMalformedConfig)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Issues: []Issue{{Kind: UnknownPhaseError, Field: "risk_weights[X]", Message: "nope"}}}
	assert.Equal(t, "invalid config: UnknownPhaseError: risk_weights[X]: nope", err.Error())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
