package efficiency

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Sum tolerances, in percentage points.
const (
	allocationEpsilon = 0.01
	bucketEpsilon     = 0.01
)

// MaxBlendedRate is the highest hourly blended rate Validate accepts.
const MaxBlendedRate = 10000.0

var structValidate = validator.New()

// checkStructure reports shape problems: missing maps, non-positive total
// hours, non-finite numbers. These are programming or decoding errors rather
// than business-rule violations, so they come back as errors.
func checkStructure(cfg Config) error {
	if err := structValidate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	scalars := map[string]float64{
		"blended_rate":               cfg.BlendedRate,
		"cost_avoidance_fraction":    cfg.CostAvoidanceFraction,
		"reduction_ceiling_fraction": cfg.ReductionCeilingFraction,
	}
	for _, field := range sortedKeys(scalars) {
		if !finite(scalars[field]) {
			return fmt.Errorf("%w: %s is not a finite number", ErrMalformedConfig, field)
		}
	}
	maps := []struct {
		field string
		m     map[string]float64
	}{
		{"phase_allocation", cfg.PhaseAllocation},
		{"initiative_maturity", cfg.InitiativeMaturity},
		{"risk_weights", cfg.RiskWeights},
	}
	for _, fm := range maps {
		for _, k := range sortedKeys(fm.m) {
			if !finite(fm.m[k]) {
				return fmt.Errorf("%w: %s[%s] is not a finite number", ErrMalformedConfig, fm.field, k)
			}
		}
	}
	return nil
}

// Validate checks cfg against the engine's tables. Checks run in a fixed
// order: phase allocation sum, maturity range, bucket weight sums, unknown
// names, then rate bounds. An empty slice means cfg may be computed.
func (e *Engine) Validate(cfg Config) ([]Issue, error) {
	if err := checkStructure(cfg); err != nil {
		return nil, err
	}
	issues := []Issue{}

	var allocation float64
	for _, name := range sortedKeys(cfg.PhaseAllocation) {
		v := cfg.PhaseAllocation[name]
		allocation += v
		if v < 0 {
			issues = append(issues, Issue{
				Kind:    PhaseAllocationSumError,
				Field:   fmt.Sprintf("phase_allocation[%s]", name),
				Message: fmt.Sprintf("allocation %.4g%% is negative", v),
			})
		}
	}
	if math.Abs(allocation-100) > allocationEpsilon {
		issues = append(issues, Issue{
			Kind:    PhaseAllocationSumError,
			Field:   "phase_allocation",
			Message: fmt.Sprintf("phase allocation sums to %.4g%%, expected 100%%", allocation),
		})
	}

	for _, name := range sortedKeys(cfg.InitiativeMaturity) {
		if v := cfg.InitiativeMaturity[name]; v < 0 || v > 100 {
			issues = append(issues, Issue{
				Kind:    MaturityOutOfRangeError,
				Field:   fmt.Sprintf("initiative_maturity[%s]", name),
				Message: fmt.Sprintf("maturity %.4g is outside [0,100]", v),
			})
		}
	}

	for _, in := range e.tables.matrix.initiatives {
		if sum := in.Buckets.Sum(); math.Abs(sum-100) > bucketEpsilon {
			issues = append(issues, Issue{
				Kind:    BucketWeightSumError,
				Field:   fmt.Sprintf("buckets[%s]", in.Name),
				Message: fmt.Sprintf("bucket weights sum to %.4g%%, expected 100%%", sum),
			})
		}
	}

	issues = append(issues, unknownPhases("phase_allocation", sortedKeys(cfg.PhaseAllocation))...)
	issues = append(issues, unknownPhases("risk_weights", sortedKeys(cfg.RiskWeights))...)
	avoid := append([]string(nil), cfg.CostAvoidancePhases...)
	sort.Strings(avoid)
	issues = append(issues, unknownPhases("cost_avoidance_phases", avoid)...)
	for _, name := range sortedKeys(cfg.InitiativeMaturity) {
		if !e.tables.matrix.Has(name) {
			issues = append(issues, Issue{
				Kind:    UnknownInitiativeError,
				Field:   fmt.Sprintf("initiative_maturity[%s]", name),
				Message: fmt.Sprintf("initiative %q is not in the benefit matrix", name),
			})
		}
	}

	if cfg.BlendedRate < 0 || cfg.BlendedRate > MaxBlendedRate {
		issues = append(issues, Issue{
			Kind:    RateOutOfRangeError,
			Field:   "blended_rate",
			Message: fmt.Sprintf("blended rate %.4g is outside [0,%.0f]", cfg.BlendedRate, MaxBlendedRate),
		})
	}
	fractions := []struct {
		field string
		v     float64
	}{
		{"cost_avoidance_fraction", cfg.CostAvoidanceFraction},
		{"reduction_ceiling_fraction", cfg.ReductionCeilingFraction},
	}
	for _, f := range fractions {
		if f.v < 0 || f.v > 1 {
			issues = append(issues, Issue{
				Kind:    RateOutOfRangeError,
				Field:   f.field,
				Message: fmt.Sprintf("%.4g is outside [0,1]", f.v),
			})
		}
	}
	return issues, nil
}

func unknownPhases(field string, names []string) []Issue {
	var out []Issue
	for _, name := range names {
		if phaseIndex(name) < 0 {
			out = append(out, Issue{
				Kind:    UnknownPhaseError,
				Field:   fmt.Sprintf("%s[%s]", field, name),
				Message: fmt.Sprintf("phase %q is not one of %v", name, PhaseOrder),
			})
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
