// Package efficiency estimates delivery-methodology savings: a benefit matrix
// of per-initiative, per-phase hour deltas is scaled by maturity, aggregated
// per phase, allocated to roles and strategic buckets, and priced.
//
// Compute is a pure function of its Config and the engine's immutable
// Tables, so one Engine may serve any number of goroutines.
package efficiency

import "sort"

// Engine computes results against one immutable set of tables.
type Engine struct {
	tables *Tables
}

// NewEngine returns an engine over t. The tables are shared, not copied.
func NewEngine(t *Tables) *Engine { return &Engine{tables: t} }

// Default returns an engine over the embedded reference tables.
func Default() (*Engine, error) {
	t, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	return NewEngine(t), nil
}

// Tables returns the tables the engine computes against.
func (e *Engine) Tables() *Tables { return e.tables }

// Compute validates cfg and, if it is clean, runs the full pipeline. A
// config with issues is never computed: the returned error is a
// *ValidationError that matches ErrInvalidConfig.
func (e *Engine) Compute(cfg Config) (Result, error) {
	issues, err := e.Validate(cfg)
	if err != nil {
		return Result{}, err
	}
	if len(issues) > 0 {
		return Result{}, &ValidationError{Issues: issues}
	}
	return e.compute(cfg), nil
}

func (e *Engine) compute(cfg Config) Result {
	m := e.tables.matrix
	roles := e.tables.roles

	baseline := BaselineHours(cfg.TotalHours, cfg.PhaseAllocation)
	scaled := Scale(m, cfg.InitiativeMaturity)
	pr := Aggregate(baseline, scaled, cfg.ReductionCeilingFraction)
	rr := Allocate(pr, scaled.Initiatives, roles)

	perInitiative := make([]float64, len(m.initiatives))
	for i := range m.initiatives {
		perInitiative[i] = sum(pr.Contributions[i])
	}
	br := Classify(perInitiative, m.initiatives)

	av := NewAvoidanceConfig(cfg.CostAvoidancePhases, cfg.CostAvoidanceFraction)
	cr := Cost(pr, rr, roles, cfg.BlendedRate, av)

	res := Result{
		TotalBaselineHours: pr.TotalBaseline(),
		TotalModeledHours:  sum(pr.Modeled),
		TotalHoursSaved:    pr.TotalSavings(),
		DirectCostSavings:  cr.DirectSavings,
		CostAvoidance:      cr.CostAvoidance,
		FinancialBenefit:   cr.FinancialBenefit,
		Clamped:            pr.Clamped,
		ClampFactor:        pr.ClampFactor,
	}
	res.BaselineCost = res.TotalBaselineHours * cfg.BlendedRate
	res.ModeledCost = res.TotalModeledHours * cfg.BlendedRate
	res.SavingsPct = pct(res.TotalHoursSaved, res.TotalBaselineHours)
	res.ExceedsCredibleReduction = res.SavingsPct > e.tables.credible*100

	for p, name := range PhaseOrder {
		weight, ok := cfg.RiskWeights[name]
		if !ok {
			weight = 1
		}
		line := PhaseLine{
			Name:              name,
			BaselineHours:     pr.Baseline[p],
			ModeledHours:      pr.Modeled[p],
			HoursSaved:        pr.Savings[p],
			BaselineCost:      pr.Baseline[p] * cfg.BlendedRate,
			ModeledCost:       pr.Modeled[p] * cfg.BlendedRate,
			RiskWeight:        weight,
			RiskAdjustedHours: pr.Modeled[p] * weight,
			CostAvoidance:     av.Phases[name],
		}
		if pr.Baseline[p] > 0 {
			line.VariancePct = (pr.Modeled[p] - pr.Baseline[p]) / pr.Baseline[p] * 100
		}
		res.PerPhase = append(res.PerPhase, line)
	}

	roleBuckets := ClassifyRoles(pr, rr, m.initiatives)
	groups := map[RoleGroup]*GroupLine{}
	for _, g := range GroupOrder {
		groups[g] = &GroupLine{Group: g}
	}
	for r, role := range roles {
		line := RoleLine{
			Name:          role.Name,
			Group:         role.Group,
			HourlyRate:    role.HourlyRate,
			BaselineHours: rr.BaselineTotal(r),
			HoursSaved:    cr.RoleHours[r],
			CostSavings:   cr.RoleCost[r],
		}
		line.ModeledHours = line.BaselineHours - line.HoursSaved
		line.PctSaved = pct(line.HoursSaved, line.BaselineHours)
		for b, bucket := range BucketOrder {
			line.Buckets = append(line.Buckets, RoleBucketLine{
				Name:         bucket,
				HoursSaved:   roleBuckets[r][b],
				DollarsSaved: roleBuckets[r][b] * role.HourlyRate,
			})
		}
		res.PerRole = append(res.PerRole, line)

		g := groups[role.Group]
		g.BaselineHours += line.BaselineHours
		g.ModeledHours += line.ModeledHours
		g.HoursSaved += line.HoursSaved
		g.CostSavings += line.CostSavings
	}
	for _, name := range GroupOrder {
		g := groups[name]
		g.PctSaved = pct(g.HoursSaved, g.BaselineHours)
		res.PerGroup = append(res.PerGroup, *g)
	}

	for _, t := range br.Totals {
		res.PerBucket = append(res.PerBucket, BucketLine{
			Name:         t.Bucket,
			HoursSaved:   t.Hours,
			DollarsSaved: t.Hours * cfg.BlendedRate,
			PctOfTotal:   t.PctOfTotal,
		})
	}

	res.PerInitiative = initiativeLines(m, scaled, pr, cfg.BlendedRate, av)
	return res
}

// pct is part as a percentage of whole, 0 when whole is not positive.
func pct(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// initiativeLines reports each initiative with nonzero maturity, largest
// financial impact first.
func initiativeLines(m *BenefitMatrix, scaled ScaledMatrix, pr PhaseResult, rate float64, av AvoidanceConfig) []InitiativeLine {
	lines := []InitiativeLine{}
	for i, in := range m.initiatives {
		if scaled.Maturity[i] <= 0 {
			continue
		}
		line := InitiativeLine{
			Name:             in.Name,
			Maturity:         scaled.Maturity[i],
			UnscaledDeltaSum: sum(in.Deltas),
		}
		for p, name := range PhaseOrder {
			h := pr.Contributions[i][p]
			line.HoursSaved += h
			if av.Phases[name] {
				line.AvoidanceHours += h
			} else {
				line.DeliveryHours += h
			}
		}
		line.FinancialImpact = line.DeliveryHours*rate + line.AvoidanceHours*rate*av.Fraction
		lines = append(lines, line)
	}
	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].FinancialImpact > lines[b].FinancialImpact
	})
	return lines
}
