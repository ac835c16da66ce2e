package efficiency

// AvoidanceConfig selects which phases are accounted as cost avoidance and
// what fraction of their hour value counts.
type AvoidanceConfig struct {
	Phases   map[string]bool
	Fraction float64
}

// NewAvoidanceConfig builds an AvoidanceConfig from a phase list.
func NewAvoidanceConfig(phases []string, fraction float64) AvoidanceConfig {
	set := make(map[string]bool, len(phases))
	for _, p := range phases {
		set[p] = true
	}
	return AvoidanceConfig{Phases: set, Fraction: fraction}
}

// CostResult converts hours into money. Phase slices follow PhaseOrder and
// role slices follow the role table.
type CostResult struct {
	DirectSavings    float64
	CostAvoidance    float64
	FinancialBenefit float64

	PhaseDirect    []float64
	PhaseAvoidance []float64

	RoleHours []float64
	RoleCost  []float64
}

// Cost prices phase savings at the blended rate, splitting them into direct
// savings and cost avoidance, and prices each role's savings at the role's
// own hourly rate.
func Cost(pr PhaseResult, rr RoleResult, roles []Role, rate float64, av AvoidanceConfig) CostResult {
	res := CostResult{
		PhaseDirect:    make([]float64, len(PhaseOrder)),
		PhaseAvoidance: make([]float64, len(PhaseOrder)),
		RoleHours:      make([]float64, len(roles)),
		RoleCost:       make([]float64, len(roles)),
	}
	for p, name := range PhaseOrder {
		if av.Phases[name] {
			res.PhaseAvoidance[p] = pr.Savings[p] * rate * av.Fraction
			res.CostAvoidance += res.PhaseAvoidance[p]
			continue
		}
		res.PhaseDirect[p] = pr.Savings[p] * rate
		res.DirectSavings += res.PhaseDirect[p]
	}
	res.FinancialBenefit = res.DirectSavings + res.CostAvoidance

	for r, role := range roles {
		res.RoleHours[r] = rr.Total(r)
		res.RoleCost[r] = res.RoleHours[r] * role.HourlyRate
	}
	return res
}
