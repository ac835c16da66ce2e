package efficiency

import "math"

// RoleResult distributes phase baseline and savings across roles.
// Savings[r][p] follows the role table order and PhaseOrder.
type RoleResult struct {
	Roles []string
	// Baseline[r][p] is role r's plain hour share of phase p's baseline.
	Baseline    [][]float64
	Savings     [][]float64
	Multipliers [][]float64
}

// Total returns role r's savings across all phases.
func (r RoleResult) Total(role int) float64 { return sum(r.Savings[role]) }

// BaselineTotal returns role r's baseline hours across all phases.
func (r RoleResult) BaselineTotal(role int) float64 { return sum(r.Baseline[role]) }

// PhaseTotal returns Σ_r Savings[r][p].
func (r RoleResult) PhaseTotal(p int) float64 {
	var s float64
	for _, row := range r.Savings {
		s += row[p]
	}
	return s
}

// Allocate splits each phase's savings across the roles that carry baseline
// hours in it. A role's share is its fraction of the phase's role hours,
// biased by its multiplier averaged over initiatives weighted by how much
// each initiative saved in that phase. Shares are renormalised so that the
// roles of a phase always sum to the phase savings: multipliers move savings
// between roles but never add or remove any.
func Allocate(pr PhaseResult, initiatives []string, roles []Role) RoleResult {
	res := RoleResult{
		Roles:       make([]string, len(roles)),
		Baseline:    make([][]float64, len(roles)),
		Savings:     make([][]float64, len(roles)),
		Multipliers: make([][]float64, len(roles)),
	}
	for r, role := range roles {
		res.Roles[r] = role.Name
		res.Baseline[r] = make([]float64, len(PhaseOrder))
		res.Savings[r] = make([]float64, len(PhaseOrder))
		res.Multipliers[r] = make([]float64, len(PhaseOrder))
	}

	for p := range PhaseOrder {
		var phaseHours float64
		for _, role := range roles {
			phaseHours += role.Hours[p]
		}
		if phaseHours <= 0 {
			continue
		}
		for r, role := range roles {
			res.Baseline[r][p] = pr.Baseline[p] * role.Hours[p] / phaseHours
		}

		var weightTotal float64
		weights := make([]float64, len(initiatives))
		for i := range initiatives {
			weights[i] = math.Abs(pr.Contributions[i][p])
			weightTotal += weights[i]
		}

		biased := make([]float64, len(roles))
		var biasedTotal float64
		for r, role := range roles {
			if role.Hours[p] <= 0 {
				continue
			}
			m := 1.0
			if weightTotal > 0 {
				m = 0
				for i, name := range initiatives {
					m += weights[i] * role.Multiplier(name)
				}
				m /= weightTotal
			}
			res.Multipliers[r][p] = m
			biased[r] = role.Hours[p] / phaseHours * m
			biasedTotal += biased[r]
		}

		savings := pr.Savings[p]
		for r, role := range roles {
			if role.Hours[p] <= 0 {
				continue
			}
			if biasedTotal > 0 {
				res.Savings[r][p] = savings * biased[r] / biasedTotal
			} else {
				// Every multiplier is zero: fall back to plain hour shares.
				res.Savings[r][p] = savings * role.Hours[p] / phaseHours
			}
		}
	}
	return res
}
