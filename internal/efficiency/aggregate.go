package efficiency

import "math"

// PhaseResult is the per-phase outcome of combining baseline hours with
// scaled deltas. Slices are indexed by PhaseOrder.
type PhaseResult struct {
	Baseline []float64
	// RawSavings is -Σ scaled[i][p] before flooring or clamping.
	RawSavings []float64
	// Savings is what the model reports as saved per phase.
	Savings []float64
	Modeled []float64
	// Contributions[i][p] attributes Savings[p] to initiative i; each
	// column sums to Savings[p].
	Contributions [][]float64

	Clamped     bool
	ClampFactor float64
}

// TotalBaseline is Σ Baseline.
func (r PhaseResult) TotalBaseline() float64 { return sum(r.Baseline) }

// TotalSavings is Σ Savings.
func (r PhaseResult) TotalSavings() float64 { return sum(r.Savings) }

// BaselineHours splits totalHours by percentage allocation.
func BaselineHours(totalHours int, allocation map[string]float64) []float64 {
	out := make([]float64, len(PhaseOrder))
	for p, name := range PhaseOrder {
		out[p] = float64(totalHours) * allocation[name] / 100
	}
	return out
}

// Aggregate turns scaled deltas into phase savings and modelled hours.
//
// A phase can never be modelled below zero hours, so savings above a phase's
// baseline are floored to it. If total savings then exceed ceiling × total
// baseline, every phase is scaled by one common factor so the ceiling is met
// exactly; the relative proportions between phases are preserved.
func Aggregate(baseline []float64, scaled ScaledMatrix, ceiling float64) PhaseResult {
	n := len(PhaseOrder)
	res := PhaseResult{
		Baseline:      append([]float64(nil), baseline...),
		RawSavings:    make([]float64, n),
		Savings:       make([]float64, n),
		Modeled:       make([]float64, n),
		Contributions: make([][]float64, len(scaled.Deltas)),
		ClampFactor:   1,
	}
	for _, row := range scaled.Deltas {
		for p, d := range row {
			res.RawSavings[p] -= d
		}
	}

	floor := make([]float64, n)
	for p := range PhaseOrder {
		floor[p] = 1
		res.Savings[p] = res.RawSavings[p]
		if res.RawSavings[p] > baseline[p] {
			floor[p] = baseline[p] / res.RawSavings[p]
			res.Savings[p] = baseline[p]
		}
	}

	total := sum(res.Savings)
	if limit := ceiling * sum(baseline); total > limit && total > 0 {
		res.Clamped = true
		res.ClampFactor = limit / total
		for p := range res.Savings {
			res.Savings[p] *= res.ClampFactor
		}
	}

	for p := range PhaseOrder {
		res.Modeled[p] = math.Max(0, baseline[p]-res.Savings[p])
	}
	for i, row := range scaled.Deltas {
		contrib := make([]float64, n)
		for p, d := range row {
			contrib[p] = -d * floor[p] * res.ClampFactor
		}
		res.Contributions[i] = contrib
	}
	return res
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
