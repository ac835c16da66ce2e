package efficiency

// ScaledMatrix holds maturity-scaled deltas. Deltas[i][p] follows the
// matrix's initiative order and PhaseOrder.
type ScaledMatrix struct {
	Initiatives []string
	Maturity    []float64
	Deltas      [][]float64
}

// Scale applies linear per-initiative maturity to every delta:
//
//	scaled[i][p] = matrix[i][p] * calibration * maturity[i] / 100
//
// Initiatives absent from maturities scale to zero. There is no compounding
// across initiatives.
func Scale(m *BenefitMatrix, maturities map[string]float64) ScaledMatrix {
	out := ScaledMatrix{
		Initiatives: make([]string, len(m.initiatives)),
		Maturity:    make([]float64, len(m.initiatives)),
		Deltas:      make([][]float64, len(m.initiatives)),
	}
	for i, in := range m.initiatives {
		level := maturities[in.Name]
		factor := m.calibration * (level / 100)
		row := make([]float64, len(in.Deltas))
		for p, d := range in.Deltas {
			row[p] = d * factor
		}
		out.Initiatives[i] = in.Name
		out.Maturity[i] = level
		out.Deltas[i] = row
	}
	return out
}
