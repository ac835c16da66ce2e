package efficiency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySplitsByWeights(t *testing.T) {
	tables := mustTables(t, smallTablesFile())
	br := Classify([]float64{100, 200}, tables.Matrix().Initiatives())

	require.Len(t, br.Totals, 3)
	assert.Equal(t, BucketMethodology, br.Totals[0].Bucket)
	assert.InDelta(t, 80, br.Totals[0].Hours, tol)
	assert.InDelta(t, 110, br.Totals[1].Hours, tol)
	assert.InDelta(t, 110, br.Totals[2].Hours, tol)
	assert.InDelta(t, 80.0/3, br.Totals[0].PctOfTotal, tol)

	var pct float64
	for _, bt := range br.Totals {
		pct += bt.PctOfTotal
	}
	assert.InDelta(t, 100, pct, 1e-9)
}

func TestClassifyPreservesInitiativeTotals(t *testing.T) {
	tables := MustDefaultTables()
	ins := tables.Matrix().Initiatives()
	savings := []float64{12.5, 0, 300, 41, 999, 3.25, 87}

	br := Classify(savings, ins)
	for i, split := range br.PerInitiative {
		assert.InDelta(t, savings[i], sum(split), 1e-9, ins[i].Name)
	}
}

func TestClassifyZeroTotal(t *testing.T) {
	tables := mustTables(t, smallTablesFile())
	br := Classify([]float64{0, 0}, tables.Matrix().Initiatives())
	for _, bt := range br.Totals {
		assert.Zero(t, bt.Hours)
		assert.Zero(t, bt.PctOfTotal)
	}
}

func TestClassifyRolesSplitsRoleSavings(t *testing.T) {
	tables := mustTables(t, smallTablesFile())
	pr, rr := allocateFor(t, tables, map[string]float64{"Automated Testing": 100}, 0.5)

	split := ClassifyRoles(pr, rr, tables.Matrix().Initiatives())
	require.Len(t, split, 2)

	// Test phase: Developer 100h x1, QA 300h x3, so Developer takes 1/10 of 345.
	assert.InDelta(t, 34.5, rr.Total(0), tol)
	assert.InDelta(t, 34.5*0.2, split[0][0], tol)
	assert.InDelta(t, 34.5*0.1, split[0][1], tol)
	assert.InDelta(t, 34.5*0.7, split[0][2], tol)
	assert.InDelta(t, 310.5, sum(split[1]), tol)
}

func TestClassifyRolesMatchesRoleAndBucketTotals(t *testing.T) {
	tables := MustDefaultTables()
	ins := tables.Matrix().Initiatives()
	names := tables.Matrix().Names()
	mixes := []map[string]float64{
		allAt(50, names...),
		allAt(100, names...),
		{"EDCC": 20, "N2S CARM": 90, "AI/Automation": 65},
	}
	for _, mix := range mixes {
		pr, rr := allocateFor(t, tables, mix, 0.5)
		split := ClassifyRoles(pr, rr, ins)

		perInitiative := make([]float64, len(ins))
		for i := range ins {
			perInitiative[i] = sum(pr.Contributions[i])
		}
		br := Classify(perInitiative, ins)

		columns := make([]float64, len(BucketOrder))
		for r, row := range split {
			assert.InDelta(t, rr.Total(r), sum(row), 1e-9, rr.Roles[r])
			for b, h := range row {
				columns[b] += h
			}
		}
		for b, bt := range br.Totals {
			assert.InDelta(t, bt.Hours, columns[b], 1e-9, string(bt.Bucket))
		}
	}
}

func TestClassifyRolesNothingSaved(t *testing.T) {
	tables := mustTables(t, smallTablesFile())
	pr, rr := allocateFor(t, tables, nil, 0.5)
	for _, row := range ClassifyRoles(pr, rr, tables.Matrix().Initiatives()) {
		assert.Equal(t, []float64{0, 0, 0}, row)
	}
}
