package efficiency

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const tol = 1e-9

// row builds a full phase map from values in PhaseOrder.
func row(vs ...float64) map[string]float64 {
	m := make(map[string]float64, len(PhaseOrder))
	for p, name := range PhaseOrder {
		m[name] = vs[p]
	}
	return m
}

// smallTablesFile has one initiative touching Test only and one touching
// Build and Post Go-Live, staffed by two roles that cover every phase.
func smallTablesFile() TablesFile {
	return TablesFile{
		Initiatives: []InitiativeFile{
			{
				Name:    "Automated Testing",
				Deltas:  row(0, 0, 0, 0, -345, 0, 0),
				Buckets: BucketWeights{Methodology: 20, OOTB: 10, AI: 70},
			},
			{
				Name:    "Integration Code Reuse",
				Deltas:  row(0, 0, 0, -115, 0, 0, -90),
				Buckets: BucketWeights{Methodology: 30, OOTB: 50, AI: 20},
			},
		},
		Roles: []RoleFile{
			{
				Name:        "Developer",
				Group:       GroupPod,
				HourlyRate:  125,
				Hours:       row(10, 10, 10, 300, 100, 10, 50),
				Multipliers: map[string]float64{"Integration Code Reuse": 2},
			},
			{
				Name:        "QA Analyst",
				Group:       GroupPooled,
				HourlyRate:  110,
				Hours:       row(10, 10, 10, 100, 300, 10, 50),
				Multipliers: map[string]float64{"Automated Testing": 3},
			},
		},
	}
}

func mustTables(t *testing.T, f TablesFile) *Tables {
	t.Helper()
	tables, err := NewTables(f)
	require.NoError(t, err)
	return tables
}

func defaultEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := Default()
	require.NoError(t, err)
	return e
}

func allAt(level float64, names ...string) map[string]float64 {
	m := make(map[string]float64, len(names))
	for _, n := range names {
		m[n] = level
	}
	return m
}
