package efficiency

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// TablesFile is the on-disk schema for the benefit matrix and role table.
// JSON documents decode too, since yaml.v3 accepts JSON.
type TablesFile struct {
	Calibration               float64          `json:"calibration" yaml:"calibration"`
	CredibleReductionFraction float64          `json:"credible_reduction_fraction" yaml:"credible_reduction_fraction"`
	Phases                    []string         `json:"phases" yaml:"phases"`
	Initiatives               []InitiativeFile `json:"initiatives" yaml:"initiatives"`
	Roles                     []RoleFile       `json:"roles" yaml:"roles"`
}

type InitiativeFile struct {
	Name    string             `json:"name" yaml:"name"`
	Deltas  map[string]float64 `json:"deltas" yaml:"deltas"`
	Buckets BucketWeights      `json:"buckets" yaml:"buckets"`
}

type RoleFile struct {
	Name        string             `json:"name" yaml:"name"`
	Group       RoleGroup          `json:"group" yaml:"group"`
	HourlyRate  float64            `json:"hourly_rate" yaml:"hourly_rate"`
	Hours       map[string]float64 `json:"hours" yaml:"hours"`
	Multipliers map[string]float64 `json:"multipliers,omitempty" yaml:"multipliers,omitempty"`
}

// Initiative is one row of the benefit matrix. Deltas are indexed by
// PhaseOrder and hold hours at 100% maturity (negative = savings).
type Initiative struct {
	Name    string
	Deltas  []float64
	Buckets BucketWeights
}

// BenefitMatrix maps Initiative × Phase to an hour delta at full maturity.
// A matrix never changes after construction.
type BenefitMatrix struct {
	initiatives []Initiative
	index       map[string]int
	calibration float64
}

// Initiatives returns copies of the matrix rows in table order.
func (m *BenefitMatrix) Initiatives() []Initiative {
	out := make([]Initiative, len(m.initiatives))
	for i, in := range m.initiatives {
		in.Deltas = append([]float64(nil), in.Deltas...)
		out[i] = in
	}
	return out
}

// Names returns initiative names in table order.
func (m *BenefitMatrix) Names() []string {
	out := make([]string, len(m.initiatives))
	for i, in := range m.initiatives {
		out[i] = in.Name
	}
	return out
}

// Has reports whether name is an initiative of the matrix.
func (m *BenefitMatrix) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Delta returns the full-maturity delta for initiative × phase.
func (m *BenefitMatrix) Delta(initiative, phase string) (float64, bool) {
	i, ok := m.index[initiative]
	if !ok {
		return 0, false
	}
	p := phaseIndex(phase)
	if p < 0 {
		return 0, false
	}
	return m.initiatives[i].Deltas[p], true
}

// Calibration is the multiplier applied to every delta when scaling.
func (m *BenefitMatrix) Calibration() float64 { return m.calibration }

// WithCalibration returns a new matrix sharing rows with m but using k.
func (m *BenefitMatrix) WithCalibration(k float64) (*BenefitMatrix, error) {
	if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("calibration must be a finite non-negative number, got %v", k)
	}
	return &BenefitMatrix{initiatives: m.initiatives, index: m.index, calibration: k}, nil
}

// Role is a staffed role. Hours are indexed by PhaseOrder.
type Role struct {
	Name        string
	Group       RoleGroup
	HourlyRate  float64
	Hours       []float64
	multipliers map[string]float64
}

// Multiplier returns the role's realisation multiplier for an initiative;
// 1 when the table does not set one.
func (r Role) Multiplier(initiative string) float64 {
	if v, ok := r.multipliers[initiative]; ok {
		return v
	}
	return 1
}

// Tables is the immutable reference data an Engine computes against.
type Tables struct {
	matrix   *BenefitMatrix
	roles    []Role
	credible float64
}

// Matrix returns the benefit matrix.
func (t *Tables) Matrix() *BenefitMatrix { return t.matrix }

// Roles returns copies of the role rows.
func (t *Tables) Roles() []Role {
	out := make([]Role, len(t.roles))
	for i, r := range t.roles {
		r.Hours = append([]float64(nil), r.Hours...)
		out[i] = r
	}
	return out
}

// CredibleReductionFraction is the savings share above which results are
// flagged as beyond empirically defensible limits.
func (t *Tables) CredibleReductionFraction() float64 { return t.credible }

// WithCalibration returns tables whose matrix uses calibration k.
func (t *Tables) WithCalibration(k float64) (*Tables, error) {
	m, err := t.matrix.WithCalibration(k)
	if err != nil {
		return nil, err
	}
	return &Tables{matrix: m, roles: t.roles, credible: t.credible}, nil
}

// File renders the tables back into their on-disk schema.
func (t *Tables) File() TablesFile {
	f := TablesFile{
		Calibration:               t.matrix.calibration,
		CredibleReductionFraction: t.credible,
		Phases:                    append([]string(nil), PhaseOrder...),
	}
	for _, in := range t.matrix.initiatives {
		deltas := make(map[string]float64, len(PhaseOrder))
		for p, name := range PhaseOrder {
			deltas[name] = in.Deltas[p]
		}
		f.Initiatives = append(f.Initiatives, InitiativeFile{Name: in.Name, Deltas: deltas, Buckets: in.Buckets})
	}
	for _, r := range t.roles {
		hours := make(map[string]float64, len(PhaseOrder))
		for p, name := range PhaseOrder {
			if r.Hours[p] != 0 {
				hours[name] = r.Hours[p]
			}
		}
		f.Roles = append(f.Roles, RoleFile{
			Name:        r.Name,
			Group:       r.Group,
			HourlyRate:  r.HourlyRate,
			Hours:       hours,
			Multipliers: cloneMap(r.multipliers),
		})
	}
	return f
}

// NewTables checks the schema and builds immutable tables. Missing,
// duplicated or misnamed phases and initiatives are rejected here so that
// nothing downstream has to guess. Bucket weight sums are left to Validate.
func NewTables(f TablesFile) (*Tables, error) {
	var errs []error
	if err := checkPhases(f.Phases); err != nil {
		errs = append(errs, err)
	}

	calibration := f.Calibration
	if calibration == 0 {
		calibration = 1
	}
	if calibration < 0 || !finite(calibration) {
		errs = append(errs, fmt.Errorf("calibration must be a finite non-negative number, got %v", f.Calibration))
	}
	credible := f.CredibleReductionFraction
	if credible == 0 {
		credible = DefaultCredibleReduction
	}
	if credible < 0 || credible > 1 || !finite(credible) {
		errs = append(errs, fmt.Errorf("credible_reduction_fraction must be within [0,1], got %v", f.CredibleReductionFraction))
	}

	if len(f.Initiatives) == 0 {
		errs = append(errs, errors.New("at least one initiative is required"))
	}
	m := &BenefitMatrix{index: make(map[string]int, len(f.Initiatives)), calibration: calibration}
	for _, in := range f.Initiatives {
		if in.Name == "" {
			errs = append(errs, errors.New("initiative with empty name"))
			continue
		}
		if _, dup := m.index[in.Name]; dup {
			errs = append(errs, fmt.Errorf("initiative %q: duplicate", in.Name))
			continue
		}
		row, err := phaseRow(in.Deltas, true)
		if err != nil {
			errs = append(errs, fmt.Errorf("initiative %q: %w", in.Name, err))
			continue
		}
		if !finite(in.Buckets.Methodology) || !finite(in.Buckets.OOTB) || !finite(in.Buckets.AI) {
			errs = append(errs, fmt.Errorf("initiative %q: bucket weights must be finite", in.Name))
			continue
		}
		m.index[in.Name] = len(m.initiatives)
		m.initiatives = append(m.initiatives, Initiative{Name: in.Name, Deltas: row, Buckets: in.Buckets})
	}

	roles, err := buildRoles(f.Roles, m)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("load tables: %w", errors.Join(errs...))
	}
	return &Tables{matrix: m, roles: roles, credible: credible}, nil
}

// DefaultCredibleReduction flags results above 30% total reduction.
const DefaultCredibleReduction = 0.30

func buildRoles(files []RoleFile, m *BenefitMatrix) ([]Role, error) {
	if len(files) == 0 {
		return nil, errors.New("at least one role is required")
	}
	var errs []error
	seen := map[string]bool{}
	staffed := make([]bool, len(PhaseOrder))
	roles := make([]Role, 0, len(files))
	for _, rf := range files {
		if rf.Name == "" {
			errs = append(errs, errors.New("role with empty name"))
			continue
		}
		if seen[rf.Name] {
			errs = append(errs, fmt.Errorf("role %q: duplicate", rf.Name))
			continue
		}
		seen[rf.Name] = true
		if rf.Group != GroupPod && rf.Group != GroupPooled {
			errs = append(errs, fmt.Errorf("role %q: unknown group %q", rf.Name, rf.Group))
			continue
		}
		if rf.HourlyRate < 0 || !finite(rf.HourlyRate) {
			errs = append(errs, fmt.Errorf("role %q: hourly_rate must be finite and non-negative", rf.Name))
			continue
		}
		hours, err := phaseRow(rf.Hours, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("role %q: %w", rf.Name, err))
			continue
		}
		bad := false
		for p, h := range hours {
			if h < 0 {
				errs = append(errs, fmt.Errorf("role %q: negative hours in %s", rf.Name, PhaseOrder[p]))
				bad = true
			}
			if h > 0 {
				staffed[p] = true
			}
		}
		for name, v := range rf.Multipliers {
			if !m.Has(name) {
				errs = append(errs, fmt.Errorf("role %q: multiplier for unknown initiative %q", rf.Name, name))
				bad = true
			}
			if v < 0 || !finite(v) {
				errs = append(errs, fmt.Errorf("role %q: multiplier for %q must be finite and >= 0", rf.Name, name))
				bad = true
			}
		}
		if bad {
			continue
		}
		roles = append(roles, Role{
			Name:        rf.Name,
			Group:       rf.Group,
			HourlyRate:  rf.HourlyRate,
			Hours:       hours,
			multipliers: cloneMap(rf.Multipliers),
		})
	}
	for p, ok := range staffed {
		if !ok {
			errs = append(errs, fmt.Errorf("phase %s has no role with baseline hours", PhaseOrder[p]))
		}
	}
	return roles, errors.Join(errs...)
}

// phaseRow converts a phase-keyed map to a PhaseOrder-indexed slice.
// Unknown keys are always rejected; complete requires every phase present.
func phaseRow(values map[string]float64, complete bool) ([]float64, error) {
	row := make([]float64, len(PhaseOrder))
	for name, v := range values {
		p := phaseIndex(name)
		if p < 0 {
			return nil, fmt.Errorf("unknown phase %q", name)
		}
		if !finite(v) {
			return nil, fmt.Errorf("non-finite value for phase %s", name)
		}
		row[p] = v
	}
	if complete {
		for _, name := range PhaseOrder {
			if _, ok := values[name]; !ok {
				return nil, fmt.Errorf("missing phase %s", name)
			}
		}
	}
	return row, nil
}

func checkPhases(phases []string) error {
	if len(phases) == 0 {
		return nil // canonical order implied
	}
	if len(phases) != len(PhaseOrder) {
		return fmt.Errorf("phases: expected %d phases %v, got %v", len(PhaseOrder), PhaseOrder, phases)
	}
	for i, name := range phases {
		if name != PhaseOrder[i] {
			return fmt.Errorf("phases[%d]: expected %q, got %q", i, PhaseOrder[i], name)
		}
	}
	return nil
}

func phaseIndex(name string) int {
	for i, p := range PhaseOrder {
		if p == name {
			return i
		}
	}
	return -1
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// LoadTables decodes a YAML or JSON tables document.
func LoadTables(r io.Reader) (*Tables, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f TablesFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	return NewTables(f)
}

// LoadTablesFile reads tables from path.
func LoadTablesFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	t, err := LoadTables(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
