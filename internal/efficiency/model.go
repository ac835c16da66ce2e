package efficiency

import (
	"errors"
	"fmt"
	"strings"
)

// Canonical phase names, in delivery order.
const (
	PhaseDiscover   = "Discover"
	PhasePlan       = "Plan"
	PhaseDesign     = "Design"
	PhaseBuild      = "Build"
	PhaseTest       = "Test"
	PhaseDeploy     = "Deploy"
	PhasePostGoLive = "Post Go-Live"
)

// PhaseOrder is the fixed, ordered phase set every matrix row is keyed by.
var PhaseOrder = []string{
	PhaseDiscover, PhasePlan, PhaseDesign, PhaseBuild,
	PhaseTest, PhaseDeploy, PhasePostGoLive,
}

// Bucket is one of the three strategic savings categories.
type Bucket string

const (
	BucketMethodology Bucket = "Methodology"
	BucketOOTB        Bucket = "OOtB Config"
	BucketAI          Bucket = "AI & Automation"
)

// BucketOrder is the reporting order of buckets.
var BucketOrder = []Bucket{BucketMethodology, BucketOOTB, BucketAI}

// BucketWeights splits an initiative's savings across buckets, in percent.
type BucketWeights struct {
	Methodology float64 `json:"methodology" yaml:"methodology"`
	OOTB        float64 `json:"ootb" yaml:"ootb"`
	AI          float64 `json:"ai" yaml:"ai"`
}

func (w BucketWeights) Sum() float64 { return w.Methodology + w.OOTB + w.AI }

// Of returns the weight for b.
func (w BucketWeights) Of(b Bucket) float64 {
	switch b {
	case BucketMethodology:
		return w.Methodology
	case BucketOOTB:
		return w.OOTB
	case BucketAI:
		return w.AI
	}
	return 0
}

// RoleGroup is the team grouping of a role.
type RoleGroup string

const (
	GroupPod    RoleGroup = "Pod"
	GroupPooled RoleGroup = "Pooled"
)

// GroupOrder is the reporting order of role groups.
var GroupOrder = []RoleGroup{GroupPod, GroupPooled}

// Config is one scenario's inputs. Maps are keyed by canonical phase or
// initiative name; omitted initiatives run at maturity 0.
type Config struct {
	TotalHours               int                `json:"total_hours" yaml:"total_hours" validate:"gt=0"`
	BlendedRate              float64            `json:"blended_rate" yaml:"blended_rate"`
	PhaseAllocation          map[string]float64 `json:"phase_allocation" yaml:"phase_allocation" validate:"required,min=1"`
	InitiativeMaturity       map[string]float64 `json:"initiative_maturity" yaml:"initiative_maturity"`
	RiskWeights              map[string]float64 `json:"risk_weights" yaml:"risk_weights"`
	CostAvoidancePhases      []string           `json:"cost_avoidance_phases" yaml:"cost_avoidance_phases"`
	CostAvoidanceFraction    float64            `json:"cost_avoidance_fraction" yaml:"cost_avoidance_fraction"`
	ReductionCeilingFraction float64            `json:"reduction_ceiling_fraction" yaml:"reduction_ceiling_fraction"`
}

// Defaults applied by DefaultConfig.
const (
	DefaultTotalHours            = 17054
	DefaultBlendedRate           = 100.0
	DefaultMaturity              = 50.0
	DefaultCostAvoidanceFraction = 0.5
	DefaultReductionCeiling      = 0.5
)

// DefaultConfig returns a fully populated config. Decoding a partial document
// on top of it leaves the omitted fields at these defaults.
func DefaultConfig() Config {
	return Config{
		TotalHours:  DefaultTotalHours,
		BlendedRate: DefaultBlendedRate,
		PhaseAllocation: map[string]float64{
			PhaseDiscover:   5,
			PhasePlan:       10,
			PhaseDesign:     15,
			PhaseBuild:      25,
			PhaseTest:       20,
			PhaseDeploy:     10,
			PhasePostGoLive: 15,
		},
		InitiativeMaturity: map[string]float64{},
		RiskWeights: map[string]float64{
			PhaseDiscover:   1,
			PhasePlan:       2,
			PhaseDesign:     3,
			PhaseBuild:      4,
			PhaseTest:       5,
			PhaseDeploy:     6,
			PhasePostGoLive: 7,
		},
		CostAvoidancePhases:      []string{PhasePostGoLive},
		CostAvoidanceFraction:    DefaultCostAvoidanceFraction,
		ReductionCeilingFraction: DefaultReductionCeiling,
	}
}

// DecodeConfig runs decode into a config that carries the default scalars.
// Maps and lists in the document replace the defaults whole instead of
// merging into them, so a sparse phase_allocation means exactly what it
// says; any the document omits get their defaults. The config is returned
// even when decode fails so callers can treat an empty document as valid.
func DecodeConfig(decode func(v any) error) (Config, error) {
	cfg := DefaultConfig()
	cfg.PhaseAllocation = nil
	cfg.InitiativeMaturity = nil
	cfg.RiskWeights = nil
	cfg.CostAvoidancePhases = nil
	err := decode(&cfg)

	def := DefaultConfig()
	if cfg.PhaseAllocation == nil {
		cfg.PhaseAllocation = def.PhaseAllocation
	}
	if cfg.InitiativeMaturity == nil {
		cfg.InitiativeMaturity = def.InitiativeMaturity
	}
	if cfg.RiskWeights == nil {
		cfg.RiskWeights = def.RiskWeights
	}
	if cfg.CostAvoidancePhases == nil {
		cfg.CostAvoidancePhases = def.CostAvoidancePhases
	}
	return cfg, err
}

// Clone returns a deep copy so callers can derive scenarios without sharing maps.
func (c Config) Clone() Config {
	out := c
	out.PhaseAllocation = cloneMap(c.PhaseAllocation)
	out.InitiativeMaturity = cloneMap(c.InitiativeMaturity)
	out.RiskWeights = cloneMap(c.RiskWeights)
	if c.CostAvoidancePhases != nil {
		out.CostAvoidancePhases = append([]string(nil), c.CostAvoidancePhases...)
	}
	return out
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// IssueKind classifies a business-rule violation found by Validate.
type IssueKind string

const (
	PhaseAllocationSumError IssueKind = "PhaseAllocationSumError"
	BucketWeightSumError    IssueKind = "BucketWeightSumError"
	MaturityOutOfRangeError IssueKind = "MaturityOutOfRangeError"
	UnknownInitiativeError  IssueKind = "UnknownInitiativeError"
	UnknownPhaseError       IssueKind = "UnknownPhaseError"
	RateOutOfRangeError     IssueKind = "RateOutOfRangeError"
)

// Issue is one validation finding. Field names the offending config key.
type Issue struct {
	Kind    IssueKind `json:"kind" yaml:"kind"`
	Field   string    `json:"field" yaml:"field"`
	Message string    `json:"message" yaml:"message"`
}

func (i Issue) String() string { return fmt.Sprintf("%s: %s: %s", i.Kind, i.Field, i.Message) }

var (
	// ErrMalformedConfig marks a config with the wrong shape (non-finite
	// numbers, missing required maps). It is never reported as an Issue.
	ErrMalformedConfig = errors.New("malformed config")
	// ErrInvalidConfig marks a config that has validation issues.
	ErrInvalidConfig = errors.New("invalid config")
)

// ValidationError carries the issues that stopped a computation.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidConfig }

// PhaseLine is one phase row of a Result.
type PhaseLine struct {
	Name              string  `json:"name" yaml:"name"`
	BaselineHours     float64 `json:"baseline_hours" yaml:"baseline_hours"`
	ModeledHours      float64 `json:"modeled_hours" yaml:"modeled_hours"`
	HoursSaved        float64 `json:"hours_saved" yaml:"hours_saved"`
	VariancePct       float64 `json:"variance_pct" yaml:"variance_pct"`
	BaselineCost      float64 `json:"baseline_cost" yaml:"baseline_cost"`
	ModeledCost       float64 `json:"modeled_cost" yaml:"modeled_cost"`
	RiskWeight        float64 `json:"risk_weight" yaml:"risk_weight"`
	RiskAdjustedHours float64 `json:"risk_adjusted_hours" yaml:"risk_adjusted_hours"`
	CostAvoidance     bool    `json:"cost_avoidance" yaml:"cost_avoidance"`
}

// RoleLine is one role row of a Result. Baseline hours are the role's share
// of each phase's baseline by its table hours.
type RoleLine struct {
	Name          string           `json:"name" yaml:"name"`
	Group         RoleGroup        `json:"group" yaml:"group"`
	HourlyRate    float64          `json:"hourly_rate" yaml:"hourly_rate"`
	BaselineHours float64          `json:"baseline_hours" yaml:"baseline_hours"`
	ModeledHours  float64          `json:"modeled_hours" yaml:"modeled_hours"`
	HoursSaved    float64          `json:"hours_saved" yaml:"hours_saved"`
	PctSaved      float64          `json:"pct_saved" yaml:"pct_saved"`
	CostSavings   float64          `json:"cost_savings" yaml:"cost_savings"`
	Buckets       []RoleBucketLine `json:"buckets" yaml:"buckets"`
}

// RoleBucketLine is a role's savings in one strategic category, priced at
// the role's hourly rate.
type RoleBucketLine struct {
	Name         Bucket  `json:"name" yaml:"name"`
	HoursSaved   float64 `json:"hours_saved" yaml:"hours_saved"`
	DollarsSaved float64 `json:"dollars_saved" yaml:"dollars_saved"`
}

// GroupLine rolls role rows up to a team group.
type GroupLine struct {
	Group         RoleGroup `json:"group" yaml:"group"`
	BaselineHours float64   `json:"baseline_hours" yaml:"baseline_hours"`
	ModeledHours  float64   `json:"modeled_hours" yaml:"modeled_hours"`
	HoursSaved    float64   `json:"hours_saved" yaml:"hours_saved"`
	PctSaved      float64   `json:"pct_saved" yaml:"pct_saved"`
	CostSavings   float64   `json:"cost_savings" yaml:"cost_savings"`
}

// BucketLine is one strategic category row of a Result.
type BucketLine struct {
	Name         Bucket  `json:"name" yaml:"name"`
	HoursSaved   float64 `json:"hours_saved" yaml:"hours_saved"`
	DollarsSaved float64 `json:"dollars_saved" yaml:"dollars_saved"`
	PctOfTotal   float64 `json:"pct_of_total" yaml:"pct_of_total"`
}

// InitiativeLine is the attributed impact of one initiative with nonzero maturity.
type InitiativeLine struct {
	Name             string  `json:"name" yaml:"name"`
	Maturity         float64 `json:"maturity" yaml:"maturity"`
	HoursSaved       float64 `json:"hours_saved" yaml:"hours_saved"`
	DeliveryHours    float64 `json:"delivery_hours" yaml:"delivery_hours"`
	AvoidanceHours   float64 `json:"avoidance_hours" yaml:"avoidance_hours"`
	FinancialImpact  float64 `json:"financial_impact" yaml:"financial_impact"`
	UnscaledDeltaSum float64 `json:"unscaled_delta_sum" yaml:"unscaled_delta_sum"`
}

// Result is the output of Compute.
type Result struct {
	TotalBaselineHours float64 `json:"total_baseline_hours" yaml:"total_baseline_hours"`
	TotalModeledHours  float64 `json:"total_modeled_hours" yaml:"total_modeled_hours"`
	TotalHoursSaved    float64 `json:"total_hours_saved" yaml:"total_hours_saved"`
	SavingsPct         float64 `json:"savings_pct" yaml:"savings_pct"`
	BaselineCost       float64 `json:"baseline_cost" yaml:"baseline_cost"`
	ModeledCost        float64 `json:"modeled_cost" yaml:"modeled_cost"`
	DirectCostSavings  float64 `json:"direct_cost_savings" yaml:"direct_cost_savings"`
	CostAvoidance      float64 `json:"cost_avoidance" yaml:"cost_avoidance"`
	FinancialBenefit   float64 `json:"financial_benefit" yaml:"financial_benefit"`

	// Clamped reports that the reduction ceiling scaled every phase's
	// savings by ClampFactor. ClampFactor is 1 when not clamped.
	Clamped     bool    `json:"clamped" yaml:"clamped"`
	ClampFactor float64 `json:"clamp_factor" yaml:"clamp_factor"`

	ExceedsCredibleReduction bool `json:"exceeds_credible_reduction" yaml:"exceeds_credible_reduction"`

	PerPhase      []PhaseLine      `json:"per_phase" yaml:"per_phase"`
	PerRole       []RoleLine       `json:"per_role" yaml:"per_role"`
	PerGroup      []GroupLine      `json:"per_group" yaml:"per_group"`
	PerBucket     []BucketLine     `json:"per_bucket" yaml:"per_bucket"`
	PerInitiative []InitiativeLine `json:"per_initiative" yaml:"per_initiative"`
}
