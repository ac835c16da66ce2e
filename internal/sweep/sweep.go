// Package sweep computes many configs against one engine in parallel.
package sweep

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
)

// MaxConfigs bounds a single sweep.
const MaxConfigs = 1000

var ErrTooManyConfigs = fmt.Errorf("sweep accepts at most %d configs", MaxConfigs)

// Outcome is the result of one config in a sweep. Exactly one of Result and
// Issues/Error is meaningful.
type Outcome struct {
	Index  int                `json:"index"`
	Result *efficiency.Result `json:"result,omitempty"`
	Issues []efficiency.Issue `json:"issues,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func (o Outcome) OK() bool { return o.Result != nil }

// Run computes every config with at most limit in flight and returns the
// outcomes in input order. A config that fails validation is recorded on its
// outcome; only cancellation of ctx fails the sweep.
func Run(ctx context.Context, engine *efficiency.Engine, configs []efficiency.Config, limit int) ([]Outcome, error) {
	if len(configs) > MaxConfigs {
		return nil, ErrTooManyConfigs
	}
	if limit < 1 {
		limit = 1
	}
	out := make([]Outcome, len(configs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range configs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			out[i] = compute(engine, i, configs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func compute(engine *efficiency.Engine, i int, cfg efficiency.Config) Outcome {
	o := Outcome{Index: i}
	res, err := engine.Compute(cfg)
	var verr *efficiency.ValidationError
	switch {
	case err == nil:
		o.Result = &res
	case errors.As(err, &verr):
		o.Issues = verr.Issues
		o.Error = efficiency.ErrInvalidConfig.Error()
	default:
		o.Error = err.Error()
	}
	return o
}

// MaturityGrid returns steps+1 copies of base with initiative's maturity set
// to 0, 100/steps, ..., 100.
func MaturityGrid(base efficiency.Config, initiative string, steps int) ([]efficiency.Config, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be >= 1, got %d", steps)
	}
	if steps+1 > MaxConfigs {
		return nil, ErrTooManyConfigs
	}
	out := make([]efficiency.Config, 0, steps+1)
	for s := 0; s <= steps; s++ {
		cfg := base.Clone()
		if cfg.InitiativeMaturity == nil {
			cfg.InitiativeMaturity = map[string]float64{}
		}
		cfg.InitiativeMaturity[initiative] = 100 * float64(s) / float64(steps)
		out = append(out, cfg)
	}
	return out, nil
}
