package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
	"github.com/mind-engage/n2s-efficiency/internal/sweep"
)

func newDefaultsCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default config with every initiative at 50% maturity",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			cfg := efficiency.DefaultConfig()
			for _, name := range e.Tables().Matrix().Names() {
				cfg.InitiativeMaturity[name] = efficiency.DefaultMaturity
			}
			return write(cmd.OutOrStdout(), o.output, cfg)
		},
	}
	cmd.Flags().StringVarP(&o.output, "output", "o", "yaml", "json|yaml")
	return cmd
}

func newTablesCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the benefit matrix and role table",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), o.output, e.Tables().File())
		},
	}
	cmd.Flags().StringVarP(&o.output, "output", "o", "yaml", "json|yaml")
	return cmd
}

func newValidateCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config and list every issue",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			issues, err := e.Validate(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				fmt.Fprintln(out, "ok")
				return nil
			}
			for _, is := range issues {
				fmt.Fprintln(out, is.String())
			}
			return fmt.Errorf("%d issue(s)", len(issues))
		},
	}
	cmd.Flags().StringVarP(&o.configPath, "file", "f", "", "config file (YAML or JSON, - for stdin)")
	return cmd
}

func newComputeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute savings for a config",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			res, err := e.Compute(cfg)
			var verr *efficiency.ValidationError
			if errors.As(err, &verr) {
				for _, is := range verr.Issues {
					fmt.Fprintln(cmd.ErrOrStderr(), is.String())
				}
			}
			if err != nil {
				return err
			}
			if res.Clamped {
				o.log.Warn("savings scaled to the reduction ceiling", "factor", res.ClampFactor)
			}
			if res.ExceedsCredibleReduction {
				o.log.Warn("savings exceed the credible reduction", "pct", res.SavingsPct)
			}
			return write(cmd.OutOrStdout(), o.output, res)
		},
	}
	cmd.Flags().StringVarP(&o.configPath, "file", "f", "", "config file (YAML or JSON, - for stdin)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "yaml", "json|yaml")
	return cmd
}

func newSweepCmd(o *options) *cobra.Command {
	var (
		initiative  string
		steps       int
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Vary one initiative's maturity from 0 to 100 and compute each step",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.engine()
			if err != nil {
				return err
			}
			base, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !e.Tables().Matrix().Has(initiative) {
				return fmt.Errorf("unknown initiative %q", initiative)
			}
			grid, err := sweep.MaturityGrid(base, initiative, steps)
			if err != nil {
				return err
			}
			outcomes, err := sweep.Run(cmd.Context(), e, grid, concurrency)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %12s %14s %8s\n", "maturity", "hours_saved", "benefit", "clamped")
			for i, oc := range outcomes {
				m := grid[i].InitiativeMaturity[initiative]
				if !oc.OK() {
					fmt.Fprintf(out, "%-10.1f %s\n", m, oc.Error)
					continue
				}
				fmt.Fprintf(out, "%-10.1f %12.1f %14.2f %8t\n", m, oc.Result.TotalHoursSaved, oc.Result.FinancialBenefit, oc.Result.Clamped)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&o.configPath, "file", "f", "", "base config file (YAML or JSON, - for stdin)")
	cmd.Flags().StringVar(&initiative, "initiative", "", "initiative to vary")
	cmd.Flags().IntVar(&steps, "steps", 5, "number of steps between 0 and 100")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "configs computed in parallel")
	_ = cmd.MarkFlagRequired("initiative")
	return cmd
}
