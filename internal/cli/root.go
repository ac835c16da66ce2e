// Package cli implements the n2sctl command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
)

type options struct {
	tablesPath string
	configPath string
	output     string
	verbose    bool

	log *slog.Logger
}

// NewRootCmd builds the command tree. Output goes to the command's out
// writer so tests can capture it.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "n2sctl",
		Short:         "Estimate delivery savings from methodology initiatives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().StringVar(&opts.tablesPath, "tables", "", "YAML/JSON tables file (default: embedded reference tables)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newDefaultsCmd(opts),
		newTablesCmd(opts),
		newValidateCmd(opts),
		newComputeCmd(opts),
		newSweepCmd(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func (o *options) engine() (*efficiency.Engine, error) {
	if o.tablesPath == "" {
		return efficiency.Default()
	}
	t, err := efficiency.LoadTablesFile(o.tablesPath)
	if err != nil {
		return nil, err
	}
	o.log.Debug("loaded tables", "path", o.tablesPath, "initiatives", len(t.Matrix().Names()))
	return efficiency.NewEngine(t), nil
}

// loadConfig decodes a YAML or JSON config; omitted fields keep their
// defaults. "-" reads stdin.
func (o *options) loadConfig(cmd *cobra.Command) (efficiency.Config, error) {
	if o.configPath == "" {
		return efficiency.Config{}, fmt.Errorf("a config file is required (-f)")
	}
	var r io.Reader = cmd.InOrStdin()
	if o.configPath != "-" {
		f, err := os.Open(o.configPath)
		if err != nil {
			return efficiency.Config{}, err
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	cfg, err := efficiency.DecodeConfig(dec.Decode)
	if err != nil && !errors.Is(err, io.EOF) {
		return efficiency.Config{}, fmt.Errorf("decode %s: %w", o.configPath, err)
	}
	o.log.Debug("loaded config", "path", o.configPath, "total_hours", cfg.TotalHours)
	return cfg, nil
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q (json|yaml)", format)
}
