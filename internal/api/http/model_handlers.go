package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
	"github.com/mind-engage/n2s-efficiency/internal/metrics"
	"github.com/mind-engage/n2s-efficiency/internal/sweep"
)

// GET /model/tables
func TablesHandler(engine *efficiency.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Tables().File())
	}
}

// GET /model/defaults
func DefaultsHandler(engine *efficiency.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := efficiency.DefaultConfig()
		cfg.InitiativeMaturity = make(map[string]float64)
		for _, name := range engine.Tables().Matrix().Names() {
			cfg.InitiativeMaturity[name] = efficiency.DefaultMaturity
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}

// POST /model/validate. Always 200 for a well-formed config; issues may be empty.
func ValidateHandler(engine *efficiency.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := decodeConfig(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		issues, err := engine.Validate(cfg)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if issues == nil {
			issues = []efficiency.Issue{}
		}
		writeJSON(w, http.StatusOK, issuesResponse{Issues: issues})
	}
}

// POST /model/compute
func ComputeHandler(engine *efficiency.Engine, m *metrics.Metrics, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := decodeConfig(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		start := time.Now()
		res, err := engine.Compute(cfg)
		observe(m, "api", res, err, time.Since(start))
		if err != nil {
			log.InfoContext(r.Context(), "compute refused", "error", err)
			writeEngineError(w, err)
			return
		}
		log.DebugContext(r.Context(), "compute",
			"hours_saved", res.TotalHoursSaved, "clamped", res.Clamped, "benefit", res.FinancialBenefit)
		writeJSON(w, http.StatusOK, res)
	}
}

type sweepRequest struct {
	// Either Configs, or Base + Initiative + Steps for a maturity grid.
	// Each config is decoded on top of the defaults.
	Configs    []json.RawMessage `json:"configs"`
	Base       json.RawMessage   `json:"base"`
	Initiative string            `json:"initiative"`
	Steps      int               `json:"steps"`
}

// POST /model/sweep
func SweepHandler(engine *efficiency.Engine, limit int, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sweepRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		configs := make([]efficiency.Config, 0, len(req.Configs))
		for i, raw := range req.Configs {
			cfg, err := configFromRaw(raw)
			if err != nil {
				http.Error(w, fmt.Sprintf("configs[%d]: %v", i, err), http.StatusBadRequest)
				return
			}
			configs = append(configs, cfg)
		}
		if req.Initiative != "" {
			base, err := configFromRaw(req.Base)
			if err != nil {
				http.Error(w, "base: "+err.Error(), http.StatusBadRequest)
				return
			}
			grid, err := sweep.MaturityGrid(base, req.Initiative, req.Steps)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			configs = append(configs, grid...)
		}
		if len(configs) == 0 {
			http.Error(w, "configs or initiative required", http.StatusBadRequest)
			return
		}

		start := time.Now()
		out, err := sweep.Run(r.Context(), engine, configs, limit)
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, sweep.ErrTooManyConfigs) {
				code = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), code)
			return
		}
		m.ObserveSweep(len(configs))
		per := time.Since(start) / time.Duration(len(configs))
		for _, o := range out {
			outcome := metrics.OutcomeOK
			if !o.OK() {
				outcome = metrics.OutcomeInvalid
			}
			m.ObserveCompute("sweep", outcome, o.OK() && o.Result.Clamped, per)
		}
		writeJSON(w, http.StatusOK, map[string]any{"outcomes": out})
	}
}

func observe(m *metrics.Metrics, source string, res efficiency.Result, err error, d time.Duration) {
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, efficiency.ErrInvalidConfig):
		outcome = metrics.OutcomeInvalid
	case err != nil:
		outcome = metrics.OutcomeMalformed
	}
	m.ObserveCompute(source, outcome, err == nil && res.Clamped, d)
}
