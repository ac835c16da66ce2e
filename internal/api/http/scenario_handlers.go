package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/n2s-efficiency/internal/metrics"
	"github.com/mind-engage/n2s-efficiency/internal/rbac"
	"github.com/mind-engage/n2s-efficiency/internal/scenario"
)

// POST /scenarios  { "name": "...", "description": "...", "config": {...} }
func SaveScenarioHandler(svc *scenario.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			Config      json.RawMessage `json:"config"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cfg, err := configFromRaw(req.Config)
		if err != nil {
			http.Error(w, "config: "+err.Error(), http.StatusBadRequest)
			return
		}
		in := scenario.SaveInput{Name: req.Name, Description: req.Description, Config: cfg}
		sc, err := svc.Save(r.Context(), in, rbac.SubjectFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, scenario.ErrNameRequired) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeEngineError(w, err)
			return
		}
		m.ScenarioSaved()
		writeJSON(w, http.StatusCreated, sc)
	}
}

// GET /scenarios?limit=&offset=
func ListScenariosHandler(svc *scenario.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), scenario.ListOpts{
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /scenarios/{id}
func GetScenarioHandler(svc *scenario.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}

// DELETE /scenarios/{id}
func DeleteScenarioHandler(svc *scenario.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /scenarios/{id}/compute
func ComputeScenarioHandler(svc *scenario.Service, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		res, err := svc.Compute(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, scenario.ErrNotFound) {
			writeStoreError(w, err)
			return
		}
		observe(m, "scenario", res, err, time.Since(start))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ScenarioOwner reports whether the caller created the scenario in the URL.
func ScenarioOwner(svc *scenario.Service) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		sub := rbac.SubjectFromContext(r.Context())
		if sub == "" {
			return false
		}
		sc, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		return err == nil && sc.CreatedBy == sub
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, scenario.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
