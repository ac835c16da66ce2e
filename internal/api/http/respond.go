package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
)

// maxBodyBytes caps request bodies; a sweep of MaxConfigs configs fits.
const maxBodyBytes = 4 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes a single JSON document into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("bad json: trailing data")
	}
	return nil
}

// decodeConfig decodes a config body. Omitted fields keep their defaults;
// maps and lists given in the body replace the defaults whole.
func decodeConfig(w http.ResponseWriter, r *http.Request) (efficiency.Config, error) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return efficiency.Config{}, err
	}
	return configFromRaw(raw)
}

func configFromRaw(raw json.RawMessage) (efficiency.Config, error) {
	if len(raw) == 0 {
		return efficiency.DefaultConfig(), nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	cfg, err := efficiency.DecodeConfig(dec.Decode)
	if err != nil {
		return efficiency.Config{}, fmt.Errorf("bad json: %w", err)
	}
	return cfg, nil
}

type issuesResponse struct {
	Error  string             `json:"error,omitempty"`
	Issues []efficiency.Issue `json:"issues"`
}

// writeEngineError maps engine errors: issues are 422 with the issue list,
// malformed configs are 400.
func writeEngineError(w http.ResponseWriter, err error) {
	var verr *efficiency.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, issuesResponse{Error: efficiency.ErrInvalidConfig.Error(), Issues: verr.Issues})
	case errors.Is(err, efficiency.ErrMalformedConfig):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
