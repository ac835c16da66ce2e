package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
	"github.com/mind-engage/n2s-efficiency/internal/eventlog"
)

// Service validates scenarios before storing them and records lifecycle
// events. Event failures are logged and never fail the operation.
type Service struct {
	store  Store
	engine *efficiency.Engine
	events eventlog.Recorder
	log    *slog.Logger
}

func NewService(store Store, engine *efficiency.Engine, events eventlog.Recorder, log *slog.Logger) *Service {
	if events == nil {
		events = eventlog.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, engine: engine, events: events, log: log}
}

type SaveInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Config      efficiency.Config `json:"config"`
}

// Save stores a new scenario. A config with issues is refused with a
// *efficiency.ValidationError.
func (s *Service) Save(ctx context.Context, in SaveInput, createdBy string) (Scenario, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Scenario{}, ErrNameRequired
	}
	issues, err := s.engine.Validate(in.Config)
	if err != nil {
		return Scenario{}, err
	}
	if len(issues) > 0 {
		return Scenario{}, &efficiency.ValidationError{Issues: issues}
	}

	sc := Scenario{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		Config:      in.Config.Clone(),
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.store.Put(ctx, sc); err != nil {
		return Scenario{}, fmt.Errorf("put scenario: %w", err)
	}
	s.record(ctx, eventlog.TypeScenarioSaved, sc.ID, sc.Summary())
	return sc, nil
}

func (s *Service) Get(ctx context.Context, id string) (Scenario, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	return s.store.List(ctx, opts)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, eventlog.TypeScenarioDeleted, id, map[string]string{"id": id})
	return nil
}

// Compute runs the saved config of scenario id.
func (s *Service) Compute(ctx context.Context, id string) (efficiency.Result, error) {
	sc, err := s.store.Get(ctx, id)
	if err != nil {
		return efficiency.Result{}, err
	}
	res, err := s.engine.Compute(sc.Config)
	if err != nil {
		return efficiency.Result{}, err
	}
	s.record(ctx, eventlog.TypeScenarioComputed, id, map[string]any{
		"total_hours_saved": res.TotalHoursSaved,
		"financial_benefit": res.FinancialBenefit,
		"clamped":           res.Clamped,
	})
	return res, nil
}

func (s *Service) record(ctx context.Context, typ, key string, data any) {
	e, err := eventlog.NewEvent(typ, key, data)
	if err == nil {
		err = s.events.Append(ctx, e)
	}
	if err != nil {
		s.log.WarnContext(ctx, "append event failed", "type", typ, "key", key, "error", err)
	}
}
