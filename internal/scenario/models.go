package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
)

var (
	ErrNotFound     = errors.New("scenario not found")
	ErrNameRequired = errors.New("scenario name is required")
)

// Scenario is a named, saved Config snapshot.
type Scenario struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Config      efficiency.Config `json:"config"`
	CreatedBy   string            `json:"created_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Summary is the list view of a Scenario.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s Scenario) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, Description: s.Description, CreatedBy: s.CreatedBy, CreatedAt: s.CreatedAt}
}

type ListOpts struct {
	Limit  int
	Offset int
}

// Store persists scenarios. List returns oldest first.
type Store interface {
	Put(ctx context.Context, s Scenario) error
	Get(ctx context.Context, id string) (Scenario, error)
	List(ctx context.Context, opts ListOpts) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}
