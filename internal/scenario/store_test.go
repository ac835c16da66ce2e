package scenario

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/n2s-efficiency/internal/db"
	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return NewSQLStore(dbh)
}

func stores() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewInMemoryStore() },
		"sqlite": newSQLiteStore,
	}
}

func sample(id string, at time.Time) Scenario {
	cfg := efficiency.DefaultConfig()
	cfg.InitiativeMaturity = map[string]float64{"Automated Testing": 50}
	return Scenario{ID: id, Name: "scenario " + id, Config: cfg, CreatedBy: "analyst", CreatedAt: at}
}

func TestStoreContract(t *testing.T) {
	for name, open := range stores() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

			require.NoError(t, s.Put(ctx, sample("a", base)))
			require.NoError(t, s.Put(ctx, sample("b", base.Add(time.Minute))))
			require.NoError(t, s.Put(ctx, sample("c", base.Add(2*time.Minute))))

			got, err := s.Get(ctx, "b")
			require.NoError(t, err)
			assert.Equal(t, "scenario b", got.Name)
			assert.Equal(t, sample("b", base).Config, got.Config)
			assert.True(t, got.CreatedAt.Equal(base.Add(time.Minute)))

			list, err := s.List(ctx, ListOpts{})
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

			page, err := s.List(ctx, ListOpts{Limit: 1, Offset: 1})
			require.NoError(t, err)
			require.Len(t, page, 1)
			assert.Equal(t, "b", page[0].ID)

			require.NoError(t, s.Delete(ctx, "b"))
			_, err = s.Get(ctx, "b")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "b"), ErrNotFound)

			list, err = s.List(ctx, ListOpts{})
			require.NoError(t, err)
			assert.Len(t, list, 2)
		})
	}
}

func TestMemoryStoreIsolatesConfigMaps(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	sc := sample("a", time.Now())
	require.NoError(t, s.Put(ctx, sc))

	sc.Config.InitiativeMaturity["Automated Testing"] = 99
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Config.InitiativeMaturity["Automated Testing"])

	got.Config.PhaseAllocation[efficiency.PhaseTest] = 0
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 20.0, again.Config.PhaseAllocation[efficiency.PhaseTest])
}
