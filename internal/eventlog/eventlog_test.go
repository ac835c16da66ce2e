package eventlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/n2s-efficiency/internal/db"
)

func TestEventRepoAppendAndSince(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:eventlog_test?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })

	repo := NewEventRepo(dbh, "")
	for _, typ := range []string{TypeScenarioSaved, TypeScenarioComputed, TypeScenarioDeleted} {
		e, err := NewEvent(typ, "s-1", map[string]string{"name": "baseline"})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, e))
	}

	all, err := repo.Since(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, TypeScenarioSaved, all[0].Type)
	assert.Equal(t, "local", all[0].SiteID)
	assert.JSONEq(t, `{"name":"baseline"}`, all[0].DataJSON)

	tail, err := repo.Since(ctx, all[0].Seq, 10)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, TypeScenarioDeleted, tail[1].Type)
}

func TestDiscard(t *testing.T) {
	var r Recorder = Discard{}
	assert.NoError(t, r.Append(context.Background(), Event{Type: TypeScenarioSaved}))
}
