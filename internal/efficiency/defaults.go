package efficiency

import (
	"bytes"
	_ "embed"
	"sync"
)

//go:embed defaults.yaml
var defaultTablesYAML []byte

var (
	defaultTablesOnce sync.Once
	defaultTables     *Tables
	defaultTablesErr  error
)

// DefaultTables returns the reference matrix and role table. The embedded
// document is parsed once; the returned tables are shared and immutable.
func DefaultTables() (*Tables, error) {
	defaultTablesOnce.Do(func() {
		defaultTables, defaultTablesErr = LoadTables(bytes.NewReader(defaultTablesYAML))
	})
	return defaultTables, defaultTablesErr
}

// MustDefaultTables is DefaultTables for callers that cannot recover from a
// broken embedded document.
func MustDefaultTables() *Tables {
	t, err := DefaultTables()
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTablesYAML returns a copy of the embedded tables document.
func DefaultTablesYAML() []byte { return append([]byte(nil), defaultTablesYAML...) }
