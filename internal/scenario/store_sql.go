package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, sc Scenario) error {
	cj, err := json.Marshal(sc.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO scenarios (id,name,description,config_json,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description, config_json=EXCLUDED.config_json`,
		sc.ID, sc.Name, sc.Description, string(cj), sc.CreatedBy, sc.CreatedAt.UnixMilli())
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Scenario, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,description,config_json,created_by,created_at FROM scenarios WHERE id=$1`, id)
	var (
		sc      Scenario
		cjson   string
		created int64
	)
	if err := row.Scan(&sc.ID, &sc.Name, &sc.Description, &cjson, &sc.CreatedBy, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Scenario{}, ErrNotFound
		}
		return Scenario{}, err
	}
	if err := json.Unmarshal([]byte(cjson), &sc.Config); err != nil {
		return Scenario{}, fmt.Errorf("decode config %s: %w", id, err)
	}
	sc.CreatedAt = time.UnixMilli(created).UTC()
	return sc, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,description,created_by,created_at FROM scenarios
		 ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sm      Summary
			created int64
		)
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.Description, &sm.CreatedBy, &created); err != nil {
			return nil, err
		}
		sm.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
