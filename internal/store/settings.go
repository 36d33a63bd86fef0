package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"smart-planner-backend/internal/fetcher"
)

// Settings is the Postgres-backed singleton settings row. The first read
// creates it with Monday-Friday working days and no external sources.
type Settings struct {
	DB *sql.DB
}

type AppSettings struct {
	WorkingDays    []int            `json:"working_days"`
	DynamicSources []fetcher.Source `json:"dynamic_sources"`
}

var defaultWorkingDays = []int{1, 2, 3, 4, 5} // Monday-Friday

func (s *Settings) Get(ctx context.Context) (AppSettings, error) {
	var days pq.Int64Array
	var sourcesJSON []byte

	err := s.DB.QueryRowContext(ctx, `
		SELECT working_days, dynamic_sources FROM settings WHERE id = 'default'
	`).Scan(&days, &sourcesJSON)
	if err == sql.ErrNoRows {
		return s.createDefault(ctx)
	}
	if err != nil {
		return AppSettings{}, err
	}

	out := AppSettings{WorkingDays: make([]int, len(days))}
	for i, d := range days {
		out.WorkingDays[i] = int(d)
	}
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &out.DynamicSources); err != nil {
			return AppSettings{}, err
		}
	}
	return out, nil
}

func (s *Settings) createDefault(ctx context.Context) (AppSettings, error) {
	days := make(pq.Int64Array, len(defaultWorkingDays))
	for i, d := range defaultWorkingDays {
		days[i] = int64(d)
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO settings (id, working_days, dynamic_sources)
		VALUES ('default', $1, '[]'::jsonb)
		ON CONFLICT (id) DO NOTHING
	`, days)
	if err != nil {
		return AppSettings{}, err
	}
	return AppSettings{WorkingDays: append([]int(nil), defaultWorkingDays...)}, nil
}

func (s *Settings) SetWorkingDays(ctx context.Context, days []int) error {
	arr := make(pq.Int64Array, len(days))
	for i, d := range days {
		arr[i] = int64(d)
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO settings (id, working_days, dynamic_sources)
		VALUES ('default', $1, '[]'::jsonb)
		ON CONFLICT (id) DO UPDATE SET working_days = EXCLUDED.working_days, updated_at = now()
	`, arr)
	return err
}

func (s *Settings) SetDynamicSources(ctx context.Context, sources []fetcher.Source) error {
	raw, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO settings (id, dynamic_sources)
		VALUES ('default', $1::jsonb)
		ON CONFLICT (id) DO UPDATE SET dynamic_sources = EXCLUDED.dynamic_sources, updated_at = now()
	`, string(raw))
	return err
}

// GetWorkingDays satisfies planner.SettingsStore.
func (s *Settings) GetWorkingDays(ctx context.Context) ([]int, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return settings.WorkingDays, nil
}

// DynamicSources satisfies fetcher.SourceLister.
func (s *Settings) DynamicSources(ctx context.Context) ([]fetcher.Source, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return settings.DynamicSources, nil
}
