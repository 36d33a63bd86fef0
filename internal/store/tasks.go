package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smart-planner-backend/internal/planner"
)

// Tasks is the Postgres-backed task store. Scope coordinates that don't apply
// to a task's scope are stored as NULL; planner.Task uses 0 for the same.
type Tasks struct {
	DB *sql.DB
}

func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}

func nullStr(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

// scopeConditions builds WHERE clauses for the coordinates present in key.
// Zero coordinates are not filtered on, which lets handlers list broadly
// (e.g. all tasks of a month regardless of scope).
func scopeConditions(key planner.ScopeKey) (string, []any) {
	conds := []string{}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if key.Scope != "" {
		add("scope = $%d", key.Scope)
	}
	if key.Year != 0 {
		add("scope_year = $%d", key.Year)
	}
	if key.Month != 0 {
		add("scope_month = $%d", key.Month)
	}
	if key.Week != 0 {
		add("scope_week = $%d", key.Week)
	}
	if key.Day != 0 {
		add("scope_day = $%d", key.Day)
	}
	if len(conds) == 0 {
		return "TRUE", args
	}
	return strings.Join(conds, " AND "), args
}

func (s *Tasks) ListTasks(ctx context.Context, key planner.ScopeKey) ([]planner.Task, error) {
	where, args := scopeConditions(key)
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, description, completed, scope,
		       scope_year, scope_month, scope_week, scope_day,
		       sort_order, created_at
		FROM tasks
		WHERE `+where+`
		ORDER BY sort_order ASC, created_at ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []planner.Task
	for rows.Next() {
		var t planner.Task
		var desc sql.NullString
		var month, week, day sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Title, &desc, &t.Completed, &t.Scope,
			&t.Year, &month, &week, &day, &t.SortOrder, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Description = desc.String
		t.Month = int(month.Int64)
		t.Week = int(week.Int64)
		t.Day = int(day.Int64)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Tasks) DeleteTasks(ctx context.Context, key planner.ScopeKey) error {
	where, args := scopeConditions(key)
	_, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE `+where, args...)
	return err
}

// CreateTask persists t, assigning the next sort order within its
// scope+coordinates (0 for the first task after a regeneration wipe).
func (s *Tasks) CreateTask(ctx context.Context, t planner.Task) (planner.Task, error) {
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO tasks (title, description, completed, scope, scope_year, scope_month, scope_week, scope_day, sort_order)
		SELECT $1, $2, FALSE, $3, $4, $5, $6, $7,
		       COALESCE(MAX(sort_order) + 1, 0)
		FROM tasks
		WHERE scope = $3 AND scope_year = $4
		  AND scope_month IS NOT DISTINCT FROM $5
		  AND scope_week  IS NOT DISTINCT FROM $6
		  AND scope_day   IS NOT DISTINCT FROM $7
		RETURNING id, sort_order, created_at
	`, t.Title, nullStr(t.Description), t.Scope, t.Year,
		nullInt(t.Month), nullInt(t.Week), nullInt(t.Day),
	).Scan(&t.ID, &t.SortOrder, &t.CreatedAt)
	t.Completed = false
	return t, err
}

// TaskPatch carries a partial task update; nil fields are untouched.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (s *Tasks) UpdateTask(ctx context.Context, id int, patch TaskPatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", nullStr(*patch.Description))
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Tasks) DeleteTask(ctx context.Context, id int) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
