package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smart-planner-backend/internal/planner"
)

// Goals is the Postgres-backed goal store.
type Goals struct {
	DB *sql.DB
}

func clampMultiplier(m float64) float64 {
	if m < 1 {
		return 1
	}
	if m > 5 {
		return 5
	}
	return m
}

func (s *Goals) ListGoals(ctx context.Context, year int) ([]planner.Goal, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, description, year, multiplier, frequency, category, created_at
		FROM goals
		WHERE year = $1
		ORDER BY created_at ASC, id ASC
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []planner.Goal
	for rows.Next() {
		var g planner.Goal
		var freq sql.NullString
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.Year, &g.Multiplier, &freq, &g.Category, &g.CreatedAt); err != nil {
			return nil, err
		}
		g.Frequency = freq.String
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *Goals) CreateGoal(ctx context.Context, g planner.Goal) (planner.Goal, error) {
	g.Multiplier = clampMultiplier(g.Multiplier)
	if g.Category == "" {
		g.Category = planner.CategoryGrowth
	}
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO goals (title, description, year, multiplier, frequency, category)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id, created_at
	`, g.Title, g.Description, g.Year, g.Multiplier, g.Frequency, g.Category).Scan(&g.ID, &g.CreatedAt)
	return g, err
}

// GoalPatch carries the fields of a partial update; nil means leave as is.
type GoalPatch struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Multiplier  *float64 `json:"multiplier"`
	Frequency   *string  `json:"frequency"`
	Category    *string  `json:"category"`
}

func (s *Goals) UpdateGoal(ctx context.Context, id int, patch GoalPatch) error {
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
		add("description", *patch.Description)
	}
	if patch.Multiplier != nil {
		add("multiplier", clampMultiplier(*patch.Multiplier))
	}
	if patch.Frequency != nil {
		if *patch.Frequency == "" {
			sets = append(sets, "frequency = NULL")
		} else {
			add("frequency", *patch.Frequency)
		}
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE goals SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Goals) DeleteGoal(ctx context.Context, id int) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
