package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"smart-planner-backend/internal/planner"
)

// Plans is the Postgres-backed monthly plan store.
type Plans struct {
	DB *sql.DB
}

func (s *Plans) DeletePlans(ctx context.Context, year, month int, goalIDs []int) error {
	_, err := s.DB.ExecContext(ctx, `
		DELETE FROM monthly_plans
		WHERE year = $1 AND month = $2 AND goal_id = ANY($3)
	`, year, month, pq.Array(goalIDs))
	return err
}

func (s *Plans) CreatePlan(ctx context.Context, goalID, year, month int, summary string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO monthly_plans (goal_id, year, month, summary)
		VALUES ($1, $2, $3, $4)
	`, goalID, year, month, summary)
	return err
}

func (s *Plans) ListPlansByGoal(ctx context.Context, goalID int) ([]planner.MonthlyPlan, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, goal_id, year, month, summary, created_at
		FROM monthly_plans
		WHERE goal_id = $1
		ORDER BY year ASC, month ASC
	`, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []planner.MonthlyPlan
	for rows.Next() {
		var p planner.MonthlyPlan
		if err := rows.Scan(&p.ID, &p.GoalID, &p.Year, &p.Month, &p.Summary, &p.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Plans) UpdateSummary(ctx context.Context, id int, summary string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE monthly_plans SET summary = $1 WHERE id = $2
	`, summary, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
