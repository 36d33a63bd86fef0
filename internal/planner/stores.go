package planner

import (
	"context"

	"smart-planner-backend/internal/ai"
)

// The planner reaches persistence and the model backend only through these
// interfaces; Postgres implementations live in internal/store.

type GoalStore interface {
	ListGoals(ctx context.Context, year int) ([]Goal, error)
}

type TaskStore interface {
	ListTasks(ctx context.Context, key ScopeKey) ([]Task, error)
	// DeleteTasks removes every task for the exact scope+coordinates.
	DeleteTasks(ctx context.Context, key ScopeKey) error
	// CreateTask persists t, assigning the next sort order within its
	// scope+coordinates (so a wiped scope fills up from 0 again).
	CreateTask(ctx context.Context, t Task) (Task, error)
}

type PlanStore interface {
	DeletePlans(ctx context.Context, year, month int, goalIDs []int) error
	CreatePlan(ctx context.Context, goalID, year, month int, summary string) error
}

type SettingsStore interface {
	// GetWorkingDays returns weekday indices (0=Sunday..6=Saturday) on which
	// substantive work may be scheduled, defaulting to Monday-Friday.
	GetWorkingDays(ctx context.Context) ([]int, error)
}

// ModelClient is the text-generation boundary (see internal/ai.Client).
type ModelClient interface {
	Chat(ctx context.Context, messages []ai.Message, jsonMode bool) (string, error)
}

// SourceContextBuilder supplies formatted external-source context for the
// daily prompt. Optional; a nil builder means no external context.
type SourceContextBuilder interface {
	DailyContext(ctx context.Context) (string, error)
}
