package planner

import "time"

// Task scopes. The scope tag decides which coordinates are meaningful: a month
// task carries year+month, a week task adds week-of-month, a day task carries
// year+month+day.
const (
	ScopeMonth = "month"
	ScopeWeek  = "week"
	ScopeDay   = "day"
)

type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Scope       string    `json:"scope"`
	Year        int       `json:"scope_year"`
	Month       int       `json:"scope_month,omitempty"` // 1-12, 0 when not applicable
	Week        int       `json:"scope_week,omitempty"`  // week of month, 0 when not applicable
	Day         int       `json:"scope_day,omitempty"`   // day of month, 0 when not applicable
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScopeKey identifies the slice of time a task set belongs to. Unused
// coordinates are zero.
type ScopeKey struct {
	Scope string
	Year  int
	Month int
	Week  int
	Day   int
}

type MonthlyPlan struct {
	ID        int       `json:"id"`
	GoalID    int       `json:"goal_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"` // 1-12
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
