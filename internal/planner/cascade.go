package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smart-planner-backend/internal/ai"
)

// Cascade scopes accepted by RunCascade. "full" regenerates year → month →
// week → day; "week" assumes month tasks exist and regenerates week → day;
// "day" regenerates today only.
const (
	CascadeFull = "full"
	CascadeWeek = "week"
	CascadeDay  = "day"
)

const fallbackMonthFocus = "Focus on your goals"

// Planner sequences the horizon-by-horizon generation. Stages run strictly in
// order: week generation reads the month's task list, day generation reads the
// week's. Failure at any stage aborts the rest of the run but never rolls back
// what earlier stages persisted.
type Planner struct {
	Goals    GoalStore
	Tasks    TaskStore
	Plans    PlanStore
	Settings SettingsStore
	AI       ModelClient
	Sources  SourceContextBuilder // optional external context for the daily prompt
	Log      *zap.Logger

	// Serializes cascade runs; duplicate triggers for the same coordinates
	// would otherwise race on delete-then-recreate.
	mu sync.Mutex
}

func New(goals GoalStore, tasks TaskStore, plans PlanStore, settings SettingsStore, model ModelClient, log *zap.Logger) *Planner {
	return &Planner{
		Goals:    goals,
		Tasks:    tasks,
		Plans:    plans,
		Settings: settings,
		AI:       model,
		Log:      log,
	}
}

// Model output shapes. Decoded strictly — a reply that doesn't match is a
// MalformedResponseError from the parser.

type monthFocus struct {
	Month int    `json:"month"` // 1-12
	Focus string `json:"focus"`
}

type yearlyPlanPayload struct {
	Months []monthFocus `json:"months"`
}

type taskItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type taskListPayload struct {
	Tasks []taskItem `json:"tasks"`
}

// RunCascade executes one generation run. now is read once; every stage sees
// the same PlanningClock even if the run spans a date boundary.
func (p *Planner) RunCascade(ctx context.Context, scope string, now time.Time) error {
	if scope != CascadeFull && scope != CascadeWeek && scope != CascadeDay {
		return &ValidationError{Reason: fmt.Sprintf("unknown scope %q", scope)}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	clock := NewPlanningClock(now)

	// Independent reads; results combine only after both finish.
	var goals []Goal
	var workingDays []int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = p.Goals.ListGoals(gctx, clock.Year)
		return err
	})
	g.Go(func() error {
		var err error
		workingDays, err = p.Settings.GetWorkingDays(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load inputs: %w", err)
	}

	if len(goals) == 0 {
		return &ValidationError{Reason: fmt.Sprintf("no goals set for %d", clock.Year)}
	}

	p.Log.Info("cascade started",
		zap.String("scope", scope),
		zap.Int("year", clock.Year),
		zap.Int("month", clock.Month),
		zap.Int("day", clock.DayOfMonth),
		zap.Int("goals", len(goals)),
	)

	if scope == CascadeFull {
		focus, err := p.runYearlyStage(ctx, clock, goals)
		if err != nil {
			return fmt.Errorf("yearly stage: %w", err)
		}
		if err := p.runMonthlyStage(ctx, clock, goals, focus); err != nil {
			return fmt.Errorf("monthly stage: %w", err)
		}
	}

	if scope == CascadeFull || scope == CascadeWeek {
		if err := p.runWeeklyStage(ctx, clock, goals, workingDays); err != nil {
			return fmt.Errorf("weekly stage: %w", err)
		}
	}

	if err := p.runDailyStage(ctx, clock, goals, workingDays); err != nil {
		return fmt.Errorf("daily stage: %w", err)
	}

	p.Log.Info("cascade finished", zap.String("scope", scope))
	return nil
}

// runYearlyStage generates per-month focus summaries for the remaining months
// and returns the current month's focus for the monthly stage.
func (p *Planner) runYearlyStage(ctx context.Context, clock PlanningClock, goals []Goal) (string, error) {
	var plan yearlyPlanPayload
	if err := p.callModel(ctx, yearlyPlanMessages(goals, clock), &plan); err != nil {
		return "", err
	}

	goalIDs := make([]int, len(goals))
	for i, g := range goals {
		goalIDs[i] = g.ID
	}

	focus := fallbackMonthFocus
	for _, m := range plan.Months {
		if m.Month < clock.Month || m.Month > 12 {
			p.Log.Warn("model planned an out-of-range month, skipping", zap.Int("month", m.Month))
			continue
		}
		if err := p.Plans.DeletePlans(ctx, clock.Year, m.Month, goalIDs); err != nil {
			return "", err
		}
		// Stored against the first goal for convenience; the summary covers
		// the whole goal set for that month.
		if err := p.Plans.CreatePlan(ctx, goals[0].ID, clock.Year, m.Month, m.Focus); err != nil {
			return "", err
		}
		if m.Month == clock.Month {
			focus = m.Focus
		}
	}

	p.Log.Info("yearly plan persisted", zap.Int("months", len(plan.Months)))
	return focus, nil
}

func (p *Planner) runMonthlyStage(ctx context.Context, clock PlanningClock, goals []Goal, focus string) error {
	rng := MonthlyTaskRange(clock.RemainingDaysInMonth(), AverageMultiplier(goals))

	var payload taskListPayload
	if err := p.callModel(ctx, monthlyTasksMessages(goals, focus, clock, rng), &payload); err != nil {
		return err
	}

	key := ScopeKey{Scope: ScopeMonth, Year: clock.Year, Month: clock.Month}
	return p.replaceTasks(ctx, key, payload.Tasks)
}

func (p *Planner) runWeeklyStage(ctx context.Context, clock PlanningClock, goals []Goal, workingDays []int) error {
	monthKey := ScopeKey{Scope: ScopeMonth, Year: clock.Year, Month: clock.Month}
	monthTasks, err := p.Tasks.ListTasks(ctx, monthKey)
	if err != nil {
		return err
	}

	// Previous week's completion feeds the load adjustment. Week 1 has no
	// in-month predecessor.
	var prev *CompletionContext
	if clock.WeekOfMonth > 1 {
		prevTasks, err := p.Tasks.ListTasks(ctx, ScopeKey{
			Scope: ScopeWeek, Year: clock.Year, Month: clock.Month, Week: clock.WeekOfMonth - 1,
		})
		if err != nil {
			return err
		}
		prev = BuildCompletionContext(prevTasks)
	}

	rng := WeeklyTaskRange(RemainingDaysCountInWeek(clock.DayOfWeek), AverageMultiplier(goals))

	var payload taskListPayload
	msgs := weeklyTasksMessages(monthTasks, clock, rng, workingDays, prev)
	if err := p.callModel(ctx, msgs, &payload); err != nil {
		return err
	}

	key := ScopeKey{Scope: ScopeWeek, Year: clock.Year, Month: clock.Month, Week: clock.WeekOfMonth}
	return p.replaceTasks(ctx, key, payload.Tasks)
}

func (p *Planner) runDailyStage(ctx context.Context, clock PlanningClock, goals []Goal, workingDays []int) error {
	// Week tasks may legitimately be empty when a "day" run arrives before any
	// week generation; the prompt then simply carries an empty checklist.
	weekTasks, err := p.Tasks.ListTasks(ctx, ScopeKey{
		Scope: ScopeWeek, Year: clock.Year, Month: clock.Month, Week: clock.WeekOfMonth,
	})
	if err != nil {
		return err
	}

	yYear, yMonth, yDay := clock.Yesterday()
	yesterdayTasks, err := p.Tasks.ListTasks(ctx, ScopeKey{
		Scope: ScopeDay, Year: yYear, Month: yMonth, Day: yDay,
	})
	if err != nil {
		return err
	}
	prev := BuildCompletionContext(yesterdayTasks)

	rng := DailyTaskRange(clock.IsWeekend(), isWorkingDay(clock.DayOfWeek, workingDays), AverageMultiplier(goals))

	sourceContext := ""
	if p.Sources != nil {
		sourceContext, err = p.Sources.DailyContext(ctx)
		if err != nil {
			// External context is best-effort; a dead URL must not block planning.
			p.Log.Warn("external source context unavailable", zap.Error(err))
			sourceContext = ""
		}
	}

	var payload taskListPayload
	msgs := dailyTasksMessages(weekTasks, clock, rng, workingDays, prev, sourceContext)
	if err := p.callModel(ctx, msgs, &payload); err != nil {
		return err
	}

	key := ScopeKey{Scope: ScopeDay, Year: clock.Year, Month: clock.Month, Day: clock.DayOfMonth}
	return p.replaceTasks(ctx, key, payload.Tasks)
}

func (p *Planner) callModel(ctx context.Context, messages []ai.Message, v any) error {
	raw, err := p.AI.Chat(ctx, messages, true)
	if err != nil {
		return err
	}
	return ai.ParseStructured(raw, v)
}

// replaceTasks deletes everything at key and persists the new set with
// sequential sort order. Regeneration is a full replace, never a merge.
func (p *Planner) replaceTasks(ctx context.Context, key ScopeKey, items []taskItem) error {
	if err := p.Tasks.DeleteTasks(ctx, key); err != nil {
		return err
	}
	for _, item := range items {
		_, err := p.Tasks.CreateTask(ctx, Task{
			Title:       item.Title,
			Description: item.Description,
			Scope:       key.Scope,
			Year:        key.Year,
			Month:       key.Month,
			Week:        key.Week,
			Day:         key.Day,
		})
		if err != nil {
			return err
		}
	}
	p.Log.Info("tasks regenerated",
		zap.String("scope", key.Scope),
		zap.Int("count", len(items)),
	)
	return nil
}

// GenerateGoalReply runs one turn of the conversational goal-setting flow.
// history is the stored conversation, oldest first, without a system message.
func (p *Planner) GenerateGoalReply(ctx context.Context, history []ai.Message, year int) (string, error) {
	msgs := make([]ai.Message, 0, len(history)+1)
	msgs = append(msgs, goalChatSystemMessage(year))
	msgs = append(msgs, history...)
	return p.AI.Chat(ctx, msgs, false)
}

// TryExtractFinalizedGoals reports the goal drafts embedded in an assistant
// reply once the user has confirmed, or nil while the conversation is ongoing.
func (p *Planner) TryExtractFinalizedGoals(assistantText string) []ai.GoalDraft {
	return ai.ExtractFinalizedGoals(assistantText)
}
