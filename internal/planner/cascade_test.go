package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smart-planner-backend/internal/ai"
)

// In-memory store fakes. They mirror the persistence contracts the cascade
// relies on: full-replace deletes and store-assigned sort order.

type stubGoals struct {
	goals []Goal
}

func (s *stubGoals) ListGoals(ctx context.Context, year int) ([]Goal, error) {
	return s.goals, nil
}

type memTaskStore struct {
	nextID int
	tasks  []Task
}

func sameCoords(t Task, key ScopeKey) bool {
	return t.Scope == key.Scope && t.Year == key.Year &&
		t.Month == key.Month && t.Week == key.Week && t.Day == key.Day
}

func (m *memTaskStore) ListTasks(ctx context.Context, key ScopeKey) ([]Task, error) {
	var out []Task
	for _, t := range m.tasks {
		if sameCoords(t, key) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTaskStore) DeleteTasks(ctx context.Context, key ScopeKey) error {
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if !sameCoords(t, key) {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	return nil
}

func (m *memTaskStore) CreateTask(ctx context.Context, t Task) (Task, error) {
	m.nextID++
	t.ID = m.nextID
	order := 0
	for _, ex := range m.tasks {
		if sameCoords(ex, ScopeKey{Scope: t.Scope, Year: t.Year, Month: t.Month, Week: t.Week, Day: t.Day}) &&
			ex.SortOrder >= order {
			order = ex.SortOrder + 1
		}
	}
	t.SortOrder = order
	m.tasks = append(m.tasks, t)
	return t, nil
}

type memPlanStore struct {
	plans []MonthlyPlan
}

func (m *memPlanStore) DeletePlans(ctx context.Context, year, month int, goalIDs []int) error {
	kept := m.plans[:0]
	for _, p := range m.plans {
		if !(p.Year == year && p.Month == month) {
			kept = append(kept, p)
		}
	}
	m.plans = kept
	return nil
}

func (m *memPlanStore) CreatePlan(ctx context.Context, goalID, year, month int, summary string) error {
	m.plans = append(m.plans, MonthlyPlan{GoalID: goalID, Year: year, Month: month, Summary: summary})
	return nil
}

type stubSettings struct {
	days []int
}

func (s *stubSettings) GetWorkingDays(ctx context.Context) ([]int, error) {
	return s.days, nil
}

// scriptedAI answers each stage with a canned reply, keyed off the system
// prompt, and records every call for prompt assertions.
type scriptedAI struct {
	calls      [][]ai.Message
	failOn     string // substring of the system prompt that triggers an upstream failure
	yearlyResp string
}

func (s *scriptedAI) Chat(ctx context.Context, messages []ai.Message, jsonMode bool) (string, error) {
	s.calls = append(s.calls, messages)
	system := messages[0].Content
	if s.failOn != "" && strings.Contains(system, s.failOn) {
		return "", &ai.UpstreamError{Status: 500, Body: "scripted failure"}
	}
	switch {
	case strings.Contains(system, "strategic life planner"):
		if s.yearlyResp != "" {
			return s.yearlyResp, nil
		}
		return `{"months": [{"month": 2, "focus": "Ship the draft"}, {"month": 3, "focus": "Polish and publish"}]}`, nil
	case strings.Contains(system, "You are a task planner"):
		return `{"tasks": [{"title": "M1", "description": "d"}, {"title": "M2", "description": "d"}]}`, nil
	case strings.Contains(system, "weekly task planner"):
		return `{"tasks": [{"title": "W1", "description": "d"}, {"title": "W2", "description": "d"}, {"title": "W3", "description": "d"}]}`, nil
	case strings.Contains(system, "daily task planner"):
		return `{"tasks": [{"title": "D1", "description": "d"}, {"title": "D2", "description": "d"}]}`, nil
	case strings.Contains(system, "goal planning assistant"):
		return "Sounds great, tell me more!", nil
	}
	return "", fmt.Errorf("unexpected system prompt: %s", system)
}

func (s *scriptedAI) lastCallWith(substr string) []ai.Message {
	for i := len(s.calls) - 1; i >= 0; i-- {
		if strings.Contains(s.calls[i][0].Content, substr) {
			return s.calls[i]
		}
	}
	return nil
}

type testEnv struct {
	planner  *Planner
	tasks    *memTaskStore
	plans    *memPlanStore
	model    *scriptedAI
	settings *stubSettings
}

func newTestEnv(goals []Goal) *testEnv {
	env := &testEnv{
		tasks:    &memTaskStore{},
		plans:    &memPlanStore{},
		model:    &scriptedAI{},
		settings: &stubSettings{days: []int{1, 2, 3, 4, 5}},
	}
	env.planner = New(&stubGoals{goals: goals}, env.tasks, env.plans, env.settings, env.model, zap.NewNop())
	return env
}

func testGoals() []Goal {
	return []Goal{
		{ID: 1, Title: "Learn Spanish", Description: "Reach B1", Year: 2026, Multiplier: 1, Category: CategoryGrowth},
	}
}

func tasksAt(t *testing.T, store *memTaskStore, key ScopeKey) []Task {
	t.Helper()
	tasks, err := store.ListTasks(context.Background(), key)
	require.NoError(t, err)
	return tasks
}

func TestRunCascadeFull(t *testing.T) {
	env := newTestEnv(testGoals())

	err := env.planner.RunCascade(context.Background(), CascadeFull, date(2026, 2, 10))
	require.NoError(t, err)

	// Yearly stage persisted one plan per remaining month the model covered.
	require.Len(t, env.plans.plans, 2)
	assert.Equal(t, 2, env.plans.plans[0].Month)
	assert.Equal(t, "Ship the draft", env.plans.plans[0].Summary)
	assert.Equal(t, 3, env.plans.plans[1].Month)

	monthTasks := tasksAt(t, env.tasks, ScopeKey{Scope: ScopeMonth, Year: 2026, Month: 2})
	require.Len(t, monthTasks, 2)
	assert.Equal(t, "M1", monthTasks[0].Title)
	assert.Equal(t, 0, monthTasks[0].SortOrder)
	assert.Equal(t, 1, monthTasks[1].SortOrder)

	weekTasks := tasksAt(t, env.tasks, ScopeKey{Scope: ScopeWeek, Year: 2026, Month: 2, Week: 2})
	require.Len(t, weekTasks, 3)

	dayTasks := tasksAt(t, env.tasks, ScopeKey{Scope: ScopeDay, Year: 2026, Month: 2, Day: 10})
	require.Len(t, dayTasks, 2)

	// The current month's focus threads into the monthly prompt.
	monthly := env.model.lastCallWith("You are a task planner")
	require.NotNil(t, monthly)
	assert.Contains(t, monthly[1].Content, "Focus: Ship the draft")

	// Week generation sees the month's checklist, day generation the week's.
	weekly := env.model.lastCallWith("weekly task planner")
	require.NotNil(t, weekly)
	assert.Contains(t, weekly[1].Content, "- [ ] M1")
	daily := env.model.lastCallWith("daily task planner")
	require.NotNil(t, daily)
	assert.Contains(t, daily[1].Content, "- [ ] W1")
}

func TestRunCascadeFullSkipsOutOfRangeMonths(t *testing.T) {
	env := newTestEnv(testGoals())
	env.model.yearlyResp = `{"months": [{"month": 1, "focus": "too late"}, {"month": 2, "focus": "Ship"}, {"month": 13, "focus": "bogus"}]}`

	err := env.planner.RunCascade(context.Background(), CascadeFull, date(2026, 2, 10))
	require.NoError(t, err)

	require.Len(t, env.plans.plans, 1)
	assert.Equal(t, 2, env.plans.plans[0].Month)
}

func TestRunCascadeFullFallbackFocus(t *testing.T) {
	// Model skipped the current month entirely; the monthly stage still runs
	// with a generic focus instead of aborting.
	env := newTestEnv(testGoals())
	env.model.yearlyResp = `{"months": [{"month": 3, "focus": "Later"}]}`

	err := env.planner.RunCascade(context.Background(), CascadeFull, date(2026, 2, 10))
	require.NoError(t, err)

	monthly := env.model.lastCallWith("You are a task planner")
	require.NotNil(t, monthly)
	assert.Contains(t, monthly[1].Content, "Focus: Focus on your goals")
}

func TestRunCascadeWeekScope(t *testing.T) {
	env := newTestEnv(testGoals())

	err := env.planner.RunCascade(context.Background(), CascadeWeek, date(2026, 2, 10))
	require.NoError(t, err)

	assert.Empty(t, env.plans.plans)
	assert.Empty(t, tasksAt(t, env.tasks, ScopeKey{Scope: ScopeMonth, Year: 2026, Month: 2}))
	assert.Len(t, tasksAt(t, env.tasks, ScopeKey{Scope: ScopeWeek, Year: 2026, Month: 2, Week: 2}), 3)
	assert.Len(t, tasksAt(t, env.tasks, ScopeKey{Scope: ScopeDay, Year: 2026, Month: 2, Day: 10}), 2)
	assert.Len(t, env.model.calls, 2)
}

func TestRunCascadeDayScopeIsIdempotent(t *testing.T) {
	env := newTestEnv(testGoals())
	now := date(2026, 2, 10)

	require.NoError(t, env.planner.RunCascade(context.Background(), CascadeDay, now))
	require.NoError(t, env.planner.RunCascade(context.Background(), CascadeDay, now))

	// Regeneration replaces; running twice must not accumulate tasks, and sort
	// order restarts from zero after the wipe.
	dayTasks := tasksAt(t, env.tasks, ScopeKey{Scope: ScopeDay, Year: 2026, Month: 2, Day: 10})
	require.Len(t, dayTasks, 2)
	assert.Equal(t, 0, dayTasks[0].SortOrder)
	assert.Equal(t, 1, dayTasks[1].SortOrder)
}

func TestRunCascadeUnknownScope(t *testing.T) {
	env := newTestEnv(testGoals())

	err := env.planner.RunCascade(context.Background(), "year", date(2026, 2, 10))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, env.model.calls)
}

func TestRunCascadeNoGoals(t *testing.T) {
	env := newTestEnv(nil)

	err := env.planner.RunCascade(context.Background(), CascadeFull, date(2026, 2, 10))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "2026")
	assert.Empty(t, env.model.calls)
}

func TestRunCascadeWeeklyFailureKeepsEarlierStages(t *testing.T) {
	env := newTestEnv(testGoals())
	env.model.failOn = "weekly task planner"

	err := env.planner.RunCascade(context.Background(), CascadeFull, date(2026, 2, 10))
	var uerr *ai.UpstreamError
	require.ErrorAs(t, err, &uerr)

	// Earlier stages stay persisted; the failed stage wrote nothing.
	assert.Len(t, env.plans.plans, 2)
	assert.Len(t, tasksAt(t, env.tasks, ScopeKey{Scope: ScopeMonth, Year: 2026, Month: 2}), 2)
	assert.Empty(t, tasksAt(t, env.tasks, ScopeKey{Scope: ScopeWeek, Year: 2026, Month: 2, Week: 2}))
	assert.Empty(t, tasksAt(t, env.tasks, ScopeKey{Scope: ScopeDay, Year: 2026, Month: 2, Day: 10}))
}

func TestRunCascadeDayCarriesYesterdayCompletion(t *testing.T) {
	env := newTestEnv(testGoals())
	ctx := context.Background()

	for _, task := range []Task{
		{Title: "done", Completed: true, Scope: ScopeDay, Year: 2026, Month: 2, Day: 9},
		{Title: "missed", Scope: ScopeDay, Year: 2026, Month: 2, Day: 9},
	} {
		_, err := env.tasks.CreateTask(ctx, task)
		require.NoError(t, err)
	}

	require.NoError(t, env.planner.RunCascade(ctx, CascadeDay, date(2026, 2, 10)))

	daily := env.model.lastCallWith("daily task planner")
	require.NotNil(t, daily)
	assert.Contains(t, daily[1].Content, "Yesterday's completion rate: 50%")
	assert.Contains(t, daily[1].Content, "Incomplete from yesterday: missed")
}

func TestRunCascadeDayOnRestDay(t *testing.T) {
	env := newTestEnv(testGoals())

	// Saturday with a Mon-Fri working-days config.
	require.NoError(t, env.planner.RunCascade(context.Background(), CascadeDay, date(2026, 2, 14)))

	daily := env.model.lastCallWith("daily task planner")
	require.NotNil(t, daily)
	assert.Contains(t, daily[0].Content, "REST DAY")
	assert.Contains(t, daily[0].Content, "Generate 1-2 DETAILED tasks")
}

type stubSources struct {
	context string
	err     error
}

func (s *stubSources) DailyContext(ctx context.Context) (string, error) {
	return s.context, s.err
}

func TestRunCascadeDayIncludesSourceContext(t *testing.T) {
	env := newTestEnv(testGoals())
	env.planner.Sources = &stubSources{context: "=== External Source ===\nURL: https://example.com\n\nnotes"}

	require.NoError(t, env.planner.RunCascade(context.Background(), CascadeDay, date(2026, 2, 10)))

	daily := env.model.lastCallWith("daily task planner")
	require.NotNil(t, daily)
	assert.Contains(t, daily[1].Content, "=== External Source ===")
}

func TestRunCascadeDaySourceFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(testGoals())
	env.planner.Sources = &stubSources{err: errors.New("fetch failed")}

	require.NoError(t, env.planner.RunCascade(context.Background(), CascadeDay, date(2026, 2, 10)))
	assert.Len(t, tasksAt(t, env.tasks, ScopeKey{Scope: ScopeDay, Year: 2026, Month: 2, Day: 10}), 2)
}

func TestGenerateGoalReply(t *testing.T) {
	env := newTestEnv(nil)
	history := []ai.Message{
		{Role: "user", Content: "I want to get fit this year"},
	}

	reply, err := env.planner.GenerateGoalReply(context.Background(), history, 2026)
	require.NoError(t, err)
	assert.Equal(t, "Sounds great, tell me more!", reply)

	require.Len(t, env.model.calls, 1)
	sent := env.model.calls[0]
	require.Len(t, sent, 2)
	assert.Equal(t, "system", sent[0].Role)
	assert.Contains(t, sent[0].Content, "2026")
	assert.Equal(t, history[0], sent[1])
}

func TestTryExtractFinalizedGoals(t *testing.T) {
	env := newTestEnv(nil)

	assert.Nil(t, env.planner.TryExtractFinalizedGoals("Let's keep refining."))

	text := `Locked in! {"goalsComplete": true, "goals": [{"title": "Get fit", "description": "Train 3x/week", "multiplier": 4, "frequency": "3/week", "category": "habit"}]}`
	goals := env.planner.TryExtractFinalizedGoals(text)
	require.Len(t, goals, 1)
	assert.Equal(t, "Get fit", goals[0].Title)
	assert.Equal(t, 4.0, goals[0].Multiplier)
}
