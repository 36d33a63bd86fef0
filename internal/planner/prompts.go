package planner

import (
	"fmt"
	"math"
	"strings"

	"smart-planner-backend/internal/ai"
)

// Prompt assembly for the four planning horizons. Each horizon gets a
// system directive plus a user payload; every horizon except the chat flow is
// called in JSON mode and must answer with a single JSON object.

func taskChecklist(tasks []Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", mark, t.Title))
	}
	return strings.Join(lines, "\n")
}

func workingDayNames(workingDays []int) string {
	names := make([]string, 0, len(workingDays))
	for _, d := range workingDays {
		if d >= 0 && d <= 6 {
			names = append(names, shortDayNames[d])
		}
	}
	return strings.Join(names, ", ")
}

func isWorkingDay(dayOfWeek int, workingDays []int) bool {
	for _, d := range workingDays {
		if d == dayOfWeek {
			return true
		}
	}
	return false
}

func percent(rate float64) int {
	return int(math.Round(rate * 100))
}

// ── Yearly ──────────────────────────────────────────────────────────────────

func yearlyPlanMessages(goals []Goal, clock PlanningClock) []ai.Message {
	remaining := make([]string, 0, 13-clock.Month)
	for m := clock.Month; m <= 12; m++ {
		remaining = append(remaining, fmt.Sprintf("%s (month %d)", monthNames[m], m))
	}
	remainingMonths := strings.Join(remaining, ", ")

	pastMonthsNote := "This is the start of the year."
	if clock.Month > 1 {
		pastMonthsNote = fmt.Sprintf(
			"Months already passed: %s. Do NOT include these.",
			strings.Join(monthNames[1:clock.Month], ", "),
		)
	}

	system := fmt.Sprintf(`You are a strategic life planner. Create a HIGH-LEVEL plan for the REMAINING months of the year only.

Rules:
- ONLY plan for these remaining months: %s
- %s
- Each month should have a brief focus area (1-2 sentences max)
- Think about natural progression and dependencies
- The current month (%s) should start immediately actionable
- Later months build on earlier progress
- Be realistic about time
- Goals with higher priority weights should get proportionally more attention
- Habit-type goals should appear consistently across months
- Milestone-type goals should have clear target months

Respond in JSON: {"months": [{"month": <1-12>, "focus": "..."}]}
Only include months from %d to 12.`,
		remainingMonths, pastMonthsNote, clock.MonthName(), clock.Month)

	user := fmt.Sprintf(
		"Year: %d, Current month: %s\n\nGoals:\n%s\n\nCreate a high-level monthly focus plan for the remaining months.",
		clock.Year, clock.MonthName(), FormatGoalsForPrompt(goals),
	)

	return []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// ── Monthly ─────────────────────────────────────────────────────────────────

func monthlyTasksMessages(goals []Goal, focus string, clock PlanningClock, rng TaskRange) []ai.Message {
	remainingDays := clock.RemainingDaysInMonth()

	system := fmt.Sprintf(`You are a task planner. Generate high-level monthly tasks based on the focus area and goals.

Rules:
- There are %d days remaining in this month
- Generate %s high-level tasks scaled to the remaining time
- If only a few days remain, keep it to %d achievable tasks
- Tasks should be concrete but not overly detailed
- Allocate MORE tasks to goals with higher priority weights
- For goals with frequency targets (e.g. "5x/day"), include tasks that establish the habit
- Mix tasks from different goals if the focus area covers multiple
- Tasks should build on each other logically

Respond in JSON: {"tasks": [{"title": "...", "description": "..."}]}`,
		remainingDays, rng, rng.Min)

	user := fmt.Sprintf(
		"Month: %s %d (%d days remaining)\nFocus: %s\n\nGoals:\n%s\n\nGenerate tasks for the remaining time this month.",
		clock.MonthName(), clock.Year, remainingDays, focus, FormatGoalsForPrompt(goals),
	)

	return []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// ── Weekly ──────────────────────────────────────────────────────────────────

func weeklyAdjustmentNote(prev *CompletionContext) string {
	if prev == nil || len(prev.Incomplete) == 0 {
		return ""
	}
	return fmt.Sprintf(
		"\nLast week's completion rate: %d%%.\nIncomplete from last week: %s.\nCarry over important incomplete tasks and adjust the load.",
		percent(prev.CompletionRate), strings.Join(prev.Incomplete, ", "),
	)
}

func weeklyTasksMessages(
	monthTasks []Task,
	clock PlanningClock,
	rng TaskRange,
	workingDays []int,
	prev *CompletionContext,
) []ai.Message {
	days := RemainingWeekdayNames(clock.DayOfWeek)
	daysStr := strings.Join(days, ", ")

	system := fmt.Sprintf(`You are a weekly task planner. Break monthly tasks into work for the remaining days of this week.

Rules:
- This week only has these days remaining: %s (%d days)
- Working days are: %s. Only assign significant tasks on working days.
- Non-working days should only have light personal/habit tasks if any.
- Generate %s tasks total
- Slightly overestimate — add ~20%% buffer for unexpected delays
- If previous week had incomplete tasks, carry those forward first
- This is week %d of %d in the month
- Tasks should be specific enough to act on
- Allocate more tasks to higher-priority goals

Respond in JSON: {"tasks": [{"title": "...", "description": "..."}]}`,
		daysStr, len(days), workingDayNames(workingDays), rng, clock.WeekOfMonth, clock.TotalWeeks)

	user := fmt.Sprintf(
		"Week %d of %d\nRemaining days: %s\n\nMonthly tasks:\n%s%s\n\nGenerate tasks for the remaining days of this week.",
		clock.WeekOfMonth, clock.TotalWeeks, daysStr, taskChecklist(monthTasks), weeklyAdjustmentNote(prev),
	)

	return []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// ── Daily ───────────────────────────────────────────────────────────────────

func dailyAdjustmentNote(prev *CompletionContext) string {
	if prev == nil {
		return ""
	}
	if len(prev.Incomplete) == 0 {
		return "\nYesterday: 100% completion! Keep the momentum — can add a stretch task."
	}
	return fmt.Sprintf(
		"\nYesterday's completion rate: %d%%.\nIncomplete from yesterday: %s.\nRedistribute incomplete work into today. If rate was low, reduce load to be realistic.",
		percent(prev.CompletionRate), strings.Join(prev.Incomplete, ", "),
	)
}

func dailyTasksMessages(
	weekTasks []Task,
	clock PlanningClock,
	rng TaskRange,
	workingDays []int,
	prev *CompletionContext,
	sourceContext string,
) []ai.Message {
	dayType := "Weekday — full productivity mode"
	if !isWorkingDay(clock.DayOfWeek, workingDays) {
		dayType = "This is a REST DAY — only include light personal tasks or habit check-ins, no heavy work"
	} else if clock.IsWeekend() {
		dayType = "It's the weekend — lighter load, focus on personal goals or catch-up"
	}

	remainingInWeek := RemainingDaysCountInWeek(clock.DayOfWeek)

	system := fmt.Sprintf(`You are a detailed daily task planner. Create a DETAILED task list for today.

Rules:
- Today is %s, the %dth
- There are %d days left in the week (including today)
- %s
- Generate %s DETAILED tasks — each with a clear, actionable description
- Descriptions should explain exactly what to do, not just repeat the title
- Overestimate slightly — plan for ~110%% of realistic capacity
- If previous day had incomplete tasks, redistribute them
- Order tasks by priority (most important first)
- Each task should be completable in 1-3 hours
- For goals with frequency targets, include those as discrete tasks (e.g. "Practice piano - session 3 of 5")

Respond in JSON: {"tasks": [{"title": "...", "description": "Detailed steps and what success looks like"}]}`,
		clock.DayName(), clock.DayOfMonth, remainingInWeek, dayType, rng)

	var b strings.Builder
	fmt.Fprintf(&b, "Day: %s, the %dth (%d days left this week)\n\nWeekly tasks:\n%s%s",
		clock.DayName(), clock.DayOfMonth, remainingInWeek, taskChecklist(weekTasks), dailyAdjustmentNote(prev))
	if sourceContext != "" {
		fmt.Fprintf(&b, "\n\n%s", sourceContext)
	}
	b.WriteString("\n\nGenerate today's detailed task list.")

	return []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: b.String()},
	}
}

// ── Goal-setting chat ───────────────────────────────────────────────────────

const goalChatPrompt = `You are a friendly yearly-goal planning assistant. Help the user define their goals for %d through conversation.

How to run the conversation:
- Ask what they want to achieve this year; dig into WHY it matters
- Help them make each goal concrete and measurable
- For each goal, settle on: a short title, a one-line description, a priority from 1 (nice to have) to 5 (non-negotiable), a category ("growth", "habit" or "milestone"), and an optional frequency target like "5/day" or "3/week" for habits
- Push back gently on vague or overloaded goal lists; 3-6 goals is healthy
- Keep replies short and conversational — one question at a time

When the user confirms the goal list is final, include this JSON object in your reply (keep any surrounding text brief):
{"goalsComplete": true, "goals": [{"title": "...", "description": "...", "multiplier": <1-5>, "frequency": "..." or "", "category": "growth|habit|milestone"}]}

Until the user confirms, do NOT emit that object.`

func goalChatSystemMessage(year int) ai.Message {
	return ai.Message{Role: "system", Content: fmt.Sprintf(goalChatPrompt, year)}
}
