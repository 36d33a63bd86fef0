package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Goal categories. Growth is the default and is not called out in prompts.
const (
	CategoryGrowth    = "growth"
	CategoryHabit     = "habit"
	CategoryMilestone = "milestone"
)

type Goal struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Year        int       `json:"year"`
	Multiplier  float64   `json:"multiplier"` // priority weight, 1-5
	Frequency   string    `json:"frequency,omitempty"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskRange is the min-max task count requested from the model for a horizon.
type TaskRange struct {
	Min int
	Max int
}

func (r TaskRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// AverageMultiplier is the arithmetic mean of the goals' priority weights.
// An empty goal set averages to the baseline 1.0.
func AverageMultiplier(goals []Goal) float64 {
	if len(goals) == 0 {
		return 1
	}
	sum := 0.0
	for _, g := range goals {
		sum += g.Multiplier
	}
	return sum / float64(len(goals))
}

// FormatGoalsForPrompt renders goals as enumerated prompt lines, highest
// priority first (stable, so equal weights keep their original order).
func FormatGoalsForPrompt(goals []Goal) string {
	sorted := make([]Goal, len(goals))
	copy(sorted, goals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Multiplier > sorted[j].Multiplier
	})

	var b strings.Builder
	for i, g := range sorted {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s: %s [priority: %g/5]", i+1, g.Title, g.Description, g.Multiplier)
		if g.Frequency != "" {
			fmt.Fprintf(&b, " [target: %s]", g.Frequency)
		}
		if g.Category != "" && g.Category != CategoryGrowth {
			fmt.Fprintf(&b, " [type: %s]", g.Category)
		}
	}
	return b.String()
}

// MonthlyTaskRange scales the base 4-8 range by the average priority above
// baseline. With a week or less left the base drops to 2-4.
func MonthlyTaskRange(remainingDays int, avgMultiplier float64) TaskRange {
	base := TaskRange{Min: 4, Max: 8}
	if remainingDays <= 7 {
		base = TaskRange{Min: 2, Max: 4}
	}
	boost := math.Max(0, (avgMultiplier-1)*0.5)
	return TaskRange{
		Min: int(math.Round(float64(base.Min) + boost)),
		Max: int(math.Round(float64(base.Max) + boost*2)),
	}
}

// WeeklyTaskRange targets roughly 1-2 tasks per remaining day.
func WeeklyTaskRange(remainingDays int, avgMultiplier float64) TaskRange {
	base := math.Max(2, float64(remainingDays))
	boost := math.Max(0, (avgMultiplier-1)*0.3)
	return TaskRange{
		Min: int(math.Round(base * (1 + boost))),
		Max: int(math.Round(base * 2 * (1 + boost))),
	}
}

// DailyTaskRange returns the day's task budget. Rest days (outside the
// working-days config) and weekends get a fixed light range no matter how
// heavy the goal weights are; only working weekdays scale with priority.
func DailyTaskRange(isWeekend, isWorkingDay bool, avgMultiplier float64) TaskRange {
	if !isWorkingDay {
		return TaskRange{Min: 1, Max: 2}
	}
	if isWeekend {
		return TaskRange{Min: 2, Max: 4}
	}
	boost := math.Max(0, (avgMultiplier-1)*0.3)
	return TaskRange{
		Min: int(math.Round(3 + boost)),
		Max: int(math.Round(6 + boost*2)),
	}
}
