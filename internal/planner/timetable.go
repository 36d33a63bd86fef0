package planner

import "sort"

// Timeline display range and block sizing for laying out a day's tasks.
const (
	TimelineStartHour = 7
	TimelineEndHour   = 22
	TaskBlockHours    = 2
	FirstTaskHour     = 8
)

// TimetableSlot places one task in a fixed block on the day's timeline.
type TimetableSlot struct {
	Task      Task `json:"task"`
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
}

// BuildTimetable distributes day tasks into consecutive fixed-size blocks
// starting at FirstTaskHour, in sort order (creation time breaks ties). Tasks
// that would run past TimelineEndHour don't fit the timeline and are left out.
func BuildTimetable(tasks []Task) []TimetableSlot {
	ordered := make([]Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SortOrder != ordered[j].SortOrder {
			return ordered[i].SortOrder < ordered[j].SortOrder
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	slots := make([]TimetableSlot, 0, len(ordered))
	start := FirstTaskHour
	for _, t := range ordered {
		end := start + TaskBlockHours
		if end > TimelineEndHour {
			break
		}
		slots = append(slots, TimetableSlot{Task: t, StartHour: start, EndHour: end})
		start = end
	}
	return slots
}
