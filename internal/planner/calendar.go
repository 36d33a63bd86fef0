package planner

import "time"

var monthNames = []string{
	"", // months are 1-indexed
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var dayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var shortDayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// PlanningClock pins "today" for one cascade run. It is computed once from the
// wall clock and threaded through every stage, so a run that spans several
// seconds (or a midnight boundary) still sees a single consistent date.
type PlanningClock struct {
	Year        int
	Month       int // 1-12
	DayOfMonth  int
	DayOfWeek   int // 0=Sunday .. 6=Saturday
	WeekOfMonth int
	TotalWeeks  int
	DaysInMonth int
	today       time.Time
}

func NewPlanningClock(today time.Time) PlanningClock {
	year, month, day := today.Date()
	return PlanningClock{
		Year:        year,
		Month:       int(month),
		DayOfMonth:  day,
		DayOfWeek:   int(today.Weekday()),
		WeekOfMonth: WeekOfMonth(today),
		TotalWeeks:  TotalWeeksInMonth(year, int(month)),
		DaysInMonth: daysInMonth(year, int(month)),
		today:       today,
	}
}

// Yesterday returns the scope coordinates of the previous calendar day,
// crossing month and year boundaries as needed.
func (c PlanningClock) Yesterday() (year, month, day int) {
	y := c.today.AddDate(0, 0, -1)
	return y.Year(), int(y.Month()), y.Day()
}

// RemainingDaysInMonth counts today through the end of the month, inclusive.
func (c PlanningClock) RemainingDaysInMonth() int {
	return c.DaysInMonth - c.DayOfMonth + 1
}

func (c PlanningClock) MonthName() string { return monthNames[c.Month] }
func (c PlanningClock) DayName() string   { return dayNames[c.DayOfWeek] }

func (c PlanningClock) IsWeekend() bool {
	return c.DayOfWeek == 0 || c.DayOfWeek == 6
}

// WeekOfMonth returns the 1-indexed week of the month for date, with weeks
// aligned to start on Sunday: ceil((dayOfMonth + weekdayOfFirst) / 7).
func WeekOfMonth(date time.Time) int {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	offset := int(first.Weekday())
	return (date.Day() + offset + 6) / 7
}

// TotalWeeksInMonth applies the same Sunday alignment to the month's last day.
func TotalWeeksInMonth(year, month int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	return (daysInMonth(year, month) + offset + 6) / 7
}

// RemainingWeekdayNames lists today's weekday name through Saturday. Days
// already passed within the week are never included.
func RemainingWeekdayNames(dayOfWeek int) []string {
	names := make([]string, 0, 7-dayOfWeek)
	for i := dayOfWeek; i <= 6; i++ {
		names = append(names, dayNames[i])
	}
	return names
}

// RemainingDaysCountInWeek counts today through Saturday, inclusive.
func RemainingDaysCountInWeek(dayOfWeek int) int {
	return 7 - dayOfWeek
}

func daysInMonth(year, month int) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
