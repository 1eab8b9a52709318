// Package views derives the calendar, board, and list projections from a
// task snapshot. Every function is pure and leaves its input untouched.
package views

import (
	"time"

	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

// CalendarOptions controls calendar bucketing. When From and To are set,
// every day in [From, To] gets a bucket even if it is empty; tasks due
// outside the range are left out.
type CalendarOptions struct {
	Location *time.Location
	From     time.Time
	To       time.Time
}

// Calendar groups tasks by the calendar day of their due date, keyed by
// ISO date. Tasks keep their snapshot order within a day.
func Calendar(tasks []models.Task, opts CalendarOptions) map[string][]models.Task {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	ranged := !opts.From.IsZero() && !opts.To.IsZero()

	days := make(map[string][]models.Task)
	if ranged {
		for _, day := range DaysBetween(opts.From, opts.To, loc) {
			days[day] = []models.Task{}
		}
	}

	for _, t := range tasks {
		if t.DueDate.IsZero() {
			continue
		}
		key := DayKey(t.DueDate, loc)
		if ranged {
			if _, ok := days[key]; !ok {
				continue
			}
		}
		days[key] = append(days[key], t.Clone())
	}
	return days
}

// DayKey returns the ISO date of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.CalendarDateLayout)
}

// DaysBetween lists the ISO dates from the day of from through the day of
// to, inclusive. It returns nil when to is before from.
func DaysBetween(from, to time.Time, loc *time.Location) []string {
	from = from.In(loc)
	to = to.In(loc)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(constants.CalendarDateLayout))
	}
	return days
}
