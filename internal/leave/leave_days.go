package leave

import (
	"time"

	leaveerrors "github.com/premidisfinal/premidis-fin/internal/leave/errors"
	"github.com/premidisfinal/premidis-fin/internal/leaverule"
)

const dateLayout = "2006-01-02"

// WorkingDays counts Monday to Friday in [start, end], both inclusive.
// Public holidays are not excluded.
func WorkingDays(start, end time.Time) int {
	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		return 0
	}

	total := int(end.Sub(start).Hours()/24) + 1
	weeks, rest := total/7, total%7
	days := weeks * 5

	wd := start.Weekday()
	for i := 0; i < rest; i++ {
		switch (wd + time.Weekday(i)) % 7 {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}

// ReturnDate is the day after end, moved to Monday when that day is a Sunday.
func ReturnDate(end time.Time) time.Time {
	next := truncateDay(end).AddDate(0, 0, 1)
	if next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// MonthWindow returns the first and last day of the month.
func MonthWindow(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidMonth
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return s, e, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func calendarTitle(l Leave) string {
	if l.IsCollective {
		return leaverule.Label(l.LeaveType)
	}
	return l.EmployeeName + " - " + leaverule.Label(l.LeaveType)
}
