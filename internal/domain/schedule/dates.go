package schedule

import "time"

// Date returns a calendar date (midnight UTC). The engine deals in dates
// only, never times of day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddPeriods returns the payment date for period n counted from start.
// Weekly and fortnightly cadences step in exact 7/14-day multiples. Monthly
// stepping targets the same day-of-month as the start date and clamps to the
// last day of shorter months, matching spreadsheet month arithmetic
// (Jan 31 + 1 month = Feb 28).
func (f Frequency) AddPeriods(start time.Time, n int) time.Time {
	switch f {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*n)
	case FrequencyFortnightly:
		return start.AddDate(0, 0, 14*n)
	case FrequencyMonthly:
		return addMonthsClamped(start, n)
	}
	return start
}

func addMonthsClamped(start time.Time, months int) time.Time {
	y, m, d := start.Date()
	total := int(m) - 1 + months
	year := y + total/12
	month := time.Month(total%12 + 1)
	if total < 0 && total%12 != 0 {
		year--
		month = time.Month(total%12 + 13)
	}
	if last := daysInMonth(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, 0, 0, 0, 0, start.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// daysBetween counts whole days from a to b. Inputs are calendar dates, so
// the division is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
