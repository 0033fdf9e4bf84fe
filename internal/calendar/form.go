package calendar

import "time"

// DefaultEventLength is the window of a timed event created from the form.
const DefaultEventLength = time.Hour

// ToggleAllDay returns the window of the form after switching all-day on or
// off for the selected date, evaluated in loc.
func ToggleAllDay(selected time.Time, on bool, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = selected.Location()
	}
	local := selected.In(loc)
	if on {
		return AllDayBounds(local)
	}
	return local, local.Add(DefaultEventLength)
}

// AllDayBounds returns 00:00:00 and 23:59:59 of t's calendar day in t's location.
func AllDayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	loc := t.Location()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), time.Date(y, m, d, 23, 59, 59, 0, loc)
}

// ChangeStart applies a new start to the window. When the start reaches the
// end, the end moves to start+1h, or to 23:59 of the same day when the start
// falls in the 23h hour. Hours and days are read in loc.
func ChangeStart(newStart, end time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = newStart.Location()
	}
	local := newStart.In(loc)
	if local.Before(end) {
		return local, end.In(loc)
	}
	if local.Hour() == 23 {
		y, m, d := local.Date()
		return local, time.Date(y, m, d, 23, 59, 0, 0, loc)
	}
	return local, local.Add(DefaultEventLength)
}

// ChangeEndTime rebuilds the end from the visible date and a time-only input.
// Values past the end of the day clamp to 23:59.
func ChangeEndTime(visible time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = visible.Location()
	}
	y, m, d := visible.In(loc).Date()
	if hour < 0 {
		hour = 0
	}
	if minute < 0 {
		minute = 0
	}
	if hour > 23 || (hour == 23 && minute > 59) {
		hour, minute = 23, 59
	} else if minute > 59 {
		minute = 59
	}
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}

// SwitchTimezone keeps the wall clock of t and interprets it in loc.
func SwitchTimezone(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// DefaultWindow returns the window prefilled for a new event at the selected time.
func DefaultWindow(selected time.Time) (time.Time, time.Time) {
	return selected, selected.Add(59 * time.Minute)
}
