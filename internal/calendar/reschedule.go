package calendar

import "time"

// Reschedule moves the event to the target cell keeping its exact duration.
// The new start is the top of the target hour, or local midnight for day
// cells. The result is not clamped to the day.
func Reschedule(event Event, target Cell) (time.Time, time.Time) {
	duration := event.Duration()
	start := target.Start
	y, m, d := start.Date()
	if target.Granularity == GranularityHour {
		start = time.Date(y, m, d, start.Hour(), 0, 0, 0, start.Location())
	} else {
		start = time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	}
	return start, start.Add(duration)
}

// TargetCell builds the cell a drop lands on.
func TargetCell(at time.Time, granularity Granularity) Cell {
	y, m, d := at.Date()
	loc := at.Location()
	if granularity == GranularityHour {
		h := at.Hour()
		return Cell{
			Start:       time.Date(y, m, d, h, 0, 0, 0, loc),
			End:         time.Date(y, m, d, h+1, 0, 0, 0, loc),
			Granularity: GranularityHour,
			Hour:        h,
		}
	}
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Cell{Start: start, End: start.AddDate(0, 0, 1), Granularity: GranularityDay}
}
