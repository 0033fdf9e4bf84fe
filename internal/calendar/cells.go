// Package calendar computes the calendar grid, event placement and drag
// rescheduling for month, week and day views. Every function is pure and
// evaluates dates in the location of the time values it is given.
package calendar

import (
	"errors"
	"strings"
	"time"
)

// Mode identifies a calendar view.
type Mode string

const (
	// ModeMonth renders one cell per day of the month.
	ModeMonth Mode = "month"
	// ModeWeek renders 24 hourly cells for each day of a Monday-start week.
	ModeWeek Mode = "week"
	// ModeDay renders 24 hourly cells for a single day.
	ModeDay Mode = "day"
)

// ErrInvalidMode indicates the view mode is not supported.
var ErrInvalidMode = errors.New("calendar: invalid view mode")

// ParseMode normalizes a mode string. An empty value selects month view.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeMonth:
		return ModeMonth, nil
	case ModeWeek:
		return ModeWeek, nil
	case ModeDay:
		return ModeDay, nil
	default:
		return "", ErrInvalidMode
	}
}

// Granularity describes the time span covered by a cell.
type Granularity int

const (
	// GranularityDay cells cover one calendar day.
	GranularityDay Granularity = iota
	// GranularityHour cells cover one hour of a calendar day.
	GranularityHour
)

// ErrInvalidGranularity indicates an unknown cell granularity.
var ErrInvalidGranularity = errors.New("calendar: invalid granularity")

// ParseGranularity reads "hour" or "day". An empty value selects hour.
func ParseGranularity(value string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "hour":
		return GranularityHour, nil
	case "day":
		return GranularityDay, nil
	default:
		return 0, ErrInvalidGranularity
	}
}

func (g Granularity) String() string {
	if g == GranularityHour {
		return "hour"
	}
	return "day"
}

// Cell is one unit of the rendered grid. Start is inclusive and End exclusive.
type Cell struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
	// Hour is the hour of day for hourly cells and zero for day cells.
	Hour    int
	IsToday bool
	Weekday string
}

// Engine holds the locale dependent settings used to build cells.
type Engine struct {
	weekStart time.Weekday
	labels    Labels
	now       func() time.Time
}

// NewEngine constructs an Engine. A nil now defaults to time.Now and empty
// labels default to Spanish.
func NewEngine(weekStart time.Weekday, labels Labels, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	if labels.isZero() {
		labels = SpanishLabels()
	}
	return &Engine{weekStart: weekStart, labels: labels, now: now}
}

// WeekStart reports the first weekday used for month headers.
func (e *Engine) WeekStart() time.Weekday {
	return e.weekStart
}

// Labels returns the locale labels used by the engine.
func (e *Engine) Labels() Labels {
	return e.labels
}

// ComputeCells returns the ordered cells to render for the selected date.
func (e *Engine) ComputeCells(selected time.Time, mode Mode) []Cell {
	switch mode {
	case ModeWeek:
		start := StartOfWeek(selected, time.Monday)
		cells := make([]Cell, 0, 7*24)
		for i := 0; i < 7; i++ {
			cells = append(cells, e.hourCells(start.AddDate(0, 0, i))...)
		}
		return cells
	case ModeDay:
		return e.hourCells(StartOfDay(selected))
	default:
		return e.monthCells(selected)
	}
}

// WeekdayHeader returns the weekday labels in display order.
func (e *Engine) WeekdayHeader() []string {
	header := make([]string, 7)
	for i := range header {
		header[i] = e.labels.Weekday((e.weekStart + time.Weekday(i)) % 7)
	}
	return header
}

// LeadingBlanks reports how many empty slots precede the first day of the
// month in a grid that starts on the engine's first weekday.
func (e *Engine) LeadingBlanks(selected time.Time) int {
	first := StartOfMonth(selected)
	return (int(first.Weekday()) - int(e.weekStart) + 7) % 7
}

func (e *Engine) monthCells(selected time.Time) []Cell {
	first := StartOfMonth(selected)
	next := first.AddDate(0, 1, 0)
	today := e.now().In(selected.Location())

	cells := make([]Cell, 0, 31)
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		cells = append(cells, Cell{
			Start:       day,
			End:         day.AddDate(0, 0, 1),
			Granularity: GranularityDay,
			IsToday:     SameDay(day, today),
			Weekday:     e.labels.Weekday(day.Weekday()),
		})
	}
	return cells
}

func (e *Engine) hourCells(day time.Time) []Cell {
	y, m, d := day.Date()
	loc := day.Location()
	today := SameDay(day, e.now().In(loc))
	label := e.labels.Weekday(day.Weekday())

	cells := make([]Cell, 24)
	for h := range cells {
		cells[h] = Cell{
			Start:       time.Date(y, m, d, h, 0, 0, 0, loc),
			End:         time.Date(y, m, d, h+1, 0, 0, 0, loc),
			Granularity: GranularityHour,
			Hour:        h,
			IsToday:     today,
			Weekday:     label,
		}
	}
	return cells
}

// Next advances the selected date by one unit of the mode, keeping the time of day.
func Next(selected time.Time, mode Mode) time.Time {
	return step(selected, mode, 1)
}

// Prev moves the selected date back by one unit of the mode, keeping the time of day.
func Prev(selected time.Time, mode Mode) time.Time {
	return step(selected, mode, -1)
}

func step(t time.Time, mode Mode, dir int) time.Time {
	switch mode {
	case ModeWeek:
		return t.AddDate(0, 0, 7*dir)
	case ModeDay:
		return t.AddDate(0, 0, dir)
	default:
		return addMonths(t, dir)
	}
}

// addMonths clamps the day to the last day of the target month instead of
// overflowing into the following one.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the first day of the week containing t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	start := StartOfDay(t)
	offset := (int(start.Weekday()) - int(weekStart) + 7) % 7
	return start.AddDate(0, 0, -offset)
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
