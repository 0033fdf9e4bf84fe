package calendar

import "time"

// Layout constants in pixels.
const (
	PixelsPerHour       = 60.0
	HeightPerHour       = 63.0
	MaxEventHeight      = 24 * HeightPerHour
	WeekStackOffset     = 15.0
	DayStackOffset      = 100.0
	MonthVisibleEvents  = 2
	maxUncappedDuration = 23 * time.Hour
)

// Event is the subset of an event record the grid needs.
type Event struct {
	ID     string
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Duration returns End minus Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Layout is the render geometry of an event inside a cell.
type Layout struct {
	Top    float64
	Height float64
	Offset float64
	ZIndex int
}

// Placement pairs an event with its layout in a cell.
type Placement struct {
	Event  Event
	Layout Layout
}

// DaySummary is the month-view rendering of a day cell.
type DaySummary struct {
	Visible []Placement
	Hidden  int
	// More is empty when every event is visible.
	More string
}

// Belongs reports whether the event is attributed to the cell. Day cells match
// on the start date. Hour cells match when the start or the end falls inside
// the half-open hour; hours an event merely spans are not matched.
func Belongs(event Event, cell Cell) bool {
	if cell.Granularity == GranularityDay {
		return SameDay(cell.Start, event.Start)
	}
	return within(event.Start, cell) || within(event.End, cell)
}

func within(t time.Time, cell Cell) bool {
	return !t.Before(cell.Start) && t.Before(cell.End)
}

// EventsForCell returns the events attributed to the cell in input order with
// their stacking geometry for the given view.
func EventsForCell(events []Event, cell Cell, mode Mode) []Placement {
	var placements []Placement
	for _, event := range events {
		if !Belongs(event, cell) {
			continue
		}
		index := len(placements)
		layout := Layout{
			Offset: float64(index) * stackOffset(mode),
			ZIndex: index + 1,
		}
		if cell.Granularity == GranularityHour {
			layout.Top = (fractionalHour(event.Start.In(cell.Start.Location())) - float64(cell.Hour)) * PixelsPerHour
			layout.Height = EventHeight(event.Duration())
		}
		placements = append(placements, Placement{Event: event, Layout: layout})
	}
	return placements
}

// SummarizeDay limits a month cell to MonthVisibleEvents entries and renders
// the remainder as a single "+N" label.
func (e *Engine) SummarizeDay(events []Event, cell Cell) DaySummary {
	placements := EventsForCell(events, cell, ModeMonth)
	if len(placements) <= MonthVisibleEvents {
		return DaySummary{Visible: placements}
	}
	hidden := len(placements) - MonthVisibleEvents
	return DaySummary{
		Visible: placements[:MonthVisibleEvents],
		Hidden:  hidden,
		More:    e.labels.More(hidden),
	}
}

// EventHeight converts a duration to pixels. Events longer than 23 hours are
// drawn at the height of a full day.
func EventHeight(d time.Duration) float64 {
	if d > maxUncappedDuration {
		return MaxEventHeight
	}
	return d.Hours() * HeightPerHour
}

func stackOffset(mode Mode) float64 {
	switch mode {
	case ModeWeek:
		return WeekStackOffset
	case ModeDay:
		return DayStackOffset
	default:
		return 0
	}
}

func fractionalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}
