package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/calendar-events/internal/calendar"
	"github.com/example/calendar-events/internal/logging"
)

// EventLister lists stored events.
type EventLister interface {
	ListEvents(ctx context.Context, params ListEventsParams) ([]Event, error)
}

// CellView is one rendered cell. Month cells carry at most
// calendar.MonthVisibleEvents placements and a "+N" summary for the rest.
type CellView struct {
	Cell       calendar.Cell
	Placements []calendar.Placement
	Hidden     int
	More       string
}

// CalendarView is the grid for one mode and reference date.
type CalendarView struct {
	Mode          calendar.Mode
	Date          time.Time
	WeekdayHeader []string
	LeadingBlanks int
	Cells         []CellView
}

// ViewService projects stored events onto the calendar grid.
type ViewService struct {
	events EventLister
	engine *calendar.Engine
	loc    *time.Location
	logger *slog.Logger
}

// NewViewService wires the grid projection. Dates are evaluated in loc.
func NewViewService(events EventLister, engine *calendar.Engine, loc *time.Location) *ViewService {
	return NewViewServiceWithLogger(events, engine, loc, nil)
}

// NewViewServiceWithLogger wires the grid projection with an explicit logger.
func NewViewServiceWithLogger(events EventLister, engine *calendar.Engine, loc *time.Location, logger *slog.Logger) *ViewService {
	if engine == nil {
		engine = calendar.NewEngine(time.Monday, calendar.Labels{}, nil)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ViewService{events: events, engine: engine, loc: loc, logger: logging.Or(logger)}
}

// Location returns the timezone the grid is computed in.
func (s *ViewService) Location() *time.Location {
	if s == nil || s.loc == nil {
		return time.UTC
	}
	return s.loc
}

// Calendar builds the grid for mode around date.
func (s *ViewService) Calendar(ctx context.Context, mode calendar.Mode, date time.Time) (view CalendarView, err error) {
	if s == nil {
		return CalendarView{}, fmt.Errorf("ViewService is nil")
	}
	if s.events == nil {
		return CalendarView{}, fmt.Errorf("event repository not configured")
	}

	logger := serviceLogger(ctx, s.logger, "ViewService", "Calendar", "mode", string(mode))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build calendar view", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	requested := mode
	mode, err = calendar.ParseMode(string(requested))
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("mode", fmt.Sprintf("unsupported view mode %q", requested))
		return CalendarView{}, vErr
	}

	local := date.In(s.loc)
	cells := s.engine.ComputeCells(local, mode)

	// Hour cells also match events that end inside them, so events starting
	// before the range are fetched as well.
	rangeEnd := cells[len(cells)-1].End
	stored, err := s.events.ListEvents(ctx, ListEventsParams{To: &rangeEnd})
	if err != nil {
		return CalendarView{}, err
	}

	events := make([]calendar.Event, 0, len(stored))
	for _, event := range stored {
		ce := event.ToCalendarEvent()
		ce.Start = ce.Start.In(s.loc)
		ce.End = ce.End.In(s.loc)
		events = append(events, ce)
	}

	view = CalendarView{Mode: mode, Date: local, Cells: make([]CellView, 0, len(cells))}
	if mode == calendar.ModeMonth {
		view.WeekdayHeader = s.engine.WeekdayHeader()
		view.LeadingBlanks = s.engine.LeadingBlanks(local)
	}

	for _, cell := range cells {
		if mode == calendar.ModeMonth {
			summary := s.engine.SummarizeDay(events, cell)
			view.Cells = append(view.Cells, CellView{
				Cell:       cell,
				Placements: summary.Visible,
				Hidden:     summary.Hidden,
				More:       summary.More,
			})
			continue
		}
		view.Cells = append(view.Cells, CellView{
			Cell:       cell,
			Placements: calendar.EventsForCell(events, cell, mode),
		})
	}
	return view, nil
}

// Navigate returns the reference date one period after (steps > 0) or
// before (steps < 0) date.
func (s *ViewService) Navigate(mode calendar.Mode, date time.Time, steps int) time.Time {
	local := date.In(s.Location())
	for ; steps > 0; steps-- {
		local = calendar.Next(local, mode)
	}
	for ; steps < 0; steps++ {
		local = calendar.Prev(local, mode)
	}
	return local
}
