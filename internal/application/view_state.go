package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/calendar-events/internal/calendar"
)

// ViewState is the navigation and form state of the calendar UI.
type ViewState struct {
	Mode         calendar.Mode
	SelectedDate time.Time
	FormOpen     bool
	// EditingEventID references the event open in the form. It is an id and
	// is resolved against the store whenever it is needed.
	EditingEventID *string
	Fetching       bool
	// Form is the window shown by the open event form; zero when closed.
	Form FormWindow
}

// FormWindow is the start and end shown in the event form. Start and End are
// held in Location, the event's timezone.
type FormWindow struct {
	Start    time.Time
	End      time.Time
	AllDay   bool
	Location *time.Location
}

func (f FormWindow) location(fallback time.Time) *time.Location {
	if f.Location != nil {
		return f.Location
	}
	return fallback.Location()
}

func newFormWindow(selected time.Time) FormWindow {
	start, end := calendar.DefaultWindow(selected)
	return FormWindow{Start: start, End: end, Location: selected.Location()}
}

// ViewCommand is one state transition. The set of commands is closed.
type ViewCommand interface {
	apply(state *ViewState) error
}

// SetMode switches the calendar view.
type SetMode struct{ Mode calendar.Mode }

// SetSelectedDate moves the reference date, optionally opening the form for
// a new event on that date.
type SetSelectedDate struct {
	Date     time.Time
	OpenForm bool
}

// SetFormOpen opens or closes the event form. Closing clears the edited event.
type SetFormOpen struct{ Open bool }

// SetEventToEdit selects the event shown in the form. A nil ID clears it.
type SetEventToEdit struct{ EventID *string }

// NextPeriod advances the selected date by one unit of the current mode.
type NextPeriod struct{}

// PrevPeriod moves the selected date back by one unit of the current mode.
type PrevPeriod struct{}

// SetFetching overrides the fetching flag.
type SetFetching struct{ Fetching bool }

// EventRemoved drops references to a deleted event.
type EventRemoved struct{ EventID string }

// SetAllDay toggles the all-day flag of the form for the selected date.
type SetAllDay struct{ On bool }

// SetFormStart moves the form start. With WallClock set, Start's date and
// time of day are read in the form timezone instead of as an instant.
type SetFormStart struct {
	Start     time.Time
	WallClock bool
}

// SetFormEndTime sets the form end from a time-only input on the form date.
type SetFormEndTime struct{ Hour, Minute int }

// SetFormTimezone switches the form timezone, keeping the entered wall times.
type SetFormTimezone struct{ Location *time.Location }

func (c SetMode) apply(state *ViewState) error {
	switch c.Mode {
	case calendar.ModeMonth, calendar.ModeWeek, calendar.ModeDay:
	default:
		vErr := &ValidationError{}
		vErr.add("mode", fmt.Sprintf("unsupported view mode %q", c.Mode))
		return vErr
	}
	state.Mode = c.Mode
	return nil
}

func (c SetSelectedDate) apply(state *ViewState) error {
	if c.Date.IsZero() {
		vErr := &ValidationError{}
		vErr.add("date", "date is required")
		return vErr
	}
	state.SelectedDate = c.Date
	if c.OpenForm {
		state.FormOpen = true
		state.EditingEventID = nil
		state.Form = newFormWindow(c.Date)
	}
	return nil
}

func (c SetFormOpen) apply(state *ViewState) error {
	state.FormOpen = c.Open
	if !c.Open {
		state.EditingEventID = nil
		state.Form = FormWindow{}
		return nil
	}
	if state.Form.Start.IsZero() {
		state.Form = newFormWindow(state.SelectedDate)
	}
	return nil
}

func (c SetEventToEdit) apply(state *ViewState) error {
	if c.EventID == nil {
		state.EditingEventID = nil
		return nil
	}
	id := *c.EventID
	state.EditingEventID = &id
	return nil
}

func (NextPeriod) apply(state *ViewState) error {
	state.SelectedDate = calendar.Next(state.SelectedDate, state.Mode)
	return nil
}

func (PrevPeriod) apply(state *ViewState) error {
	state.SelectedDate = calendar.Prev(state.SelectedDate, state.Mode)
	return nil
}

func (c SetFetching) apply(state *ViewState) error {
	state.Fetching = c.Fetching
	return nil
}

func (c EventRemoved) apply(state *ViewState) error {
	if state.EditingEventID != nil && *state.EditingEventID == c.EventID {
		state.EditingEventID = nil
		state.FormOpen = false
		state.Form = FormWindow{}
	}
	return nil
}

func (c SetAllDay) apply(state *ViewState) error {
	if !state.FormOpen {
		return errFormClosed()
	}
	loc := state.Form.location(state.SelectedDate)
	start, end := calendar.ToggleAllDay(state.SelectedDate, c.On, loc)
	state.Form = FormWindow{Start: start, End: end, AllDay: c.On, Location: loc}
	return nil
}

func (c SetFormStart) apply(state *ViewState) error {
	if !state.FormOpen {
		return errFormClosed()
	}
	if c.Start.IsZero() {
		vErr := &ValidationError{}
		vErr.add("startDate", "start date is required")
		return vErr
	}
	loc := state.Form.location(state.SelectedDate)
	start := c.Start
	if c.WallClock {
		start = calendar.SwitchTimezone(start, loc)
	}
	state.Form.Start, state.Form.End = calendar.ChangeStart(start, state.Form.End, loc)
	state.Form.Location = loc
	return nil
}

func (c SetFormEndTime) apply(state *ViewState) error {
	if !state.FormOpen {
		return errFormClosed()
	}
	loc := state.Form.location(state.SelectedDate)
	visible := state.Form.Start
	if visible.IsZero() {
		visible = state.SelectedDate
	}
	state.Form.End = calendar.ChangeEndTime(visible, c.Hour, c.Minute, loc)
	state.Form.Location = loc
	return nil
}

func (c SetFormTimezone) apply(state *ViewState) error {
	if !state.FormOpen {
		return errFormClosed()
	}
	if c.Location == nil {
		vErr := &ValidationError{}
		vErr.add("timezone", "timezone is required")
		return vErr
	}
	if !state.Form.Start.IsZero() {
		state.Form.Start = calendar.SwitchTimezone(state.Form.Start, c.Location)
	}
	if !state.Form.End.IsZero() {
		state.Form.End = calendar.SwitchTimezone(state.Form.End, c.Location)
	}
	state.Form.Location = c.Location
	return nil
}

func errFormClosed() error {
	vErr := &ValidationError{}
	vErr.add("form", "event form is not open")
	return vErr
}

// ViewStateStore owns the view state. Every change goes through Dispatch,
// which applies one command at a time.
type ViewStateStore struct {
	mu       sync.Mutex
	state    ViewState
	inflight int
}

// NewViewStateStore starts in month view on the given date.
func NewViewStateStore(selected time.Time) *ViewStateStore {
	return &ViewStateStore{state: ViewState{Mode: calendar.ModeMonth, SelectedDate: selected}}
}

// Dispatch applies cmd and returns the resulting state. A rejected command
// leaves the state untouched.
func (s *ViewStateStore) Dispatch(cmd ViewCommand) (ViewState, error) {
	if s == nil {
		return ViewState{}, fmt.Errorf("ViewStateStore is nil")
	}
	if cmd == nil {
		return ViewState{}, fmt.Errorf("view command is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := copyViewState(s.state)
	if err := cmd.apply(&next); err != nil {
		return copyViewState(s.state), err
	}
	s.state = next
	return copyViewState(s.state), nil
}

// Snapshot returns a copy of the current state.
func (s *ViewStateStore) Snapshot() ViewState {
	if s == nil {
		return ViewState{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyViewState(s.state)
}

// BeginFetch marks a request as outstanding. The returned func ends it; the
// fetching flag stays set while any request is outstanding.
func (s *ViewStateStore) BeginFetch() func() {
	if s == nil {
		return func() {}
	}
	s.mu.Lock()
	s.inflight++
	s.state.Fetching = true
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.inflight > 0 {
				s.inflight--
			}
			s.state.Fetching = s.inflight > 0
		})
	}
}

// EventDeleted implements EventObserver.
func (s *ViewStateStore) EventDeleted(id string) {
	_, _ = s.Dispatch(EventRemoved{EventID: id})
}

func copyViewState(state ViewState) ViewState {
	if state.EditingEventID != nil {
		id := *state.EditingEventID
		state.EditingEventID = &id
	}
	return state
}
