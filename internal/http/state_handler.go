package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
)

type viewStateStore interface {
	Dispatch(cmd application.ViewCommand) (application.ViewState, error)
	Snapshot() application.ViewState
}

type notificationCenter interface {
	Active() []application.Notification
	Dismiss(id string) error
}

// StateHandler exposes the view-state store and the notification queue.
type StateHandler struct {
	views         viewStateStore
	notifications notificationCenter
	loc           *time.Location
	responder     responder
}

// NewStateHandler builds the handler. Dates in commands without an offset
// are read in loc.
func NewStateHandler(views viewStateStore, notifications notificationCenter, loc *time.Location, logger *slog.Logger) *StateHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StateHandler{views: views, notifications: notifications, loc: loc, responder: newResponder(logger)}
}

func (h *StateHandler) GetViewState(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.views == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toViewStateDTO(h.views.Snapshot()))
}

func (h *StateHandler) DispatchViewCommand(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.views == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req viewCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	cmd, vErr := req.toCommand(h.loc)
	if vErr != nil {
		h.responder.writeValidation(r.Context(), w, http.StatusUnprocessableEntity, vErr)
		return
	}

	state, err := h.views.Dispatch(cmd)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.responder.logger, "StateHandler", "DispatchViewCommand", "command", req.Type).
		DebugContext(r.Context(), "view command applied")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toViewStateDTO(state))
}

func (h *StateHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.notifications == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	active := h.notifications.Active()
	dtos := make([]notificationDTO, 0, len(active))
	for _, n := range active {
		dtos = append(dtos, notificationDTO{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Severity:  string(n.Severity),
			CreatedAt: formatTime(n.CreatedAt),
			ExpiresAt: formatTime(n.ExpiresAt),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *StateHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.notifications == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(mux.Vars(r)["id"])
	if err := h.notifications.Dismiss(id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// View command types accepted by POST /view-state.
const (
	commandSetMode         = "set_mode"
	commandSetSelectedDate = "set_selected_date"
	commandSetFormOpen     = "set_form_open"
	commandSetEventToEdit  = "set_event_to_edit"
	commandNext            = "next"
	commandPrev            = "prev"
	commandSetFetching     = "set_fetching"
	commandSetAllDay       = "set_all_day"
	commandSetFormStart    = "set_form_start"
	commandSetFormEndTime  = "set_form_end_time"
	commandSetFormTimezone = "set_form_timezone"
)

type viewCommandRequest struct {
	Type     string  `json:"type"`
	Mode     string  `json:"mode"`
	Date     string  `json:"date"`
	OpenForm bool    `json:"openForm"`
	Open     bool    `json:"open"`
	EventID  *string `json:"eventId"`
	Fetching bool    `json:"fetching"`
	AllDay   bool    `json:"allDay"`
	Start    string  `json:"start"`
	Time     string  `json:"time"`
	Timezone string  `json:"timezone"`
}

func (r viewCommandRequest) toCommand(loc *time.Location) (application.ViewCommand, *application.ValidationError) {
	switch strings.TrimSpace(r.Type) {
	case commandSetMode:
		return application.SetMode{Mode: calendar.Mode(strings.ToLower(strings.TrimSpace(r.Mode)))}, nil
	case commandSetSelectedDate:
		date, ok := parseDate(strings.TrimSpace(r.Date), loc)
		if !ok {
			return nil, fieldError("date", "La fecha no es válida.")
		}
		return application.SetSelectedDate{Date: date, OpenForm: r.OpenForm}, nil
	case commandSetFormOpen:
		return application.SetFormOpen{Open: r.Open}, nil
	case commandSetEventToEdit:
		if r.EventID != nil && strings.TrimSpace(*r.EventID) == "" {
			return application.SetEventToEdit{}, nil
		}
		return application.SetEventToEdit{EventID: r.EventID}, nil
	case commandNext:
		return application.NextPeriod{}, nil
	case commandPrev:
		return application.PrevPeriod{}, nil
	case commandSetFetching:
		return application.SetFetching{Fetching: r.Fetching}, nil
	case commandSetAllDay:
		return application.SetAllDay{On: r.AllDay}, nil
	case commandSetFormStart:
		value := strings.TrimSpace(r.Start)
		if ts := parseTime(value); !ts.IsZero() {
			return application.SetFormStart{Start: ts}, nil
		}
		wall, err := time.ParseInLocation("2006-01-02T15:04", value, time.UTC)
		if err != nil {
			return nil, fieldError("start", "La fecha de inicio no es válida.")
		}
		return application.SetFormStart{Start: wall, WallClock: true}, nil
	case commandSetFormEndTime:
		hour, minute, ok := parseClock(r.Time)
		if !ok {
			return nil, fieldError("time", "La hora no es válida.")
		}
		return application.SetFormEndTime{Hour: hour, Minute: minute}, nil
	case commandSetFormTimezone:
		name := strings.TrimSpace(r.Timezone)
		zone, err := time.LoadLocation(name)
		if name == "" || err != nil {
			return nil, fieldError("timezone", "Zona horaria desconocida: "+name)
		}
		return application.SetFormTimezone{Location: zone}, nil
	default:
		return nil, fieldError("type", fmt.Sprintf("Tipo de comando desconocido: %q.", r.Type))
	}
}

// parseClock reads an "HH:MM" input. Out of range values are kept so the
// form logic can clamp them.
func parseClock(value string) (int, int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}

type viewStateDTO struct {
	Mode           string         `json:"mode"`
	SelectedDate   string         `json:"selectedDate"`
	FormOpen       bool           `json:"formOpen"`
	EditingEventID *string        `json:"editingEventId"`
	Fetching       bool           `json:"fetching"`
	Form           *formWindowDTO `json:"form,omitempty"`
}

type formWindowDTO struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	AllDay   bool   `json:"allDay"`
	Timezone string `json:"timezone"`
}

func toViewStateDTO(state application.ViewState) viewStateDTO {
	dto := viewStateDTO{
		Mode:           string(state.Mode),
		SelectedDate:   formatTime(state.SelectedDate),
		FormOpen:       state.FormOpen,
		EditingEventID: state.EditingEventID,
		Fetching:       state.Fetching,
	}
	if form := state.Form; !form.Start.IsZero() {
		dto.Form = &formWindowDTO{
			Start:    form.Start.Format(time.RFC3339),
			End:      form.End.Format(time.RFC3339),
			AllDay:   form.AllDay,
			Timezone: form.Location.String(),
		}
	}
	return dto
}

type notificationDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}
