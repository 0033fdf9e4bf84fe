package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/calendar"
)

const dateLayout = "2006-01-02"

type calendarService interface {
	Calendar(ctx context.Context, mode calendar.Mode, date time.Time) (application.CalendarView, error)
	Navigate(mode calendar.Mode, date time.Time, steps int) time.Time
	Location() *time.Location
}

// CalendarHandler serves the grid and navigation endpoints.
type CalendarHandler struct {
	service   calendarService
	now       func() time.Time
	responder responder
}

// NewCalendarHandler builds the handler. Requests without a date use the
// current day.
func NewCalendarHandler(service calendarService, now func() time.Time, logger *slog.Logger) *CalendarHandler {
	if now == nil {
		now = time.Now
	}
	return &CalendarHandler{service: service, now: now, responder: newResponder(logger)}
}

func (h *CalendarHandler) View(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mode, date, vErr := h.parseQuery(r)
	if vErr != nil {
		h.responder.writeValidation(r.Context(), w, http.StatusBadRequest, vErr)
		return
	}

	view, err := h.service.Calendar(r.Context(), mode, date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCalendarDTO(view))
}

func (h *CalendarHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, 1)
}

func (h *CalendarHandler) Prev(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, -1)
}

func (h *CalendarHandler) navigate(w http.ResponseWriter, r *http.Request, steps int) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mode, date, vErr := h.parseQuery(r)
	if vErr != nil {
		h.responder.writeValidation(r.Context(), w, http.StatusBadRequest, vErr)
		return
	}

	target := h.service.Navigate(mode, date, steps)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, navigationResponse{Date: formatTime(target)})
}

func (h *CalendarHandler) parseQuery(r *http.Request) (calendar.Mode, time.Time, *application.ValidationError) {
	query := r.URL.Query()
	loc := h.service.Location()

	mode, err := calendar.ParseMode(query.Get("mode"))
	if err != nil {
		return "", time.Time{}, fieldError("mode", "El modo debe ser month, week o day.")
	}

	raw := strings.TrimSpace(query.Get("date"))
	if raw == "" {
		return mode, h.now().In(loc), nil
	}
	date, ok := parseDate(raw, loc)
	if !ok {
		return "", time.Time{}, fieldError("date", "La fecha no es válida.")
	}
	return mode, date, nil
}

// parseDate accepts RFC 3339 instants and local YYYY-MM-DD[ HH:mm] values.
func parseDate(value string, loc *time.Location) (time.Time, bool) {
	if ts := parseTime(value); !ts.IsZero() {
		return ts.In(loc), true
	}
	for _, layout := range []string{dateLayout, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

type navigationResponse struct {
	Date string `json:"date"`
}

type calendarDTO struct {
	Mode          string    `json:"mode"`
	Date          string    `json:"date"`
	WeekdayHeader []string  `json:"weekdayHeader,omitempty"`
	LeadingBlanks int       `json:"leadingBlanks"`
	Cells         []cellDTO `json:"cells"`
}

type cellDTO struct {
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Date    string         `json:"date"`
	Hour    *int           `json:"hour,omitempty"`
	IsToday bool           `json:"isToday"`
	Weekday string         `json:"weekday"`
	Events  []placementDTO `json:"events"`
	Hidden  int            `json:"hidden,omitempty"`
	More    string         `json:"more,omitempty"`
}

type placementDTO struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Start  string  `json:"start"`
	End    string  `json:"end"`
	AllDay bool    `json:"allDay"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Offset float64 `json:"offset"`
	ZIndex int     `json:"zIndex"`
}

func toCalendarDTO(view application.CalendarView) calendarDTO {
	dto := calendarDTO{
		Mode:          string(view.Mode),
		Date:          view.Date.Format(dateLayout),
		WeekdayHeader: view.WeekdayHeader,
		LeadingBlanks: view.LeadingBlanks,
		Cells:         make([]cellDTO, 0, len(view.Cells)),
	}
	for _, cell := range view.Cells {
		dto.Cells = append(dto.Cells, toCellDTO(cell))
	}
	return dto
}

func toCellDTO(view application.CellView) cellDTO {
	cell := view.Cell
	dto := cellDTO{
		Start:   formatTime(cell.Start),
		End:     formatTime(cell.End),
		Date:    cell.Start.Format(dateLayout),
		IsToday: cell.IsToday,
		Weekday: cell.Weekday,
		Events:  make([]placementDTO, 0, len(view.Placements)),
		Hidden:  view.Hidden,
		More:    view.More,
	}
	if cell.Granularity == calendar.GranularityHour {
		hour := cell.Hour
		dto.Hour = &hour
	}
	for _, p := range view.Placements {
		dto.Events = append(dto.Events, placementDTO{
			ID:     p.Event.ID,
			Title:  p.Event.Title,
			Start:  formatTime(p.Event.Start),
			End:    formatTime(p.Event.End),
			AllDay: p.Event.AllDay,
			Top:    p.Layout.Top,
			Height: p.Layout.Height,
			Offset: p.Layout.Offset,
			ZIndex: p.Layout.ZIndex,
		})
	}
	return dto
}
