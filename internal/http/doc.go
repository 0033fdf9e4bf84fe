// Package http provides HTTP handlers and middleware for the calendar API.
//
// The router exposes the following endpoints:
//   - GET /events, POST /events: list (optional RFC 3339 `from`/`to` filters on the
//     start date, ETag aware) and create events exchanging the `eventDTO` payload
//     defined in event_handler.go.
//   - GET /events/{id}, PUT /events/{id}, DELETE /events/{id}: single event access.
//     PUT accepts partial bodies; DELETE answers 204.
//   - POST /events/{id}/reschedule: body {"targetStart","granularity"} moves an event
//     onto an hour or day cell keeping its duration.
//   - GET /events.ics, POST /events.ics: iCalendar export and import.
//   - GET /searchCity?query=, GET /weather?location=&dateTime=, GET /timezone?location=:
//     weather service proxy with cached lookups.
//   - GET /calendar?mode=&date=, GET /calendar/next, GET /calendar/prev: grid cells
//     with event placements and navigation targets.
//   - GET /view-state, POST /view-state: view state snapshot and typed commands
//     ({"type": "set_mode" | "set_selected_date" | "set_form_open" |
//     "set_event_to_edit" | "next" | "prev" | "set_fetching", ...}).
//   - GET /notifications, DELETE /notifications/{id}: the notification queue.
//   - GET /health: {"status":"ok"}, or 503 when the database does not answer.
//
// Errors are reported as {"errorCode","message","errors"} with codes E_VALIDATION,
// E_NOT_FOUND, E_UPSTREAM, E_INTERNAL and E_METHOD_NOT_ALLOWED.
package http
