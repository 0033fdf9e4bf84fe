package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/calendar-events/internal/application"
	"github.com/example/calendar-events/internal/ics"
	"github.com/example/calendar-events/internal/logging"
	"github.com/example/calendar-events/internal/weather"
)

// Error codes carried in the errorCode field of error payloads.
const (
	CodeValidation       = "E_VALIDATION"
	CodeNotFound         = "E_NOT_FOUND"
	CodeUpstream         = "E_UPSTREAM"
	CodeInternal         = "E_INTERNAL"
	CodeMethodNotAllowed = "E_METHOD_NOT_ALLOWED"
)

var (
	errBadRequestBody = errors.New("Formato de solicitud no válido.")
	errInvalidEventID = errors.New("Identificador de evento no válido.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: logging.Or(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: codeForStatus(status), Message: message})
}

func (r responder) writeValidation(ctx context.Context, w http.ResponseWriter, status int, vErr *application.ValidationError) {
	r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "fields", len(vErr.FieldErrors))
	r.writeJSON(ctx, w, status, errorResponse{
		ErrorCode: CodeValidation,
		Message:   localizedStatusMessage(http.StatusUnprocessableEntity),
		Errors:    localizeValidationErrors(vErr),
	})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: CodeNotFound,
			Message:   localizedStatusMessage(http.StatusNotFound),
		})
	case errors.As(err, &vErr):
		r.writeValidation(ctx, w, http.StatusUnprocessableEntity, vErr)
	case errors.Is(err, weather.ErrQueryTooShort):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: CodeValidation,
			Message:   "La búsqueda debe tener al menos 3 caracteres.",
		})
	case errors.Is(err, weather.ErrDateOutOfRange):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: CodeValidation,
			Message:   "La fecha está fuera del rango disponible.",
		})
	case errors.Is(err, weather.ErrInvalidRequest):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: CodeValidation,
			Message:   localizedStatusMessage(http.StatusBadRequest),
		})
	case errors.Is(err, ics.ErrInvalidCalendar):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: CodeValidation,
			Message:   "El archivo de calendario no es válido.",
		})
	case errors.Is(err, weather.ErrUpstream):
		r.loggerFor(ctx).ErrorContext(ctx, "upstream failure", "error", err)
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{
			ErrorCode: CodeUpstream,
			Message:   localizedStatusMessage(http.StatusBadGateway),
		})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			ErrorCode: CodeInternal,
			Message:   localizedStatusMessage(http.StatusInternalServerError),
		})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return CodeValidation
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusBadGateway:
		return CodeUpstream
	default:
		return CodeInternal
	}
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La solicitud no es válida."
	case http.StatusNotFound:
		return "No se encontró el recurso solicitado."
	case http.StatusMethodNotAllowed:
		return "Método no permitido."
	case http.StatusRequestEntityTooLarge:
		return "La solicitud es demasiado grande."
	case http.StatusUnprocessableEntity:
		return "Los datos introducidos no son válidos."
	case http.StatusBadGateway:
		return "El servicio meteorológico no está disponible."
	default:
		return "Se produjo un error interno del servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "title is required":
		return "El título es obligatorio."
	case "start date is required":
		return "La fecha de inicio es obligatoria."
	case "end date is required":
		return "La fecha de fin es obligatoria."
	case "end date must not be before start date":
		return "La fecha de fin no puede ser anterior a la de inicio."
	case "weather snapshot requires condition and icon":
		return "El tiempo requiere condición e icono."
	case "target start is required":
		return "La fecha de destino es obligatoria."
	case "to must not be before from":
		return "El final del rango no puede ser anterior al inicio."
	case "date is required":
		return "La fecha es obligatoria."
	case "event form is not open":
		return "El formulario del evento no está abierto."
	case "timezone is required":
		return "La zona horaria es obligatoria."
	default:
		if strings.HasPrefix(message, "unknown timezone") {
			return "Zona horaria desconocida: " + strings.TrimSpace(strings.TrimPrefix(message, "unknown timezone"))
		}
		return message
	}
}

func fieldError(field, message string) *application.ValidationError {
	return &application.ValidationError{FieldErrors: map[string]string{field: message}}
}

type errorResponse struct {
	ErrorCode string            `json:"errorCode"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
