package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/calendar-events/internal/persistence"
)

const timeLayout = time.RFC3339Nano

// EventRepository implements persistence.EventRepository using SQLite
type EventRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewEventRepository creates a new SQLite event repository
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// eventRow mirrors the events table. Times are stored as RFC3339 text in UTC
// next to their unix seconds, which are used for ordering and filtering.
type eventRow struct {
	ID          string          `db:"id"`
	Title       string          `db:"title"`
	Description sql.NullString  `db:"description"`
	StartTime   string          `db:"start_time"`
	EndTime     string          `db:"end_time"`
	StartUnix   int64           `db:"start_unix"`
	EndUnix     int64           `db:"end_unix"`
	AllDay      bool            `db:"all_day"`
	Location    string          `db:"location"`
	Timezone    string          `db:"timezone"`
	Temperature sql.NullFloat64 `db:"temperature"`
	Condition   sql.NullString  `db:"condition"`
	Icon        sql.NullString  `db:"icon"`
	CreatedAt   string          `db:"created_at"`
	UpdatedAt   string          `db:"updated_at"`
}

const selectEventColumns = `
	SELECT id, title, description, start_time, end_time, start_unix, end_unix, all_day,
	       location, timezone, temperature, condition, icon, created_at, updated_at
	FROM events`

// CreateEvent inserts a new event
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	row := toEventRow(event)
	const query = `
		INSERT INTO events (id, title, description, start_time, end_time, start_unix, end_unix, all_day,
		                    location, timezone, temperature, condition, icon, created_at, updated_at)
		VALUES (:id, :title, :description, :start_time, :end_time, :start_unix, :end_unix, :all_day,
		        :location, :timezone, :temperature, :condition, :icon, :created_at, :updated_at)`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().NamedExecContext(ctx, query, row)
		return err
	})
}

// UpdateEvent replaces every mutable field of an existing event
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if err := validateEvent(event); err != nil {
		return err
	}

	row := toEventRow(event)
	const query = `
		UPDATE events
		SET title = :title, description = :description, start_time = :start_time, end_time = :end_time,
		    start_unix = :start_unix, end_unix = :end_unix, all_day = :all_day, location = :location,
		    timezone = :timezone, temperature = :temperature, condition = :condition, icon = :icon,
		    updated_at = :updated_at
		WHERE id = :id`

	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().NamedExecContext(ctx, query, row)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// UpdateEventTimes changes only the start and end of an event
func (r *EventRepository) UpdateEventTimes(ctx context.Context, id string, start, end, updatedAt time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: end before start", persistence.ErrConstraintViolation)
	}

	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx,
			`UPDATE events SET start_time = ?, end_time = ?, start_unix = ?, end_unix = ?, updated_at = ? WHERE id = ?`,
			formatTime(start), formatTime(end), start.Unix(), end.Unix(), formatTime(updatedAt), id,
		)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

// GetEvent retrieves an event by ID
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	var row eventRow
	if err := r.pool.DB().GetContext(ctx, &row, selectEventColumns+` WHERE id = ?`, id); err != nil {
		return persistence.Event{}, r.mapper.MapError(err)
	}
	return fromEventRow(row)
}

// ListEvents returns events ordered by start time, then ID
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.StartsFrom != nil {
		clauses = append(clauses, "start_unix >= ?")
		args = append(args, filter.StartsFrom.Unix())
	}
	if filter.StartsBefore != nil {
		clauses = append(clauses, "start_unix < ?")
		args = append(args, filter.StartsBefore.Unix())
	}

	query := selectEventColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_unix ASC, id ASC"

	var rows []eventRow
	if err := r.pool.DB().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, r.mapper.MapError(err)
	}

	events := make([]persistence.Event, 0, len(rows))
	for _, row := range rows {
		event, err := fromEventRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// DeleteEvent removes an event by ID
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func validateEvent(event persistence.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("%w: title is required", persistence.ErrConstraintViolation)
	}
	if event.End.Before(event.Start) {
		return fmt.Errorf("%w: end before start", persistence.ErrConstraintViolation)
	}
	return nil
}

func toEventRow(event persistence.Event) eventRow {
	row := eventRow{
		ID:        event.ID,
		Title:     event.Title,
		StartTime: formatTime(event.Start),
		EndTime:   formatTime(event.End),
		StartUnix: event.Start.Unix(),
		EndUnix:   event.End.Unix(),
		AllDay:    event.AllDay,
		Location:  event.Location,
		Timezone:  event.Timezone,
		CreatedAt: formatTime(event.CreatedAt),
		UpdatedAt: formatTime(event.UpdatedAt),
	}
	if event.Description != nil {
		row.Description = sql.NullString{String: *event.Description, Valid: true}
	}
	if event.Temperature != nil {
		row.Temperature = sql.NullFloat64{Float64: *event.Temperature, Valid: true}
	}
	if event.Condition != nil {
		row.Condition = sql.NullString{String: *event.Condition, Valid: true}
	}
	if event.Icon != nil {
		row.Icon = sql.NullString{String: *event.Icon, Valid: true}
	}
	return row
}

func fromEventRow(row eventRow) (persistence.Event, error) {
	start, err := parseTime(row.StartTime)
	if err != nil {
		return persistence.Event{}, fmt.Errorf("event %s: start_time: %w", row.ID, err)
	}
	end, err := parseTime(row.EndTime)
	if err != nil {
		return persistence.Event{}, fmt.Errorf("event %s: end_time: %w", row.ID, err)
	}
	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return persistence.Event{}, fmt.Errorf("event %s: created_at: %w", row.ID, err)
	}
	updatedAt, err := parseTime(row.UpdatedAt)
	if err != nil {
		return persistence.Event{}, fmt.Errorf("event %s: updated_at: %w", row.ID, err)
	}

	event := persistence.Event{
		ID:        row.ID,
		Title:     row.Title,
		Start:     start,
		End:       end,
		AllDay:    row.AllDay,
		Location:  row.Location,
		Timezone:  row.Timezone,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if row.Description.Valid {
		description := row.Description.String
		event.Description = &description
	}
	if row.Temperature.Valid {
		temperature := row.Temperature.Float64
		event.Temperature = &temperature
	}
	if row.Condition.Valid {
		condition := row.Condition.String
		event.Condition = &condition
	}
	if row.Icon.Valid {
		icon := row.Icon.String
		event.Icon = &icon
	}
	return event, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}
