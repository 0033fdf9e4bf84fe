package persistence

import "time"

// Event is a calendar entry as stored in the events table.
type Event struct {
	ID          string
	Title       string
	Description *string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Location    string
	Timezone    string
	Temperature *float64
	Condition   *string
	Icon        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
