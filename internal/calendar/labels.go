package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Labels carries the locale strings used when rendering cells.
type Labels struct {
	// Weekdays is indexed by time.Weekday.
	Weekdays [7]string
	// MoreFormat renders the hidden event count of a month cell.
	MoreFormat string
}

// SpanishLabels returns the default labels.
func SpanishLabels() Labels {
	return Labels{
		Weekdays:   [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
		MoreFormat: "+%d eventos",
	}
}

// EnglishLabels returns English labels.
func EnglishLabels() Labels {
	return Labels{
		Weekdays:   [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		MoreFormat: "+%d more",
	}
}

// LabelsFor resolves a locale tag such as "es" or "en-US". Unknown tags fall
// back to Spanish.
func LabelsFor(locale string) Labels {
	tag := strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(tag, "en") {
		return EnglishLabels()
	}
	return SpanishLabels()
}

// Weekday returns the label for d.
func (l Labels) Weekday(d time.Weekday) string {
	return l.Weekdays[d%7]
}

// More renders the summary for n hidden events.
func (l Labels) More(n int) string {
	format := l.MoreFormat
	if format == "" {
		format = "+%d"
	}
	return fmt.Sprintf(format, n)
}

func (l Labels) isZero() bool {
	return l.MoreFormat == "" && l.Weekdays == [7]string{}
}
