package dispatch

import (
	"fmt"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/records"
)

// longDateTime is the spoken-style timestamp used in confirmations,
// e.g. "Saturday, June 15, 2024 at 10:00 AM".
const longDateTime = "Monday, January 2, 2006 at 3:04 PM"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// parseDateTime combines a YYYY-MM-DD date and HH:MM time into a local
// instant. Failures wrap records.ErrValidation so they surface as user
// text, not faults.
func parseDateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: please provide date in YYYY-MM-DD format and time in HH:MM format", records.ErrValidation)
	}
	return t, nil
}

func parseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", records.ErrValidation, date)
	}
	return t, nil
}

func priorityMarker(priority string) string {
	switch priority {
	case records.PriorityHigh:
		return "🔴"
	case records.PriorityMedium:
		return "🟡"
	case records.PriorityLow:
		return "🟢"
	default:
		return ""
	}
}

func checkbox(completed bool) string {
	if completed {
		return "[✓]"
	}
	return "[ ]"
}

// preview truncates note content for search listings.
func preview(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}

// objectSchema is shorthand for the JSON-schema parameter maps the
// model consumes.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func boolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

func arrayOfStringsProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       map[string]any{"type": "string"},
	}
}
