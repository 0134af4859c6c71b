package dispatch

import (
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/calendar"
	"github.com/DavidVart/Personal-Assistant/internal/records"
)

// Mode selects which operations the assistant exposes.
type Mode string

const (
	// ModeBasic covers day-to-day capture: events, tasks, notes, time.
	ModeBasic Mode = "basic"
	// ModeAdvanced adds editing, deletion, search and contacts.
	ModeAdvanced Mode = "advanced"
	// ModeWeb is the advanced catalog served over HTTP.
	ModeWeb Mode = "web"
	// ModeIntegrated is the advanced catalog with the external calendar
	// wired in.
	ModeIntegrated Mode = "integrated"
)

// ParseMode validates a mode string from flags or config.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeBasic, ModeAdvanced, ModeWeb, ModeIntegrated:
		return Mode(s), true
	}
	return "", false
}

// Deps carries everything the operation handlers need. Remote is nil
// unless the calendar integration is connected; CalendarStatus may be
// nil when the mode has no integration surface.
type Deps struct {
	Stores         *records.Stores
	Remote         calendar.Provider
	CalendarStatus func() string
	Now            func() time.Time
}

// Catalog builds the operation registry for a mode. The catalog is
// closed: nothing outside it is ever dispatched.
func Catalog(mode Mode, d Deps) *Registry {
	if d.Now == nil {
		d.Now = time.Now
	}

	ops := []Op{
		NewAddEventOp(d.Stores.Events, d.Remote),
		NewListEventsOp(d.Stores.Events, d.Remote, d.Now),
		NewAddTodoOp(d.Stores.Todos),
		NewListTodosOp(d.Stores.Todos),
		NewCompleteTodoOp(d.Stores.Todos),
		NewAddNoteOp(d.Stores.Notes),
		NewListNotesOp(d.Stores.Notes),
		NewGetNoteOp(d.Stores.Notes),
		NewCurrentTimeOp(d.Now),
	}

	if mode != ModeBasic {
		ops = append(ops,
			NewUpdateEventOp(d.Stores.Events, d.Remote),
			NewDeleteEventOp(d.Stores.Events, d.Remote),
			NewDeleteTodoOp(d.Stores.Todos),
			NewUpdateNoteOp(d.Stores.Notes),
			NewDeleteNoteOp(d.Stores.Notes),
			NewSearchNotesOp(d.Stores.Notes),
			NewListTagsOp(d.Stores.Notes),
			NewAddContactOp(d.Stores.Contacts),
			NewGetContactOp(d.Stores.Contacts),
			NewUpdateContactOp(d.Stores.Contacts),
			NewDeleteContactOp(d.Stores.Contacts),
			NewFindContactsOp(d.Stores.Contacts),
			NewListContactsOp(d.Stores.Contacts),
		)
	}

	if mode == ModeIntegrated {
		ops = append(ops, NewIntegrationStatusOp(d.CalendarStatus))
	}

	return NewRegistry(ops...)
}
