package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/calendar"
	"github.com/DavidVart/Personal-Assistant/internal/chat"
	"github.com/DavidVart/Personal-Assistant/internal/query"
	"github.com/DavidVart/Personal-Assistant/internal/records"
)

const defaultEventDurationMinutes = 60

// AddEventOp schedules an event, preferring the external calendar when
// one is connected.
type AddEventOp struct {
	store  *records.EventStore
	remote calendar.Provider
}

func NewAddEventOp(store *records.EventStore, remote calendar.Provider) *AddEventOp {
	return &AddEventOp{store: store, remote: remote}
}

func (o *AddEventOp) Name() string { return "add_event" }

func (o *AddEventOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Schedule an event on a specific date and time",
			Parameters: objectSchema(map[string]any{
				"date":             stringProp("The date in YYYY-MM-DD format"),
				"time":             stringProp("The time in HH:MM format"),
				"title":            stringProp("The name or title of the event"),
				"description":      stringProp("Optional detailed description of the event"),
				"location":         stringProp("Optional location of the event"),
				"duration_minutes": intProp("Optional duration in minutes (default 60)"),
			}, "date", "time", "title"),
		},
	}
}

func (o *AddEventOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Date            string `json:"date"`
		Time            string `json:"time"`
		Title           string `json:"title"`
		Description     string `json:"description"`
		Location        string `json:"location"`
		DurationMinutes int    `json:"duration_minutes"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed add_event arguments", records.ErrValidation)
	}

	start, err := parseDateTime(in.Date, in.Time)
	if err != nil {
		return "", err
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = defaultEventDurationMinutes
	}
	end := start.Add(time.Duration(in.DurationMinutes) * time.Minute)

	if o.remote != nil {
		_, err := o.remote.AddEvent(ctx, calendar.RemoteEvent{
			Title:       in.Title,
			Description: in.Description,
			Location:    in.Location,
			Start:       start,
			End:         end,
		})
		if err != nil {
			return "", fmt.Errorf("add event to remote calendar: %w", err)
		}
		return fmt.Sprintf("Scheduled '%s' on %s in Google Calendar.", in.Title, start.Format(longDateTime)), nil
	}

	created, err := o.store.Create(records.Event{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Start:       start,
		End:         end,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Scheduled '%s' on %s.", created.Title, created.Start.Format(longDateTime)), nil
}

// ListEventsOp lists events, optionally restricted to one date or a
// look-ahead window.
type ListEventsOp struct {
	store  *records.EventStore
	remote calendar.Provider
	now    func() time.Time
}

func NewListEventsOp(store *records.EventStore, remote calendar.Provider, now func() time.Time) *ListEventsOp {
	if now == nil {
		now = time.Now
	}
	return &ListEventsOp{store: store, remote: remote, now: now}
}

func (o *ListEventsOp) Name() string { return "list_events" }

func (o *ListEventsOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "List scheduled events, optionally filtered by date",
			Parameters: objectSchema(map[string]any{
				"date": stringProp("Optional date in YYYY-MM-DD format to filter events"),
				"days": intProp("Optional look-ahead window in days for the connected calendar (default 7); local events are always listed in full"),
			}),
		},
	}
}

func (o *ListEventsOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Date string `json:"date"`
		Days int    `json:"days"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed list_events arguments", records.ErrValidation)
	}
	if in.Days <= 0 {
		in.Days = 7
	}

	if o.remote != nil {
		return o.listRemote(ctx, in.Date, in.Days)
	}

	events := o.store.List()
	if in.Date != "" {
		day, err := parseDate(in.Date)
		if err != nil {
			return "", err
		}
		events = query.EventsOn(events, day)
	}
	if len(events) == 0 {
		if in.Date != "" {
			return "No events found.", nil
		}
		return "You have no scheduled events.", nil
	}

	var b strings.Builder
	b.WriteString("Here are your scheduled events:\n\n")
	for _, ev := range query.SortEventsByStart(events) {
		fmt.Fprintf(&b, "- [%d] %s on %s\n", ev.ID, ev.Title, ev.Start.Format(longDateTime))
		if ev.Location != "" {
			fmt.Fprintf(&b, "  Location: %s\n", ev.Location)
		}
		if ev.Description != "" {
			fmt.Fprintf(&b, "  Description: %s\n", ev.Description)
		}
	}
	return b.String(), nil
}

func (o *ListEventsOp) listRemote(ctx context.Context, date string, days int) (string, error) {
	from := o.now()
	if date != "" {
		day, err := parseDate(date)
		if err != nil {
			return "", err
		}
		from = day
	}
	to := from.AddDate(0, 0, days)

	events, err := o.remote.ListEvents(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("list remote calendar events: %w", err)
	}
	if len(events) == 0 {
		return "You have no scheduled events in Google Calendar.", nil
	}

	var b strings.Builder
	b.WriteString("Here are your scheduled events from Google Calendar:\n\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s on %s (id: %s)\n", ev.Title, ev.Start.Format(longDateTime), ev.ID)
		if ev.Location != "" {
			fmt.Fprintf(&b, "  Location: %s\n", ev.Location)
		}
		if ev.Description != "" {
			fmt.Fprintf(&b, "  Description: %s\n", ev.Description)
		}
	}
	return b.String(), nil
}

// UpdateEventOp reschedules or edits an existing event.
type UpdateEventOp struct {
	store  *records.EventStore
	remote calendar.Provider
}

func NewUpdateEventOp(store *records.EventStore, remote calendar.Provider) *UpdateEventOp {
	return &UpdateEventOp{store: store, remote: remote}
}

func (o *UpdateEventOp) Name() string { return "update_event" }

func (o *UpdateEventOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Update an existing event; only the provided fields change",
			Parameters: objectSchema(map[string]any{
				"id":               stringProp("The event ID from list_events"),
				"title":            stringProp("New title"),
				"date":             stringProp("New date in YYYY-MM-DD format (requires time)"),
				"time":             stringProp("New time in HH:MM format (requires date)"),
				"duration_minutes": intProp("New duration in minutes"),
				"location":         stringProp("New location"),
				"description":      stringProp("New description"),
			}, "id"),
		},
	}
}

type updateEventArgs struct {
	ID              string  `json:"id"`
	Title           *string `json:"title"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	DurationMinutes *int    `json:"duration_minutes"`
	Location        *string `json:"location"`
	Description     *string `json:"description"`
}

func (o *UpdateEventOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in updateEventArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed update_event arguments", records.ErrValidation)
	}
	if (in.Date == nil) != (in.Time == nil) {
		return "", fmt.Errorf("%w: rescheduling needs both date and time", records.ErrValidation)
	}

	var newStart *time.Time
	if in.Date != nil {
		start, err := parseDateTime(*in.Date, *in.Time)
		if err != nil {
			return "", err
		}
		newStart = &start
	}

	if o.remote != nil {
		return o.updateRemote(ctx, in, newStart)
	}

	id, err := localEventID(in.ID)
	if err != nil {
		return "", err
	}
	updated, err := o.store.Update(id, func(ev *records.Event) {
		if in.Title != nil {
			ev.Title = *in.Title
		}
		if in.Location != nil {
			ev.Location = *in.Location
		}
		if in.Description != nil {
			ev.Description = *in.Description
		}
		duration := ev.End.Sub(ev.Start)
		if newStart != nil {
			ev.Start = *newStart
		}
		if in.DurationMinutes != nil {
			duration = time.Duration(*in.DurationMinutes) * time.Minute
		}
		ev.End = ev.Start.Add(duration)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Updated event '%s', now on %s.", updated.Title, updated.Start.Format(longDateTime)), nil
}

func (o *UpdateEventOp) updateRemote(ctx context.Context, in updateEventArgs, newStart *time.Time) (string, error) {
	existing, err := o.remote.GetEvent(ctx, in.ID)
	if err != nil {
		return "", fmt.Errorf("fetch remote calendar event: %w", err)
	}
	if in.Title != nil {
		existing.Title = *in.Title
	}
	if in.Location != nil {
		existing.Location = *in.Location
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	duration := existing.End.Sub(existing.Start)
	if newStart != nil {
		existing.Start = *newStart
	}
	if in.DurationMinutes != nil {
		duration = time.Duration(*in.DurationMinutes) * time.Minute
	}
	existing.End = existing.Start.Add(duration)

	updated, err := o.remote.UpdateEvent(ctx, existing)
	if err != nil {
		return "", fmt.Errorf("update remote calendar event: %w", err)
	}
	return fmt.Sprintf("Updated event '%s' in Google Calendar, now on %s.", updated.Title, updated.Start.Format(longDateTime)), nil
}

// DeleteEventOp removes an event.
type DeleteEventOp struct {
	store  *records.EventStore
	remote calendar.Provider
}

func NewDeleteEventOp(store *records.EventStore, remote calendar.Provider) *DeleteEventOp {
	return &DeleteEventOp{store: store, remote: remote}
}

func (o *DeleteEventOp) Name() string { return "delete_event" }

func (o *DeleteEventOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Delete an event by its ID",
			Parameters: objectSchema(map[string]any{
				"id": stringProp("The event ID from list_events"),
			}, "id"),
		},
	}
}

func (o *DeleteEventOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("%w: malformed delete_event arguments", records.ErrValidation)
	}

	if o.remote != nil {
		if err := o.remote.DeleteEvent(ctx, in.ID); err != nil {
			return "", fmt.Errorf("delete remote calendar event: %w", err)
		}
		return "Deleted the event from Google Calendar.", nil
	}

	id, err := localEventID(in.ID)
	if err != nil {
		return "", err
	}
	ev, err := o.store.Get(id)
	if err != nil {
		return "", fmt.Errorf("%w: no event found with ID %d", records.ErrNotFound, id)
	}
	if err := o.store.Delete(id); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted event '%s'.", ev.Title), nil
}

func localEventID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: event ID must be a number (got %q)", records.ErrValidation, raw)
	}
	return id, nil
}
