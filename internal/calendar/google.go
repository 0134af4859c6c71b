package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider against the Google Calendar v3 API.
type GoogleProvider struct {
	service    *gcal.Service
	calendarID string
}

// NewGoogleProvider builds a provider from an already-authenticated
// HTTP client. An empty calendarID means the account's primary
// calendar.
func NewGoogleProvider(ctx context.Context, client *http.Client, calendarID string) (*GoogleProvider, error) {
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleProvider{service: service, calendarID: calendarID}, nil
}

func (g *GoogleProvider) AddEvent(ctx context.Context, ev RemoteEvent) (RemoteEvent, error) {
	created, err := g.service.Events.Insert(g.calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return RemoteEvent{}, fmt.Errorf("insert event: %w", err)
	}
	return fromGoogleEvent(created), nil
}

func (g *GoogleProvider) GetEvent(ctx context.Context, eventID string) (RemoteEvent, error) {
	item, err := g.service.Events.Get(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return RemoteEvent{}, fmt.Errorf("get event %s: %w", eventID, err)
	}
	return fromGoogleEvent(item), nil
}

func (g *GoogleProvider) ListEvents(ctx context.Context, from, to time.Time) ([]RemoteEvent, error) {
	resp, err := g.service.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]RemoteEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, fromGoogleEvent(item))
	}
	return out, nil
}

func (g *GoogleProvider) UpdateEvent(ctx context.Context, ev RemoteEvent) (RemoteEvent, error) {
	if ev.ID == "" {
		return RemoteEvent{}, fmt.Errorf("update event: remote event id is empty")
	}
	updated, err := g.service.Events.Update(g.calendarID, ev.ID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return RemoteEvent{}, fmt.Errorf("update event %s: %w", ev.ID, err)
	}
	return fromGoogleEvent(updated), nil
}

func (g *GoogleProvider) DeleteEvent(ctx context.Context, eventID string) error {
	if err := g.service.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

// Ping verifies the calendar is reachable with the current credentials.
func (g *GoogleProvider) Ping(ctx context.Context) error {
	if _, err := g.service.Calendars.Get(g.calendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("get calendar %s: %w", g.calendarID, err)
	}
	return nil
}

func toGoogleEvent(ev RemoteEvent) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
	}
}

func fromGoogleEvent(item *gcal.Event) RemoteEvent {
	ev := RemoteEvent{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		HTMLLink:    item.HtmlLink,
	}
	if item.Start != nil {
		ev.Start = parseGoogleTime(item.Start)
	}
	if item.End != nil {
		ev.End = parseGoogleTime(item.End)
	}
	return ev
}

func parseGoogleTime(dt *gcal.EventDateTime) time.Time {
	if dt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, dt.DateTime)
		return t
	}
	// All-day events carry only a date.
	t, _ := time.Parse("2006-01-02", dt.Date)
	return t
}
