// Package calendar is the optional external-calendar integration.
// When it is not configured or not authenticated the assistant falls
// back to the local event collection.
package calendar

import (
	"context"
	"time"
)

// RemoteEvent is one event as the remote calendar sees it. Remote IDs
// are provider-assigned strings, unrelated to local record IDs.
type RemoteEvent struct {
	ID          string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	HTMLLink    string
}

// Provider exposes create/list/update/delete over an authenticated
// remote calendar API.
type Provider interface {
	AddEvent(ctx context.Context, ev RemoteEvent) (RemoteEvent, error)
	GetEvent(ctx context.Context, eventID string) (RemoteEvent, error)
	ListEvents(ctx context.Context, from, to time.Time) ([]RemoteEvent, error)
	UpdateEvent(ctx context.Context, ev RemoteEvent) (RemoteEvent, error)
	DeleteEvent(ctx context.Context, eventID string) error
}
