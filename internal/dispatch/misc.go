package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/chat"
)

// CurrentTimeOp reports the current date and time so the model can
// resolve relative phrases like "tomorrow".
type CurrentTimeOp struct {
	now func() time.Time
}

func NewCurrentTimeOp(now func() time.Time) *CurrentTimeOp {
	if now == nil {
		now = time.Now
	}
	return &CurrentTimeOp{now: now}
}

func (o *CurrentTimeOp) Name() string { return "get_current_time" }

func (o *CurrentTimeOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Get the current date and time; use this to resolve relative dates like 'tomorrow'",
			Parameters:  objectSchema(map[string]any{}),
		},
	}
}

func (o *CurrentTimeOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	now := o.now()
	return fmt.Sprintf("It is now %s (%s).", now.Format(longDateTime), now.Format(dateLayout)), nil
}

// IntegrationStatusOp reports whether the external calendar is
// connected.
type IntegrationStatusOp struct {
	status func() string
}

// NewIntegrationStatusOp takes a status callback so the op stays
// decoupled from credential storage.
func NewIntegrationStatusOp(status func() string) *IntegrationStatusOp {
	if status == nil {
		status = func() string { return "not configured" }
	}
	return &IntegrationStatusOp{status: status}
}

func (o *IntegrationStatusOp) Name() string { return "integration_status" }

func (o *IntegrationStatusOp) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        o.Name(),
			Description: "Report whether the Google Calendar integration is connected",
			Parameters:  objectSchema(map[string]any{}),
		},
	}
}

func (o *IntegrationStatusOp) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return fmt.Sprintf("Google Calendar integration: %s.", o.status()), nil
}
