package assistant

import (
	"fmt"
	"time"

	"github.com/DavidVart/Personal-Assistant/internal/dispatch"
)

const basePrompt = `You are a helpful personal assistant. You manage the user's calendar events, to-do list, notes, and contacts through the operations provided to you.

Rules:
- Always use the provided operations to read or change the user's data; never invent records.
- Resolve relative dates ("tomorrow", "next Monday") with get_current_time before scheduling.
- Dates are YYYY-MM-DD and times are 24-hour HH:MM when calling operations.
- Relay operation results to the user in friendly, natural language.
- If a request is outside your operations, say so plainly instead of guessing.`

const integratedPrompt = `
- The user's calendar is synced with Google Calendar; event operations act on it directly.`

// SystemPrompt builds the system message for a mode, pinned to the
// session's start date so the model has an absolute anchor.
func SystemPrompt(mode dispatch.Mode, now time.Time) string {
	prompt := basePrompt
	if mode == dispatch.ModeIntegrated {
		prompt += integratedPrompt
	}
	return prompt + fmt.Sprintf("\n\nToday is %s.", now.Format("Monday, January 2, 2006"))
}
