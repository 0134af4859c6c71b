package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/DavidVart/Personal-Assistant/internal/assistant"
	"github.com/DavidVart/Personal-Assistant/internal/dispatch"
	"github.com/DavidVart/Personal-Assistant/internal/records"
	"github.com/DavidVart/Personal-Assistant/internal/storage"
	"github.com/DavidVart/Personal-Assistant/internal/tui"
)

var replCommands = []string{
	"/help               show this help",
	"/ops                list the operations the assistant can perform",
	"/status             show mode, model, record counts, and calendar state",
	"/new                start a fresh conversation",
	"/sessions           list saved sessions",
	"/exit, /quit        save and leave (plain 'exit' works too)",
}

type replContext struct {
	input          string
	theme          tui.Theme
	mode           dispatch.Mode
	model          string
	stores         *records.Stores
	sessions       storage.Store
	calendarStatus func() string
	conv           *assistant.Assistant
	sessionID      *string
	newConv        func() *assistant.Assistant
}

// handleCommand runs a slash command. The first return value says the
// line was a command; the second says the REPL should exit.
func handleCommand(ctx replContext) (bool, bool) {
	parts := strings.Fields(ctx.input)
	if len(parts) == 0 {
		return false, false
	}
	switch parts[0] {
	case "/exit", "/quit", "exit", "quit":
		return true, true
	case "/help":
		printREPLCommands(os.Stdout)
		return true, false
	case "/ops":
		for _, name := range ctx.conv.OperationNames() {
			fmt.Printf("  %s\n", name)
		}
		return true, false
	case "/status":
		fmt.Println(tui.StatusLines(ctx.theme, [][2]string{
			{"mode", string(ctx.mode)},
			{"model", ctx.model},
			{"events", strconv.Itoa(ctx.stores.Events.Len())},
			{"todos", strconv.Itoa(ctx.stores.Todos.Len())},
			{"notes", strconv.Itoa(ctx.stores.Notes.Len())},
			{"contacts", strconv.Itoa(ctx.stores.Contacts.Len())},
			{"calendar", ctx.calendarStatus()},
		}))
		return true, false
	case "/new":
		ctx.newConv()
		id := storage.NewSessionID()
		if err := ctx.sessions.CreateSession(storage.SessionMeta{
			ID:    id,
			Title: "terminal session",
			Mode:  string(ctx.mode),
			Model: ctx.model,
		}); err != nil {
			fmt.Println(tui.ErrorLine(ctx.theme, fmt.Sprintf("create session failed: %v", err)))
			return true, false
		}
		*ctx.sessionID = id
		fmt.Println(tui.InfoLine(ctx.theme, "new conversation: "+id))
		return true, false
	case "/sessions":
		metas, err := ctx.sessions.ListSessions()
		if err != nil {
			fmt.Println(tui.ErrorLine(ctx.theme, fmt.Sprintf("list sessions failed: %v", err)))
			return true, false
		}
		if len(metas) == 0 {
			fmt.Println(tui.InfoLine(ctx.theme, "no sessions"))
			return true, false
		}
		for _, meta := range metas {
			fmt.Printf("%s  mode=%s  updated=%s  title=%s\n", meta.ID, meta.Mode, meta.UpdatedAt, meta.Title)
		}
		return true, false
	}
	if strings.HasPrefix(parts[0], "/") {
		fmt.Println(tui.InfoLine(ctx.theme, "unknown command, try /help"))
		return true, false
	}
	return false, false
}

func printREPLCommands(out *os.File) {
	fmt.Fprintln(out, "commands:")
	for _, cmd := range replCommands {
		fmt.Fprintf(out, "  %s\n", cmd)
	}
}
