package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/DavidVart/Personal-Assistant/internal/assistant"
	"github.com/DavidVart/Personal-Assistant/internal/calendar"
	"github.com/DavidVart/Personal-Assistant/internal/config"
	"github.com/DavidVart/Personal-Assistant/internal/dispatch"
	"github.com/DavidVart/Personal-Assistant/internal/provider"
	"github.com/DavidVart/Personal-Assistant/internal/records"
	"github.com/DavidVart/Personal-Assistant/internal/storage"
	"github.com/DavidVart/Personal-Assistant/internal/tui"
	"github.com/DavidVart/Personal-Assistant/internal/web"
)

func main() {
	var (
		configPath string
		modeFlag   string
		portFlag   int
		dataDir    string
		setupCal   bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config JSON/JSONC")
	flag.StringVar(&modeFlag, "mode", "", "Run mode: basic, advanced, web, or integrated")
	flag.IntVar(&portFlag, "port", 0, "Web server port (web mode)")
	flag.StringVar(&dataDir, "data", "", "Data directory override")
	flag.BoolVar(&setupCal, "setup-calendar", false, "Run the Google Calendar authorization flow and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if modeFlag != "" {
		cfg.Runtime.Mode = modeFlag
	}
	if portFlag > 0 {
		cfg.Web.Port = portFlag
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}

	if setupCal {
		if err := calendar.Authorize(context.Background(), cfg.Calendar.CredentialsDir, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "calendar setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	mode, ok := dispatch.ParseMode(cfg.Runtime.Mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown mode %q (want basic, advanced, web, or integrated)\n", cfg.Runtime.Mode)
		os.Exit(1)
	}

	stores, err := records.OpenDir(cfg.Storage.DataDir)
	if err != nil {
		if errors.Is(err, records.ErrCorrupt) {
			fmt.Fprintf(os.Stderr, "data file is corrupt, refusing to start: %v\n", err)
			fmt.Fprintf(os.Stderr, "fix or remove the file under %s and try again\n", cfg.Storage.DataDir)
		} else {
			fmt.Fprintf(os.Stderr, "open data files failed: %v\n", err)
		}
		os.Exit(1)
	}

	sessions, err := storage.NewSQLiteStore(cfg.Storage.SessionDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open session store failed: %v\n", err)
		os.Exit(1)
	}
	defer sessions.Close()

	llm := provider.NewOpenAIProvider(provider.OpenAIConfig{
		BaseURL:    cfg.Provider.BaseURL,
		APIKey:     cfg.Provider.APIKey,
		Model:      cfg.Provider.Model,
		TimeoutMS:  cfg.Provider.TimeoutMS,
		MaxRetries: cfg.Provider.MaxRetries,
	})

	// Integrated mode talks to Google Calendar; anything short of a
	// working connection falls back to local events with a warning.
	var remote calendar.Provider
	calendarStatus := func() string { return calendar.Status(cfg.Calendar.CredentialsDir) }
	if mode == dispatch.ModeIntegrated {
		g, err := calendar.Connect(context.Background(), cfg.Calendar.CredentialsDir, cfg.Calendar.CalendarID)
		switch {
		case err == nil:
			remote = g
		case errors.Is(err, calendar.ErrNotConfigured):
			fmt.Fprintf(os.Stderr, "calendar not configured, using local events (place %s under %s)\n",
				calendar.CredentialsFile, cfg.Calendar.CredentialsDir)
		case errors.Is(err, calendar.ErrNotAuthenticated):
			fmt.Fprintln(os.Stderr, "calendar not authenticated, using local events (run with -setup-calendar)")
		default:
			fmt.Fprintf(os.Stderr, "calendar connection failed, using local events: %v\n", err)
		}
	}

	deps := dispatch.Deps{
		Stores:         stores,
		Remote:         remote,
		CalendarStatus: calendarStatus,
		Now:            time.Now,
	}
	tokenizer := assistant.NewTokenizerForModel(cfg.Provider.Model)
	newConversation := func() *assistant.Assistant {
		catalogMode := mode
		if catalogMode == dispatch.ModeWeb {
			catalogMode = dispatch.ModeAdvanced
		}
		return assistant.New(assistant.Options{
			Provider:     llm,
			Registry:     dispatch.Catalog(catalogMode, deps),
			SystemPrompt: assistant.SystemPrompt(catalogMode, time.Now()),
			MaxSteps:     cfg.Runtime.MaxSteps,
			TokenBudget:  cfg.Runtime.ContextTokenLimit,
			Tokenizer:    tokenizer,
		})
	}

	if mode == dispatch.ModeWeb {
		srv := web.NewServer(web.Options{
			Stores:          stores,
			Sessions:        sessions,
			NewConversation: newConversation,
			CalendarStatus:  calendarStatus,
			Mode:            string(mode),
			Model:           cfg.Provider.Model,
		})
		addr := net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port))
		fmt.Printf("assistant web server listening on http://%s\n", addr)
		if err := srv.Run(addr); err != nil {
			fmt.Fprintf(os.Stderr, "web server failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runREPL(cfg, mode, stores, sessions, newConversation, calendarStatus)
}

func runREPL(
	cfg config.Config,
	mode dispatch.Mode,
	stores *records.Stores,
	sessions storage.Store,
	newConversation func() *assistant.Assistant,
	calendarStatus func() string,
) {
	theme := tui.DarkTheme()
	inputReader, inputErr := newLineInput(filepath.Dir(cfg.Storage.SessionDB))
	if inputErr != nil {
		fmt.Fprintf(os.Stderr, "line editor unavailable, fallback to basic input: %v\n", inputErr)
	}
	defer inputReader.Close()

	conv := newConversation()
	sessionID := storage.NewSessionID()
	if err := sessions.CreateSession(storage.SessionMeta{
		ID:    sessionID,
		Title: "terminal session",
		Mode:  string(mode),
		Model: cfg.Provider.Model,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "create session failed: %v\n", err)
	}

	fmt.Println(tui.Banner(theme, string(mode), cfg.Provider.Model))
	fmt.Println(tui.InfoLine(theme, "Type /help for commands, /exit to quit."))

	saveCurrent := func() {
		if err := sessions.SaveMessages(sessionID, conv.History()); err != nil {
			fmt.Fprintf(os.Stderr, "save session failed: %v\n", err)
		}
	}

	for {
		line, err := inputReader.ReadLine("you> ")
		if err != nil {
			switch {
			case errors.Is(err, readline.ErrInterrupt):
				fmt.Fprintln(os.Stdout)
				continue
			case errors.Is(err, io.EOF):
				fmt.Println(tui.InfoLine(theme, "Goodbye!"))
				saveCurrent()
				return
			default:
				fmt.Fprintf(os.Stderr, "read input failed: %v\n", err)
				return
			}
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if handled, shouldExit := handleCommand(replContext{
			input:          input,
			theme:          theme,
			mode:           mode,
			model:          cfg.Provider.Model,
			stores:         stores,
			sessions:       sessions,
			calendarStatus: calendarStatus,
			conv:           conv,
			sessionID:      &sessionID,
			newConv: func() *assistant.Assistant {
				conv = newConversation()
				return conv
			},
		}); handled {
			if shouldExit {
				saveCurrent()
				fmt.Println(tui.InfoLine(theme, "Goodbye!"))
				return
			}
			continue
		}

		reply, err := conv.RunInput(context.Background(), input)
		if err != nil {
			fmt.Println(tui.ErrorLine(theme, assistant.FailureMessage(err)))
			continue
		}
		fmt.Println(tui.RenderMarkdown(reply, 100))
		saveCurrent()
	}
}
