package calendar

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

var (
	// ErrNotConfigured means no OAuth client credentials file is present.
	ErrNotConfigured = errors.New("calendar integration is not configured")
	// ErrNotAuthenticated means credentials exist but no token has been
	// obtained yet; run the setup flow.
	ErrNotAuthenticated = errors.New("calendar integration is not authenticated")
)

// Credential file names under the credentials directory.
const (
	CredentialsFile = "credentials.json"
	TokenFile       = "token.json"
)

// Connect builds an authenticated Google provider from cached
// credentials. It never prompts; interactive authorization lives in
// Authorize.
func Connect(ctx context.Context, credentialsDir, calendarID string) (*GoogleProvider, error) {
	conf, err := loadOAuthConfig(credentialsDir)
	if err != nil {
		return nil, err
	}
	token, err := loadToken(filepath.Join(credentialsDir, TokenFile))
	if err != nil {
		return nil, err
	}
	// TokenSource refreshes expired tokens transparently using the
	// refresh token.
	client := conf.Client(ctx, token)
	return NewGoogleProvider(ctx, client, calendarID)
}

// Authorize runs the manual OAuth consent flow: print the URL, read the
// pasted code from in, exchange it, and cache the token.
func Authorize(ctx context.Context, credentialsDir string, in io.Reader, out io.Writer) error {
	conf, err := loadOAuthConfig(credentialsDir)
	if err != nil {
		return err
	}

	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Go to the following link in your browser, then paste the authorization code:\n%s\n> ", authURL)

	reader := bufio.NewReader(in)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("authorization code is empty")
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := saveToken(filepath.Join(credentialsDir, TokenFile), token); err != nil {
		return err
	}
	fmt.Fprintln(out, "Google Calendar connected.")
	return nil
}

// Status reports the integration state as user-facing text.
func Status(credentialsDir string) string {
	if _, err := os.Stat(filepath.Join(credentialsDir, CredentialsFile)); err != nil {
		return "not configured (credentials.json missing)"
	}
	if _, err := os.Stat(filepath.Join(credentialsDir, TokenFile)); err != nil {
		return "configured but not authenticated (run setup)"
	}
	return "connected"
}

func loadOAuthConfig(credentialsDir string) (*oauth2.Config, error) {
	path := filepath.Join(credentialsDir, CredentialsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s missing", ErrNotConfigured, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	conf, err := google.ConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = "urn:ietf:wg:oauth:2.0:oob"
	}
	return conf, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s missing", ErrNotAuthenticated, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
