// Package config loads layered JSON configuration: built-in defaults,
// then the global file under the home directory, then the project
// file, then environment overrides. Later layers win.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type ProviderConfig struct {
	BaseURL    string `json:"base_url"`
	Model      string `json:"model"`
	APIKey     string `json:"api_key"`
	TimeoutMS  int    `json:"timeout_ms"`
	MaxRetries int    `json:"max_retries"`
}

type RuntimeConfig struct {
	Mode              string `json:"mode"`
	MaxSteps          int    `json:"max_steps"`
	ContextTokenLimit int    `json:"context_token_limit"`
}

type StorageConfig struct {
	// DataDir holds the JSON record collections.
	DataDir string `json:"data_dir"`
	// SessionDB is the SQLite file for conversation history.
	SessionDB string `json:"session_db"`
}

type WebConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type CalendarConfig struct {
	// CredentialsDir holds credentials.json and the cached token.
	CredentialsDir string `json:"credentials_dir"`
	CalendarID     string `json:"calendar_id"`
}

type Config struct {
	Provider ProviderConfig `json:"provider"`
	Runtime  RuntimeConfig  `json:"runtime"`
	Storage  StorageConfig  `json:"storage"`
	Web      WebConfig      `json:"web"`
	Calendar CalendarConfig `json:"calendar"`
}

// fileConfig mirrors Config with optional sections so a file can
// override just the keys it names.
type fileConfig struct {
	Provider *ProviderConfig `json:"provider"`
	Runtime  *RuntimeConfig  `json:"runtime"`
	Storage  *StorageConfig  `json:"storage"`
	Web      *WebConfig      `json:"web"`
	Calendar *CalendarConfig `json:"calendar"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o-mini",
			TimeoutMS:  120000,
			MaxRetries: 3,
		},
		Runtime: RuntimeConfig{
			Mode:              "advanced",
			MaxSteps:          8,
			ContextTokenLimit: 24000,
		},
		Storage: StorageConfig{
			DataDir:   "~/.assistant/data",
			SessionDB: "~/.assistant/sessions.db",
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Calendar: CalendarConfig{
			CredentialsDir: "~/.assistant/credentials",
			CalendarID:     "primary",
		},
	}
}

// Load builds the effective configuration. An explicit path (from the
// -config flag) replaces the project-file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := mergeFromFile(&cfg, globalConfigPath()); err != nil {
		return Config{}, err
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("ASSISTANT_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	cfg, err := applyEnv(cfg)
	if err != nil {
		return Config{}, err
	}
	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func globalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".assistant", "config.json")
}

func findProjectConfigPath() string {
	candidates := []string{
		"assistant.config.json",
		".assistant/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	cleaned := stripJSONComments(data)
	var fileCfg fileConfig
	if err := json.Unmarshal(cleaned, &fileCfg); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fileCfg)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Runtime != nil {
		cfg.Runtime = mergeRuntime(cfg.Runtime, *fc.Runtime)
	}
	if fc.Storage != nil {
		cfg.Storage = mergeStorage(cfg.Storage, *fc.Storage)
	}
	if fc.Web != nil {
		cfg.Web = mergeWeb(cfg.Web, *fc.Web)
	}
	if fc.Calendar != nil {
		cfg.Calendar = mergeCalendar(cfg.Calendar, *fc.Calendar)
	}
}

func mergeProvider(base, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	if override.MaxRetries > 0 {
		base.MaxRetries = override.MaxRetries
	}
	return base
}

func mergeRuntime(base, override RuntimeConfig) RuntimeConfig {
	if strings.TrimSpace(override.Mode) != "" {
		base.Mode = override.Mode
	}
	if override.MaxSteps > 0 {
		base.MaxSteps = override.MaxSteps
	}
	if override.ContextTokenLimit > 0 {
		base.ContextTokenLimit = override.ContextTokenLimit
	}
	return base
}

func mergeStorage(base, override StorageConfig) StorageConfig {
	if strings.TrimSpace(override.DataDir) != "" {
		base.DataDir = override.DataDir
	}
	if strings.TrimSpace(override.SessionDB) != "" {
		base.SessionDB = override.SessionDB
	}
	return base
}

func mergeWeb(base, override WebConfig) WebConfig {
	if strings.TrimSpace(override.Host) != "" {
		base.Host = override.Host
	}
	if override.Port > 0 {
		base.Port = override.Port
	}
	return base
}

func mergeCalendar(base, override CalendarConfig) CalendarConfig {
	if strings.TrimSpace(override.CredentialsDir) != "" {
		base.CredentialsDir = override.CredentialsDir
	}
	if strings.TrimSpace(override.CalendarID) != "" {
		base.CalendarID = override.CalendarID
	}
	return base
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("ASSISTANT_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ASSISTANT_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("ASSISTANT_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	} else if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ASSISTANT_DATA_DIR")); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("ASSISTANT_PORT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return Config{}, fmt.Errorf("invalid ASSISTANT_PORT: %q", v)
		}
		cfg.Web.Port = n
	}
	return cfg, nil
}

func normalize(cfg *Config) error {
	def := Default()
	if strings.TrimSpace(cfg.Provider.BaseURL) == "" {
		cfg.Provider.BaseURL = def.Provider.BaseURL
	}
	if strings.TrimSpace(cfg.Provider.Model) == "" {
		cfg.Provider.Model = def.Provider.Model
	}
	if cfg.Provider.TimeoutMS <= 0 {
		cfg.Provider.TimeoutMS = def.Provider.TimeoutMS
	}
	if cfg.Provider.MaxRetries <= 0 {
		cfg.Provider.MaxRetries = def.Provider.MaxRetries
	}
	if cfg.Runtime.MaxSteps <= 0 {
		cfg.Runtime.MaxSteps = def.Runtime.MaxSteps
	}
	if cfg.Runtime.ContextTokenLimit <= 0 {
		cfg.Runtime.ContextTokenLimit = def.Runtime.ContextTokenLimit
	}
	if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
		cfg.Web.Port = def.Web.Port
	}
	if strings.TrimSpace(cfg.Web.Host) == "" {
		cfg.Web.Host = def.Web.Host
	}

	var err error
	if cfg.Storage.DataDir, err = expandPath(cfg.Storage.DataDir); err != nil {
		return err
	}
	if cfg.Storage.SessionDB, err = expandPath(cfg.Storage.SessionDB); err != nil {
		return err
	}
	if cfg.Calendar.CredentialsDir, err = expandPath(cfg.Calendar.CredentialsDir); err != nil {
		return err
	}
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

// stripJSONComments tolerates // and /* */ comments in config files.
func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
