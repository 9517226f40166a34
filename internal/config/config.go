package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Validation lives in validate.go.

// DisplayConfig controls what each column of the board shows.
type DisplayConfig struct {
	// CornerTitle is shown in the top corner of the board.
	CornerTitle string `yaml:"corner_title" json:"corner_title"`

	// LeftMode / RightMode select the render mode for each column. Supported
	// values: "LABOR", "EVENTS", "EMS-EVENTS", "MZV-EVENTS". Identical values
	// run the board in single-column mode.
	LeftMode  string `yaml:"left_mode" json:"left_mode"`
	RightMode string `yaml:"right_mode" json:"right_mode"`

	// LeftTitle / RightTitle are column headers in dual-column mode.
	LeftTitle  string `yaml:"left_title" json:"left_title"`
	RightTitle string `yaml:"right_title" json:"right_title"`

	// Narrow nests event-list cards under per-date groups.
	Narrow bool `yaml:"narrow" json:"narrow"`
}

// RefreshConfig holds poll intervals in seconds.
type RefreshConfig struct {
	// FirstSeconds is the delay before the very first fetch.
	FirstSeconds int `yaml:"first_seconds" json:"first_seconds"`
	// InitialSeconds is the steady-state interval and the backoff step.
	InitialSeconds int `yaml:"initial_seconds" json:"initial_seconds"`
	// MaxSeconds caps the backoff.
	MaxSeconds int `yaml:"max_seconds" json:"max_seconds"`
}

// NotesConfig controls how shift titles are split from private notes.
type NotesConfig struct {
	Separator string `yaml:"separator" json:"separator"`
	// RequireWhitespace expects the separator to be surrounded by single
	// spaces ("Title - notes" rather than "Title-notes").
	RequireWhitespace bool `yaml:"require_whitespace" json:"require_whitespace"`
}

// ShiftsConfig describes the shift-management API.
type ShiftsConfig struct {
	BaseURL       string `yaml:"base_url" json:"base_url"`
	Token         string `yaml:"token" json:"-"`
	LocationID    string `yaml:"location_id" json:"location_id"`
	LookaheadDays int    `yaml:"lookahead_days" json:"lookahead_days"`
}

// BookingXMLConfig describes the SOAP/XML room-booking API. Id lists are
// comma separated integers, e.g. "1,2,3".
type BookingXMLConfig struct {
	BaseURL       string `yaml:"base_url" json:"base_url"`
	Username      string `yaml:"username" json:"username"`
	Password      string `yaml:"password" json:"-"`
	Buildings     string `yaml:"buildings" json:"buildings"`
	Statuses      string `yaml:"statuses" json:"statuses"`
	EventTypes    string `yaml:"event_types" json:"event_types"`
	LookaheadDays int    `yaml:"lookahead_days" json:"lookahead_days"`
}

// BookingJSONConfig describes the JSON room-booking API. Rooms and
// EventTypes are optional.
type BookingJSONConfig struct {
	BaseURL       string `yaml:"base_url" json:"base_url"`
	APIKey        string `yaml:"api_key" json:"-"`
	Buildings     string `yaml:"buildings" json:"buildings"`
	Rooms         string `yaml:"rooms" json:"rooms"`
	Statuses      string `yaml:"statuses" json:"statuses"`
	EventTypes    string `yaml:"event_types" json:"event_types"`
	LookaheadDays int    `yaml:"lookahead_days" json:"lookahead_days"`
}

// LocationIcon decorates a shift location in the labor view.
type LocationIcon struct {
	Icon         string `yaml:"icon" json:"icon"`
	Abbreviation string `yaml:"abbreviation" json:"abbreviation"`
	Name         string `yaml:"name" json:"name"`
}

// LogConfig controls log level and an optional rotating log file.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// CaptureConfig enables a PNG screenshot of the board after each
// successful refresh.
type CaptureConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	OutputPath string `yaml:"output_path" json:"output_path"`
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the board.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the board.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for date labels and times.
	Timezone string `yaml:"timezone" json:"timezone"`

	Display     DisplayConfig     `yaml:"display" json:"display"`
	Refresh     RefreshConfig     `yaml:"refresh" json:"refresh"`
	Notes       NotesConfig       `yaml:"notes" json:"notes"`
	Shifts      ShiftsConfig      `yaml:"shifts" json:"shifts"`
	BookingXML  BookingXMLConfig  `yaml:"booking_xml" json:"booking_xml"`
	BookingJSON BookingJSONConfig `yaml:"booking_json" json:"booking_json"`

	// ModeSources optionally restates which source kind backs each mode.
	// It must agree with the built-in assignment; see mode.Resolver.
	ModeSources map[string]string `yaml:"mode_sources,omitempty" json:"mode_sources,omitempty"`

	// Locations maps shift location ids to labor-view icons.
	Locations map[string]LocationIcon `yaml:"locations" json:"locations"`

	Log     LogConfig     `yaml:"log" json:"log"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen        = "127.0.0.1:8080"
	defaultTimezone      = "America/Chicago"
	defaultLookaheadDays = 7
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   defaultListen,
		Timezone: defaultTimezone,
		Display: DisplayConfig{
			CornerTitle: "Events Display",
			LeftMode:    "EVENTS",
			RightMode:   "EVENTS",
		},
		Refresh: RefreshConfig{
			FirstSeconds:   5,
			InitialSeconds: 30,
			MaxSeconds:     300,
		},
		Notes: NotesConfig{
			Separator: "-",
		},
		Shifts: ShiftsConfig{
			BaseURL:       "https://api.wheniwork.com/2/",
			LookaheadDays: defaultLookaheadDays,
		},
		BookingXML: BookingXMLConfig{
			LookaheadDays: defaultLookaheadDays,
		},
		BookingJSON: BookingJSONConfig{
			LookaheadDays: defaultLookaheadDays,
		},
		Locations: map[string]LocationIcon{},
		Log: LogConfig{
			Level: "INFO",
		},
		Capture: CaptureConfig{
			OutputPath: "/var/lib/schedboard/preview.png",
			Width:      1920,
			Height:     1080,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Display.CornerTitle == "" {
		c.Display.CornerTitle = def.Display.CornerTitle
	}
	// A missing right mode mirrors the left, i.e. single-column.
	if c.Display.LeftMode == "" {
		c.Display.LeftMode = def.Display.LeftMode
	}
	if c.Display.RightMode == "" {
		c.Display.RightMode = c.Display.LeftMode
	}

	if c.Refresh.FirstSeconds <= 0 {
		c.Refresh.FirstSeconds = def.Refresh.FirstSeconds
	}
	if c.Refresh.InitialSeconds <= 0 {
		c.Refresh.InitialSeconds = def.Refresh.InitialSeconds
	}
	if c.Refresh.MaxSeconds <= 0 {
		c.Refresh.MaxSeconds = def.Refresh.MaxSeconds
	}

	if c.Shifts.BaseURL == "" {
		c.Shifts.BaseURL = def.Shifts.BaseURL
	}
	if c.Shifts.LookaheadDays <= 0 {
		c.Shifts.LookaheadDays = defaultLookaheadDays
	}
	if c.BookingXML.LookaheadDays <= 0 {
		c.BookingXML.LookaheadDays = defaultLookaheadDays
	}
	if c.BookingJSON.LookaheadDays <= 0 {
		c.BookingJSON.LookaheadDays = defaultLookaheadDays
	}

	if c.Locations == nil {
		c.Locations = map[string]LocationIcon{}
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Capture.OutputPath == "" {
		c.Capture.OutputPath = def.Capture.OutputPath
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = def.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = def.Capture.Height
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
//
// In both cases secret overrides from the environment are applied last.
// Load does not validate; callers run Validate before starting the board.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			cfg.ApplyEnv(os.LookupEnv)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ApplyEnv(os.LookupEnv)

	return &cfg, nil
}

// Environment variables that override secrets from the YAML file.
const (
	EnvShiftsToken        = "SCHEDBOARD_SHIFTS_TOKEN"
	EnvBookingXMLPassword = "SCHEDBOARD_BOOKING_XML_PASSWORD"
	EnvBookingJSONAPIKey  = "SCHEDBOARD_BOOKING_JSON_API_KEY"
)

// ApplyEnv overrides secrets with values from lookup (normally os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvShiftsToken); ok && v != "" {
		c.Shifts.Token = v
	}
	if v, ok := lookup(EnvBookingXMLPassword); ok && v != "" {
		c.BookingXML.Password = v
	}
	if v, ok := lookup(EnvBookingJSONAPIKey); ok && v != "" {
		c.BookingJSON.APIKey = v
	}
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".schedboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
