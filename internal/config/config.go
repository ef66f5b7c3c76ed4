package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration for tbr, stored in ~/.tbr/config.toml.
// It is loaded once per run and immutable afterwards.
type Config struct {
	// BreakIntervalMinutes is the time between mandatory breaks.
	BreakIntervalMinutes int `toml:"break_interval"`
	// CheckIntervalSeconds is the wakeup granularity of the waiting loop.
	// Must not exceed half the break interval.
	CheckIntervalSeconds int `toml:"check_interval"`
	// LookAwaySeconds is how long the user must pause during a break.
	LookAwaySeconds int `toml:"look_away_time"`
	// StartDate ("YYYY-MM-DD") is the first day covered by bulk upload/download.
	StartDate string `toml:"start_date"`
	// ChimeSound is the audio file played when the look-away pause ends.
	ChimeSound string `toml:"chime_sound"`
	// LogLevel is the zap log level ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`
	// Reminders maps a reminder label to its daily trigger times ("HH:MM").
	Reminders map[string][]string `toml:"reminders"`
	Google    GoogleConfig        `toml:"google"`
}

// GoogleConfig holds the Google Drive OAuth2 device-flow credentials.
type GoogleConfig struct {
	// ClientID is the OAuth client ID of a "TV and Limited Input" app.
	ClientID string `toml:"client_id"`
	// ClientSecret accompanies the client ID; despite the name it is not
	// treated as confidential for this app type.
	ClientSecret string `toml:"client_secret"`
}

const (
	// DefaultBreakIntervalMinutes spaces breaks fifteen minutes apart.
	DefaultBreakIntervalMinutes = 15
	// DefaultCheckIntervalSeconds keeps each waiting-loop sleep cheap.
	DefaultCheckIntervalSeconds = 30
	// DefaultLookAwaySeconds is the length of the look-away pause.
	DefaultLookAwaySeconds = 60
	// DefaultStartDate is the bulk-sync epoch: no logs exist before it.
	DefaultStartDate = "2022-04-03"
	// DefaultChimeSound is played when the look-away pause ends.
	DefaultChimeSound = "bloop.ogg"
	// DefaultLogLevel is the default zap level.
	DefaultLogLevel = "info"
)

// defaultReminders returns the example rule used until the user edits the file.
func defaultReminders() map[string][]string {
	return map[string][]string{
		"Drink water": {"10:00"},
	}
}

// configFilePath returns the path to ~/.tbr/config.toml.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tbr", "config.toml"), nil
}

// Load reads ~/.tbr/config.toml, fills missing keys with built-in defaults,
// and writes the merged config back so users can discover every option. The
// file is created on first run.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if added := applyDefaults(&cfg); added {
		if writeErr := write(path, cfg); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not update config file %s: %v\n", path, writeErr)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills zero-value fields and reports whether anything changed.
func applyDefaults(cfg *Config) bool {
	added := false
	if cfg.BreakIntervalMinutes == 0 {
		cfg.BreakIntervalMinutes = DefaultBreakIntervalMinutes
		added = true
	}
	if cfg.CheckIntervalSeconds == 0 {
		cfg.CheckIntervalSeconds = DefaultCheckIntervalSeconds
		added = true
	}
	if cfg.LookAwaySeconds == 0 {
		cfg.LookAwaySeconds = DefaultLookAwaySeconds
		added = true
	}
	if cfg.StartDate == "" {
		cfg.StartDate = DefaultStartDate
		added = true
	}
	if cfg.ChimeSound == "" {
		cfg.ChimeSound = DefaultChimeSound
		added = true
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
		added = true
	}
	if cfg.Reminders == nil {
		cfg.Reminders = defaultReminders()
		added = true
	}
	return added
}

func (c Config) validate() error {
	if c.CheckInterval() > c.BreakInterval()/2 {
		return fmt.Errorf("check_interval (%ds) must not exceed half of break_interval (%dm)",
			c.CheckIntervalSeconds, c.BreakIntervalMinutes)
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	for label, times := range c.Reminders {
		for _, hm := range times {
			if _, err := time.Parse("15:04", hm); err != nil {
				return fmt.Errorf("reminder %q has invalid trigger time %q", label, hm)
			}
		}
	}
	return nil
}

// BreakInterval returns the time between breaks.
func (c Config) BreakInterval() time.Duration {
	return time.Duration(c.BreakIntervalMinutes) * time.Minute
}

// CheckInterval returns the waiting-loop wakeup granularity.
func (c Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// LookAway returns the length of the look-away pause.
func (c Config) LookAway() time.Duration {
	return time.Duration(c.LookAwaySeconds) * time.Second
}

// Start returns the bulk-sync start date as a UTC day.
func (c Config) Start() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}

// write persists cfg as TOML, creating the config directory if needed.
func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# tbr configuration\n")
	buf.WriteString("# break_interval is in minutes; check_interval and look_away_time in seconds.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
