package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/graphtime/internal/speed"
)

type Config struct {
	LogLevel      string `koanf:"log_level" default:"info" validate:"oneof=debug info warn error"`
	LogFile       string `koanf:"log_file"`      // empty means $XDG_STATE_HOME/graphtime/graphtime.log
	SettingsDB    string `koanf:"settings_db"`   // empty means $XDG_DATA_HOME/graphtime/settings.db
	Notifications *bool  `koanf:"notifications"` // desktop notification on completion (default: true)

	Playback  PlaybackConfig   `koanf:"playback"`
	Timelines []TimelineConfig `koanf:"timelines" validate:"dive"`
}

// PlaybackConfig holds settings shared by every timeline.
type PlaybackConfig struct {
	Speeds     []float64 `koanf:"speeds" validate:"omitempty,dive,gt=0"`          // default: [1, 2, 4]
	ThrottleMs int       `koanf:"throttle_ms" default:"300" validate:"gt=0,lte=10000"` // date label commit window
	SeekStep   float64   `koanf:"seek_step" default:"0.05" validate:"gt=0,lte=0.5"`   // left/right seek amount
	TickMs     int       `koanf:"tick_ms" default:"16" validate:"gt=0,lte=1000"`       // renderer animation step
}

// TimelineConfig describes one simulated timeline.
type TimelineConfig struct {
	ID          string `koanf:"id"`          // default: generated
	Title       string `koanf:"title"`       // default: id
	StorageKey  string `koanf:"storage_key"` // default: id
	From        string `koanf:"from" validate:"required"`
	To          string `koanf:"to" validate:"required"`
	DurationSec int    `koanf:"duration_sec" default:"30" validate:"gte=0"`
}

// Timeline is a TimelineConfig with defaults applied and dates parsed.
type Timeline struct {
	ID         string
	Title      string
	StorageKey string
	From       time.Time
	To         time.Time
	Duration   time.Duration
}

const defaultTimelineID = "main"

var (
	ErrDuplicateTimeline = errors.New("duplicate timeline id")
	ErrBadDate           = errors.New("invalid date")
)

// Load reads the layered config files. An explicit path, when set, has the
// highest priority and must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load %s", path)
			}
		}
	}
	if explicit != "" {
		path := expandPath(explicit)
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.finish()
	return cfg
}

func (c *Config) finish() error {
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "apply defaults")
	}
	for i := range c.Timelines {
		if err := defaults.Set(&c.Timelines[i]); err != nil {
			return errors.Wrap(err, "apply timeline defaults")
		}
	}
	c.LogFile = expandPath(c.LogFile)
	c.SettingsDB = expandPath(c.SettingsDB)
	c.LogLevel = strings.ToLower(c.LogLevel)
	return c.Validate()
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	if err := c.SpeedCycle().Validate(); err != nil {
		return errors.Wrap(err, "playback.speeds")
	}
	return nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/graphtime/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "graphtime", "config.toml"))
	}

	// 2. ./config.toml (pwd)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// NotificationsEnabled reports whether completion notifications are on.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// SpeedCycle returns the configured speeds, or speed.Default.
func (c *Config) SpeedCycle() speed.Cycle {
	if len(c.Playback.Speeds) == 0 {
		return speed.Default
	}
	return speed.Cycle(c.Playback.Speeds)
}

// ThrottleWindow returns the date label commit window.
func (c *Config) ThrottleWindow() time.Duration {
	return time.Duration(c.Playback.ThrottleMs) * time.Millisecond
}

// TickInterval returns the renderer animation step.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Playback.TickMs) * time.Millisecond
}

// ResolveTimelines applies defaults to the configured timelines. With none
// configured, a single timeline covering the year before now is returned.
func (c *Config) ResolveTimelines(now time.Time) ([]Timeline, error) {
	if len(c.Timelines) == 0 {
		return []Timeline{{
			ID:         defaultTimelineID,
			Title:      "Last year",
			StorageKey: defaultTimelineID,
			From:       now.AddDate(-1, 0, 0),
			To:         now,
			Duration:   30 * time.Second,
		}}, nil
	}

	seen := make(map[string]bool, len(c.Timelines))
	out := make([]Timeline, 0, len(c.Timelines))
	for i, tc := range c.Timelines {
		from, err := parseDate(tc.From)
		if err != nil {
			return nil, errors.Wrapf(err, "timeline %d: from", i)
		}
		to, err := parseDate(tc.To)
		if err != nil {
			return nil, errors.Wrapf(err, "timeline %d: to", i)
		}

		id := tc.ID
		if id == "" {
			id = uuid.NewString()[:8]
		}
		if seen[id] {
			return nil, errors.Wrapf(ErrDuplicateTimeline, "%q", id)
		}
		seen[id] = true

		title := tc.Title
		if title == "" {
			title = id
		}
		key := tc.StorageKey
		if key == "" {
			key = id
		}
		dur := tc.DurationSec
		if dur <= 0 {
			dur = 30
		}

		out = append(out, Timeline{
			ID:         id,
			Title:      title,
			StorageKey: key,
			From:       from,
			To:         to,
			Duration:   time.Duration(dur) * time.Second,
		})
	}
	return out, nil
}

// parseDate accepts "2006-01-02" (local midnight) or RFC 3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.Wrapf(ErrBadDate, "%q", s)
}
