package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBPath         = ":memory:"
	DefaultLogFileName    = "chime.log"

	appDir    = "chime"
	configEnv = "CHIME_CONFIG"
)

type Keymap struct {
	Quit      string `toml:"quit"`
	Add       string `toml:"add"`
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Toggle    string `toml:"toggle"`
	Delete    string `toml:"delete"`
	Confirm   string `toml:"confirm"`
	Cancel    string `toml:"cancel"`
	NextField string `toml:"next_field"`
	PrevField string `toml:"prev_field"`
}

// ReminderConfig holds Go duration strings such as "30s" or "5m".
type ReminderConfig struct {
	Threshold      string `toml:"threshold"`
	CheckInterval  string `toml:"check_interval"`
	BannerDuration string `toml:"banner_duration"`
}

type Timings struct {
	Threshold      time.Duration
	CheckInterval  time.Duration
	BannerDuration time.Duration
}

type Config struct {
	DBPath        string `toml:"db_path"`
	LogPath       string `toml:"log_path"`
	LogLevel      string `toml:"log_level"`
	AgendaPath    string `toml:"agenda_path"`
	Notifications string `toml:"notifications"`
	// NotificationIcon is an image path handed to the desktop notifier.
	// Empty sends the notifier's own icon.
	NotificationIcon string         `toml:"notification_icon"`
	Reminder         ReminderConfig `toml:"reminder"`
	Keys             Keymap         `toml:"keys"`
}

// ResolveConfigPath picks the config file: an explicit path wins, then
// $CHIME_CONFIG, then the user config directory.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(configEnv); env != "" {
		return env
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDir, DefaultConfigFileName)
}

// DefaultLogPath is the log file used when log_path is empty.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return DefaultLogFileName
	}
	return filepath.Join(dir, appDir, DefaultLogFileName)
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if _, err := cfg.Reminder.Timings(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Timings parses the reminder durations. Empty values fall back to the
// defaults; zero or negative values are rejected.
func (r ReminderConfig) Timings() (Timings, error) {
	d := defaultConfig().Reminder
	threshold, err := parseDuration("reminder.threshold", r.Threshold, d.Threshold)
	if err != nil {
		return Timings{}, err
	}
	interval, err := parseDuration("reminder.check_interval", r.CheckInterval, d.CheckInterval)
	if err != nil {
		return Timings{}, err
	}
	banner, err := parseDuration("reminder.banner_duration", r.BannerDuration, d.BannerDuration)
	if err != nil {
		return Timings{}, err
	}
	return Timings{Threshold: threshold, CheckInterval: interval, BannerDuration: banner}, nil
}

func parseDuration(key, v, fallback string) (time.Duration, error) {
	if v == "" {
		v = fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DBPath:        DefaultDBPath,
		LogLevel:      "info",
		Notifications: "default",
		Reminder: ReminderConfig{
			Threshold:      "5m",
			CheckInterval:  "30s",
			BannerDuration: "5s",
		},
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "d",
			Confirm:   "enter",
			Cancel:    "esc",
			NextField: "tab",
			PrevField: "shift+tab",
		},
	}
}
