// Package config loads orbita's runtime configuration.
//
// Resolution order: built-in defaults, then the YAML file, then ORBITA_*
// environment variables, then command-line flags. The merged result is
// validated once at the end.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/example/orbita/internal/core/telemetry"
)

// Telemetry source modes.
const (
	SourceSim  = "SIM"
	SourceReal = "REAL"
)

// Config is the merged orbita configuration.
type Config struct {
	DatabasePath   string              `yaml:"database_path"`
	ListenAddr     string              `yaml:"listen_addr"`
	AllowedOrigins []string            `yaml:"allowed_origins"`
	Log            LogConfig           `yaml:"log"`
	Autonomy       AutonomyConfig      `yaml:"autonomy"`
	Live           LiveConfig          `yaml:"live"`
	GroundStation  GroundStationConfig `yaml:"ground_station"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// AutonomyConfig tunes the mission loops.
type AutonomyConfig struct {
	Intervals          IntervalConfig `yaml:"intervals"`
	AnomalyProbability float64        `yaml:"anomaly_probability"`
	Source             string         `yaml:"source"`
}

// IntervalConfig is the tick interval per vehicle class.
type IntervalConfig struct {
	LEO time.Duration `yaml:"leo"`
	MEO time.Duration `yaml:"meo"`
	GEO time.Duration `yaml:"geo"`
}

// For returns the interval for class. Unknown classes use the LEO value.
func (c IntervalConfig) For(class telemetry.VehicleClass) time.Duration {
	switch class {
	case telemetry.ClassMEO:
		return c.MEO
	case telemetry.ClassGEO:
		return c.GEO
	default:
		return c.LEO
	}
}

// LiveConfig tunes live-update delivery to observers.
type LiveConfig struct {
	Buffer      int           `yaml:"buffer"`
	SendTimeout time.Duration `yaml:"send_timeout"`
	Heartbeat   time.Duration `yaml:"heartbeat"`
}

// GroundStationConfig points at the external telemetry ingest endpoint.
type GroundStationConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	dbPath := "orbita.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".orbita", "orbita.db")
	}

	return &Config{
		DatabasePath:   dbPath,
		ListenAddr:     ":8000",
		AllowedOrigins: []string{"http://localhost:3000"},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Autonomy: AutonomyConfig{
			Intervals: IntervalConfig{
				LEO: 2 * time.Second,
				MEO: 3 * time.Second,
				GEO: 3 * time.Second,
			},
			AnomalyProbability: telemetry.DefaultAnomalyProbability,
			Source:             SourceSim,
		},
		Live: LiveConfig{
			Buffer:      100,
			SendTimeout: 100 * time.Millisecond,
			Heartbeat:   15 * time.Second,
		},
		GroundStation: GroundStationConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// DefaultFilePath returns ~/.orbita/config.yaml.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".orbita", "config.yaml")
}

// Load merges defaults, the YAML file at path and environment overrides.
// An empty path tries DefaultFilePath and skips it when absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultFilePath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies ORBITA_* environment variables to cfg.
func applyEnvOverrides(cfg *Config) error {
	str := map[string]*string{
		"ORBITA_DATABASE_PATH":          &cfg.DatabasePath,
		"ORBITA_LISTEN_ADDR":            &cfg.ListenAddr,
		"ORBITA_LOG_LEVEL":              &cfg.Log.Level,
		"ORBITA_LOG_FORMAT":             &cfg.Log.Format,
		"ORBITA_TELEMETRY_SOURCE":       &cfg.Autonomy.Source,
		"ORBITA_GROUND_STATION_URL":     &cfg.GroundStation.URL,
		"ORBITA_GROUND_STATION_API_KEY": &cfg.GroundStation.APIKey,
	}
	for key, dst := range str {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}

	durations := map[string]*time.Duration{
		"ORBITA_INTERVAL_LEO":      &cfg.Autonomy.Intervals.LEO,
		"ORBITA_INTERVAL_MEO":      &cfg.Autonomy.Intervals.MEO,
		"ORBITA_INTERVAL_GEO":      &cfg.Autonomy.Intervals.GEO,
		"ORBITA_LIVE_SEND_TIMEOUT": &cfg.Live.SendTimeout,
		"ORBITA_LIVE_HEARTBEAT":    &cfg.Live.Heartbeat,
	}
	for key, dst := range durations {
		if val := os.Getenv(key); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	if val := os.Getenv("ORBITA_ALLOWED_ORIGINS"); val != "" {
		cfg.AllowedOrigins = splitList(val)
	}

	if val := os.Getenv("ORBITA_ANOMALY_PROBABILITY"); val != "" {
		p, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("ORBITA_ANOMALY_PROBABILITY: %w", err)
		}
		cfg.Autonomy.AnomalyProbability = p
	}

	if val := os.Getenv("ORBITA_LIVE_BUFFER"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("ORBITA_LIVE_BUFFER: %w", err)
		}
		cfg.Live.Buffer = n
	}

	return nil
}

// Flag names shared by every command.
const (
	FlagConfig             = "config"
	FlagDatabase           = "db"
	FlagListen             = "listen"
	FlagLogLevel           = "log-level"
	FlagLogFormat          = "log-format"
	FlagSource             = "source"
	FlagAnomalyProbability = "anomaly-probability"
)

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "Path to config.yaml (default ~/.orbita/config.yaml)")
	fs.String(FlagDatabase, "", "Path to the SQLite database")
	fs.String(FlagListen, "", "HTTP listen address")
	fs.String(FlagLogLevel, "", "Log level: debug, info, warn, error")
	fs.String(FlagLogFormat, "", "Log format: json or text")
	fs.String(FlagSource, "", "Telemetry source: SIM or REAL")
	fs.Float64(FlagAnomalyProbability, 0, "Per-tick anomaly injection probability")
}

// ApplyFlags copies every flag the user set explicitly onto cfg.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	strFlags := map[string]*string{
		FlagDatabase:  &cfg.DatabasePath,
		FlagListen:    &cfg.ListenAddr,
		FlagLogLevel:  &cfg.Log.Level,
		FlagLogFormat: &cfg.Log.Format,
		FlagSource:    &cfg.Autonomy.Source,
	}
	for name, dst := range strFlags {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			continue
		}
		val, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = val
	}

	if fs.Lookup(FlagAnomalyProbability) != nil && fs.Changed(FlagAnomalyProbability) {
		p, err := fs.GetFloat64(FlagAnomalyProbability)
		if err != nil {
			return err
		}
		cfg.Autonomy.AnomalyProbability = p
	}

	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	for _, class := range telemetry.Classes() {
		if c.Autonomy.Intervals.For(class) <= 0 {
			return fmt.Errorf("autonomy.intervals.%s must be positive", strings.ToLower(string(class)))
		}
	}
	if p := c.Autonomy.AnomalyProbability; p < 0 || p > 1 {
		return fmt.Errorf("autonomy.anomaly_probability must be within [0, 1], got %v", p)
	}
	if s := c.Autonomy.Source; s != SourceSim && s != SourceReal {
		return fmt.Errorf("autonomy.source must be %s or %s, got %q", SourceSim, SourceReal, s)
	}
	if c.Live.Buffer <= 0 {
		return fmt.Errorf("live.buffer must be positive, got %d", c.Live.Buffer)
	}
	if c.Live.SendTimeout <= 0 || c.Live.Heartbeat <= 0 {
		return errors.New("live.send_timeout and live.heartbeat must be positive")
	}
	return nil
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", name, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
