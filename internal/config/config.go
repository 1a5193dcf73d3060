package config

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIURL       string
	AnonKey      string
	DBPath       string
	LogFile      string
	LogLevel     slog.Level
	SyncInterval time.Duration
	HTTPTimeout  time.Duration
	SyncSubtasks bool
}

// SyncEnabled reports whether a remote API is configured.
func (c Config) SyncEnabled() bool {
	return c.APIURL != ""
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getbool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "beam")
}

// Load reads BEAM_* environment variables, overridden by command-line
// flags in args.
func Load(args []string) (Config, error) {
	dir := defaultDir()
	fs := flag.NewFlagSet("beam", flag.ContinueOnError)

	var c Config
	var level string
	fs.StringVar(&c.APIURL, "api", getenv("BEAM_API_URL", ""), "remote API base URL (empty disables sync)")
	fs.StringVar(&c.AnonKey, "anon-key", getenv("BEAM_ANON_KEY", ""), "bearer used before sign-in")
	fs.StringVar(&c.DBPath, "db", getenv("BEAM_DB_PATH", filepath.Join(dir, "beam.db")), "SQLite database path")
	fs.StringVar(&c.LogFile, "log", getenv("BEAM_LOG_FILE", filepath.Join(dir, "beam.log")), "log file")
	fs.StringVar(&level, "log-level", getenv("BEAM_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.DurationVar(&c.SyncInterval, "sync-interval", getdur("BEAM_SYNC_INTERVAL", 30*time.Second), "periodic pull interval")
	fs.DurationVar(&c.HTTPTimeout, "http-timeout", getdur("BEAM_HTTP_TIMEOUT", 15*time.Second), "remote request timeout")
	fs.BoolVar(&c.SyncSubtasks, "sync-subtasks", getbool("BEAM_SYNC_SUBTASKS", false), "mirror subtask changes to the remote API")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	c.LogLevel = parseLevel(level)
	return c, nil
}
