package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Config holds the runtime settings of the server.
type Config struct {
	Addr          string
	AllowOrigins  string
	DataDir       string
	TimeControl   time.Duration
	MatchInterval time.Duration
	LogLevel      log.Level
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowOrigins:  "http://localhost:5173",
		TimeControl:   10 * time.Minute,
		MatchInterval: time.Second,
		LogLevel:      log.LevelInfo,
	}
}

// Load reads flags from args. Each flag falls back to its CHESS_* variable
// from getenv, then to the default.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if getenv == nil {
		getenv = os.Getenv
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addr := fs.String("addr", envOr(getenv, "CHESS_ADDR", cfg.Addr), "listen address")
	origins := fs.String("allow-origins", envOr(getenv, "CHESS_ALLOW_ORIGINS", cfg.AllowOrigins), "comma separated CORS origins")
	dataDir := fs.String("data-dir", envOr(getenv, "CHESS_DATA_DIR", cfg.DataDir), "badger directory, empty for in-memory")
	clock := fs.String("clock", envOr(getenv, "CHESS_CLOCK", cfg.TimeControl.String()), "time per player")
	interval := fs.String("match-interval", envOr(getenv, "CHESS_MATCH_INTERVAL", cfg.MatchInterval.String()), "matchmaking tick")
	level := fs.String("log-level", envOr(getenv, "CHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	var err error
	cfg.Addr = *addr
	cfg.AllowOrigins = *origins
	if len(cfg.Origins()) == 0 {
		return cfg, errors.New("allow-origins: at least one origin is required")
	}
	cfg.DataDir = *dataDir
	if cfg.TimeControl, err = positiveDuration("clock", *clock); err != nil {
		return cfg, err
	}
	if cfg.MatchInterval, err = positiveDuration("match-interval", *interval); err != nil {
		return cfg, err
	}
	if cfg.LogLevel, err = ParseLevel(*level); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Origins splits AllowOrigins into its entries.
func (c Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}

func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
