package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

// Config holds application configuration values.
type Config struct {
	HTTPAddr string
	GRPCAddr string

	StoreDriver string
	StoreDSN    string
	RedisAddr   string

	ScanInterval time.Duration
	ScanLockTTL  time.Duration

	WarningWindowDays       int
	AlertCooldown           time.Duration
	DefaultReorderThreshold int64
	AlertRecipients         []string
	Location                *time.Location

	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// SMTPEnabled reports whether mail delivery is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPAddr != ""
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from getenv. Missing required settings and
// malformed values are configuration errors.
func FromLookup(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}

	cfg := Config{
		HTTPAddr:     p.str("HTTP_ADDR", ":8080"),
		GRPCAddr:     p.str("GRPC_ADDR", ":50051"),
		StoreDriver:  p.str("STORE_DRIVER", "mysql"),
		StoreDSN:     p.str("STORE_DSN", "root:root@tcp(localhost:3306)/dental"),
		RedisAddr:    p.str("REDIS_ADDR", ""),
		ScanInterval: p.duration("SCAN_INTERVAL", time.Hour, false),
		ScanLockTTL:  p.duration("SCAN_LOCK_TTL", 10*time.Minute, false),

		WarningWindowDays:       p.integer("WARNING_WINDOW_DAYS", 0, true),
		AlertCooldown:           p.duration("ALERT_COOLDOWN", 0, true),
		DefaultReorderThreshold: int64(p.integer("DEFAULT_REORDER_THRESHOLD", 5, false)),
		AlertRecipients:         splitList(getenv("ALERT_RECIPIENTS")),

		SMTPAddr:     p.str("SMTP_ADDR", ""),
		SMTPUsername: p.str("SMTP_USERNAME", ""),
		SMTPPassword: p.str("SMTP_PASSWORD", ""),
		SMTPFrom:     p.str("SMTP_FROM", ""),
	}

	tz := p.str("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		p.fail("TIMEZONE", tz, err.Error())
	} else {
		cfg.Location = loc
	}

	if p.err != nil {
		return Config{}, p.err
	}

	switch {
	case cfg.WarningWindowDays < 0:
		return Config{}, fmt.Errorf("%w: WARNING_WINDOW_DAYS must not be negative", domain.ErrConfiguration)
	case cfg.AlertCooldown <= 0:
		return Config{}, fmt.Errorf("%w: ALERT_COOLDOWN must be positive", domain.ErrConfiguration)
	case cfg.ScanInterval <= 0:
		return Config{}, fmt.Errorf("%w: SCAN_INTERVAL must be positive", domain.ErrConfiguration)
	case cfg.DefaultReorderThreshold < 0:
		return Config{}, fmt.Errorf("%w: DEFAULT_REORDER_THRESHOLD must not be negative", domain.ErrConfiguration)
	}

	return cfg, nil
}

type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) fail(key, value, reason string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %s", domain.ErrConfiguration, key, value, reason)
	}
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int, required bool) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		if required {
			p.fail(key, v, "required")
		}
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, "not an integer")
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration, required bool) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		if required {
			p.fail(key, v, "required")
		}
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, "not a duration")
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
