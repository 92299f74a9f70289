package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-gradebook/internal/proficiency"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// RedisAddr enables the shared analytics cache; empty keeps it in process.
	RedisAddr   string
	RedisPrefix string
	CacheTTL    time.Duration

	EnableEventLog bool

	JWTSecret     string
	AdminUser     string
	AdminPassHash string // bcrypt
	// Teachers are "username:bcrypt-hash" pairs.
	Teachers []string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// Composite weights per assignment and the dashboard blend.
	TraditionalWeight          float64
	StandardsWeight            float64
	AnalyticsTraditionalWeight float64
	AnalyticsStandardsWeight   float64

	MasteryThreshold float64
	Scale            proficiency.ScaleType
	// ScaleFile is an optional YAML file of extra proficiency scales.
	ScaleFile string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:        mode,
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		DBDriver:    envOr("DB_DRIVER", "sqlite"),
		DBDSN:       envOr("DB_DSN", ""),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPrefix: envOr("REDIS_PREFIX", "gradebook:"),
		CacheTTL:    envDuration("CACHE_TTL", 5*time.Minute),

		EnableEventLog: envBool("ENABLE_EVENT_LOG", true),

		JWTSecret:     envOr("JWT_SECRET", "dev-secret-change-me"),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		Teachers:      csvOr("TEACHERS", ""),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://gradebook.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),

		TraditionalWeight:          envFloat("TRADITIONAL_WEIGHT", 0.5),
		StandardsWeight:            envFloat("STANDARDS_WEIGHT", 0.5),
		AnalyticsTraditionalWeight: envFloat("ANALYTICS_TRADITIONAL_WEIGHT", 0.6),
		AnalyticsStandardsWeight:   envFloat("ANALYTICS_STANDARDS_WEIGHT", 0.4),

		MasteryThreshold: envFloat("MASTERY_THRESHOLD", 3.0),
		Scale:            proficiency.ScaleType(envOr("PROFICIENCY_SCALE", string(proficiency.DefaultScale))),
		ScaleFile:        os.Getenv("PROFICIENCY_SCALE_FILE"),
	}
}

// Validate reports settings that would make every computation fail or
// meaningless. Scale is checked against the default registry, so load
// ScaleFile first.
func (c Config) Validate() error {
	var errs []error
	if c.Mode != ModeOffline && c.Mode != ModeOnline {
		errs = append(errs, fmt.Errorf("MODE must be offline or online, got %q", c.Mode))
	}
	for name, w := range map[string]float64{
		"TRADITIONAL_WEIGHT":           c.TraditionalWeight,
		"STANDARDS_WEIGHT":             c.StandardsWeight,
		"ANALYTICS_TRADITIONAL_WEIGHT": c.AnalyticsTraditionalWeight,
		"ANALYTICS_STANDARDS_WEIGHT":   c.AnalyticsStandardsWeight,
	} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			errs = append(errs, fmt.Errorf("%s must be a non-negative number", name))
		}
	}
	if !(c.MasteryThreshold > 0) || math.IsInf(c.MasteryThreshold, 1) {
		errs = append(errs, errors.New("MASTERY_THRESHOLD must be positive"))
	}
	if _, err := proficiency.Default().Lookup(c.Scale); err != nil {
		errs = append(errs, err)
	}
	if c.Mode == ModeOnline && c.JWTSecret == "dev-secret-change-me" {
		errs = append(errs, errors.New("JWT_SECRET must be set in online mode"))
	}
	for _, t := range c.Teachers {
		if !strings.Contains(t, ":") {
			errs = append(errs, fmt.Errorf("TEACHERS entry %q is not username:hash", t))
		}
	}
	return errors.Join(errs...)
}

func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envFloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil {
		return def
	}
	return f
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
