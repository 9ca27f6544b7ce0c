package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQL       = "sql"
	BackendSimulated = "simulated"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	devJWTSecret = "shelfkeeper-dev-secret-change-me-0123456789"
)

type Config struct {
	Port     string
	AppEnv   string
	LogFile  string
	LogLevel string

	// Backend picks the persistence gateway: "sql" or "simulated".
	Backend          string
	DBDriver         string
	DBDSN            string
	SimulatedLatency time.Duration

	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins string

	GeminiAPIKey    string
	GeminiModel     string
	AdvisoryTimeout time.Duration

	TemplatesDir string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		AppEnv:           getEnv("APP_ENV", "development"),
		LogFile:          getEnv("LOG_FILE", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Backend:          getEnv("BACKEND", BackendSQL),
		DBDriver:         getEnv("DB_DRIVER", DriverSQLite),
		DBDSN:            getEnv("DB_DSN", "shelfkeeper.db"), // sqlite file in project root
		SimulatedLatency: getEnvDuration("SIMULATED_LATENCY", 0),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         getEnvDuration("TOKEN_TTL", 24*time.Hour),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AdvisoryTimeout:  getEnvDuration("ADVISORY_TIMEOUT", 20*time.Second),
		TemplatesDir:     getEnv("TEMPLATES_DIR", "./web/templates"),
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, cfg.Validate()
}

func (c Config) IsProduction() bool { return c.AppEnv == "production" }

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendSQL:
		if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
			errs = append(errs, errors.New("DB_DRIVER must be sqlite or postgres"))
		}
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for the sql backend"))
		}
	case BackendSimulated:
	default:
		errs = append(errs, errors.New("BACKEND must be sql or simulated"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	return errors.Join(errs...)
}

// Fields is what gets logged at startup. Secrets are reported as set/unset.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":         c.Port,
		"app_env":      c.AppEnv,
		"backend":      c.Backend,
		"db_driver":    c.DBDriver,
		"log_file":     c.LogFile,
		"gemini_model": c.GeminiModel,
		"gemini_key":   c.GeminiAPIKey != "",
		"cors_origins": c.CORSOrigins,
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getEnvDuration accepts Go durations ("750ms") or plain milliseconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
