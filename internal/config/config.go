package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Console backend (catalog of clientes, peças, serviços)
	ConsoleAPIURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Assistant sessions
	SessionTTL     time.Duration
	ShortcutWindow time.Duration

	// Observability
	OTLPEndpoint string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	UseSupabase        bool

	// Redis (conversation log). Empty address keeps turns in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT / Auth
	JWTSecret    string
	AuthRequired bool
}

var defaults = map[string]any{
	"PORT":      8080,
	"LOG_LEVEL": "info",

	"CONSOLE_API_URL": "http://localhost:8081",
	"HTTP_TIMEOUT":    10 * time.Second,

	// Uma busca ao vivo falha na primeira tentativa; retry é opt-in.
	"MAX_RETRIES":     0,
	"INITIAL_BACKOFF": 100 * time.Millisecond,
	"MAX_CONCURRENCY": 50,

	"SESSION_TTL":     30 * time.Minute,
	"SHORTCUT_WINDOW": time.Second,

	"OTEL_EXPORTER_OTLP_ENDPOINT": "",

	"SUPABASE_URL":              "",
	"SUPABASE_ANON_KEY":         "",
	"SUPABASE_SERVICE_ROLE_KEY": "",
	"USE_SUPABASE":              false,

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"JWT_SECRET":    "bfa-default-dev-secret-change-me",
	"AUTH_REQUIRED": false,
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return FromViper(NewViper())
}

// NewViper returns a viper instance bound to the process environment with
// every default registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:     v.GetInt("PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),

		ConsoleAPIURL: v.GetString("CONSOLE_API_URL"),

		HTTPTimeout: v.GetDuration("HTTP_TIMEOUT"),

		MaxRetries:     v.GetInt("MAX_RETRIES"),
		InitialBackoff: v.GetDuration("INITIAL_BACKOFF"),
		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),

		SessionTTL:     v.GetDuration("SESSION_TTL"),
		ShortcutWindow: v.GetDuration("SHORTCUT_WINDOW"),

		OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),

		SupabaseURL:        v.GetString("SUPABASE_URL"),
		SupabaseAnonKey:    v.GetString("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		UseSupabase:        v.GetBool("USE_SUPABASE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		JWTSecret:    v.GetString("JWT_SECRET"),
		AuthRequired: v.GetBool("AUTH_REQUIRED"),
	}
}
