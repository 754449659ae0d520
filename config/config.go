package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"selfie/utils"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DatabaseConfig struct {
	URI             string
	DatabaseName    string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	RetryWrites     bool
}

type AuthConfig struct {
	JWTSecretKey     string
	Issuer           string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	CookieName       string
	CookieSecure     bool
	CookieDomain     string
	MaxActiveSession int
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             int
	Timeout         time.Duration
}

// Enabled reports whether VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

type ReminderConfig struct {
	Schedule          string
	Window            time.Duration
	ActivityLead      time.Duration
	CarryOverSchedule string
}

type RateLimitConfig struct {
	AuthPerMinute int
	APIPerMinute  int
}

// Config is read once at startup and treated as immutable.
type Config struct {
	Env                string
	Port               string
	LogLevel           string
	Database           DatabaseConfig
	RedisURL           string
	Auth               AuthConfig
	Push               PushConfig
	Reminders          ReminderConfig
	RateLimit          RateLimitConfig
	CORSAllowedOrigins []string
	MaxMediaBytes      int64
	ShutdownTimeout    time.Duration
}

// Load reads the environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", slog.String("error", err.Error()))
	}

	var missing []string
	required := func(key string) string {
		value := os.Getenv(key)
		if value == "" {
			missing = append(missing, key)
		}
		return value
	}

	cfg := &Config{
		Env:      utils.GetEnvAsString("GO_ENV", "development"),
		Port:     utils.GetEnvAsString("PORT", "8000"),
		LogLevel: utils.GetEnvAsString("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URI:             required("MONGO_URI"),
			DatabaseName:    utils.GetEnvAsString("MONGO_DB", "selfie"),
			MaxPoolSize:     utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
			MinPoolSize:     utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
			MaxConnIdleTime: utils.GetEnvAsDuration("MONGO_MAX_CONN_IDLE_TIME", 60*time.Second),
			RetryWrites:     utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),
		},
		RedisURL: utils.GetEnvAsString("REDIS_URL", ""),
		Auth: AuthConfig{
			JWTSecretKey:     required("JWT_SECRET_KEY"),
			Issuer:           utils.GetEnvAsString("JWT_ISSUER", "selfie"),
			AccessTokenTTL:   utils.GetEnvAsDuration("JWT_EXPIRATION_TIME", 15*time.Minute),
			RefreshTokenTTL:  utils.GetEnvAsDuration("REFRESH_TOKEN_EXPIRATION_TIME", 7*24*time.Hour),
			CookieName:       utils.GetEnvAsString("REFRESH_COOKIE_NAME", "jwt"),
			CookieDomain:     utils.GetEnvAsString("COOKIE_DOMAIN", ""),
			MaxActiveSession: utils.GetEnvAsInt("MAX_ACTIVE_SESSIONS", 5),
		},
		Push: PushConfig{
			VAPIDPublicKey:  utils.GetEnvAsString("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: utils.GetEnvAsString("VAPID_PRIVATE_KEY", ""),
			Subscriber:      utils.GetEnvAsString("VAPID_SUBSCRIBER", "mailto:admin@selfie.local"),
			TTL:             utils.GetEnvAsInt("PUSH_TTL_SECONDS", 3600),
			Timeout:         utils.GetEnvAsDuration("PUSH_TIMEOUT", 10*time.Second),
		},
		Reminders: ReminderConfig{
			Schedule:          utils.GetEnvAsString("REMINDER_SCHEDULE", "@every 1m"),
			Window:            utils.GetEnvAsDuration("REMINDER_WINDOW", 2*time.Minute),
			ActivityLead:      utils.GetEnvAsDuration("ACTIVITY_REMINDER_LEAD", time.Hour),
			CarryOverSchedule: utils.GetEnvAsString("POMODORO_CARRY_OVER_SCHEDULE", "5 0 * * *"),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: utils.GetEnvAsInt("RATE_LIMIT_AUTH", 20),
			APIPerMinute:  utils.GetEnvAsInt("RATE_LIMIT_API", 300),
		},
		CORSAllowedOrigins: utils.GetEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		MaxMediaBytes:      utils.GetEnvAsInt64("MAX_MEDIA_BYTES", 5<<20),
		ShutdownTimeout:    utils.GetEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}

	cfg.Auth.CookieSecure = utils.GetEnvAsBool("COOKIE_SECURE", cfg.Env == "production")

	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= cfg.Auth.AccessTokenTTL {
		return nil, fmt.Errorf("refresh token lifetime (%s) must exceed access token lifetime (%s)",
			cfg.Auth.RefreshTokenTTL, cfg.Auth.AccessTokenTTL)
	}

	return cfg, nil
}

// MongoOptions builds the driver options for the configured database.
func (c *Config) MongoOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(c.Database.URI).
		SetMaxPoolSize(c.Database.MaxPoolSize).
		SetMinPoolSize(c.Database.MinPoolSize).
		SetMaxConnIdleTime(c.Database.MaxConnIdleTime).
		SetRetryWrites(c.Database.RetryWrites)
}
