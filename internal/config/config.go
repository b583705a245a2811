package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Media backends supported by the recipe image store.
const (
	MediaBackendFilesystem = "filesystem"
	MediaBackendS3         = "s3"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Media    MediaConfig
	Redis    RedisConfig
	Recipes  RecipeRules
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	// TrustProxy honours X-Forwarded-For / X-Real-IP for the client address.
	TrustProxy bool
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

// LoggingConfig controls the global logger.
type LoggingConfig struct {
	Level string
}

// AuthConfig groups token session and login throttling settings.
type AuthConfig struct {
	Session    SessionConfig
	LoginRate  float64
	LoginBurst int
}

// SessionConfig controls the lifetime of issued auth tokens.
type SessionConfig struct {
	Lifetime    time.Duration
	IdleTimeout time.Duration
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// MediaConfig selects where uploaded recipe images are written.
type MediaConfig struct {
	Backend string
	Root    string
	BaseURL string
	S3      S3Config
}

// S3Config holds the object storage settings used by the s3 media backend.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// RedisConfig configures the optional reference data cache.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// RecipeRules are the configurable floors and limits applied to recipes.
type RecipeRules struct {
	MinCookingTime      int `envconfig:"MIN_COOKING_TIME" default:"1"`
	MinIngredientAmount int `envconfig:"MIN_INGREDIENT_AMOUNT" default:"1"`
	PageSize            int `envconfig:"PAGE_SIZE" default:"6"`
	MaxImageSide        int `envconfig:"MAX_IMAGE_SIDE" default:"1200"`
}

// DefaultRecipeRules returns the rules used when nothing is configured.
func DefaultRecipeRules() RecipeRules {
	return RecipeRules{
		MinCookingTime:      1,
		MinIngredientAmount: 1,
		PageSize:            6,
		MaxImageSide:        1200,
	}
}

// Load inspects the environment and builds a Config value. A .env file in the
// working directory is applied first when present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
		ShutdownTimeout: parseDurationWithDefault(os.Getenv("SERVER_SHUTDOWN_TIMEOUT"), 5*time.Second),
		TrustProxy:      parseBoolWithDefault(os.Getenv("SERVER_TRUST_PROXY"), false),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 0),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 0),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), 0),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 0),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Auth = AuthConfig{
		Session: SessionConfig{
			Lifetime:    parseDurationWithDefault(os.Getenv("AUTH_TOKEN_LIFETIME"), 30*24*time.Hour),
			IdleTimeout: parseDurationWithDefault(os.Getenv("AUTH_TOKEN_IDLE_TIMEOUT"), 0),
		},
		LoginRate:  parseFloatWithDefault(os.Getenv("AUTH_LOGIN_RATE"), 1),
		LoginBurst: parseIntWithDefault(os.Getenv("AUTH_LOGIN_BURST"), 5),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(firstNonEmpty(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	cfg.Media = MediaConfig{
		Backend: strings.ToLower(firstNonEmpty(os.Getenv("MEDIA_BACKEND"), MediaBackendFilesystem)),
		Root:    firstNonEmpty(os.Getenv("MEDIA_ROOT"), "media"),
		BaseURL: firstNonEmpty(os.Getenv("MEDIA_URL"), "/media/"),
		S3: S3Config{
			Bucket:    os.Getenv("MEDIA_S3_BUCKET"),
			Region:    firstNonEmpty(os.Getenv("MEDIA_S3_REGION"), "us-east-1"),
			Endpoint:  os.Getenv("MEDIA_S3_ENDPOINT"),
			AccessKey: os.Getenv("MEDIA_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("MEDIA_S3_SECRET_KEY"),
			PublicURL: os.Getenv("MEDIA_S3_PUBLIC_URL"),
		},
	}

	cfg.Redis = RedisConfig{
		URL: os.Getenv("REDIS_URL"),
		TTL: parseDurationWithDefault(os.Getenv("REDIS_CACHE_TTL"), 10*time.Minute),
	}

	if err := envconfig.Process("FOODGRAM", &cfg.Recipes); err != nil {
		return Config{}, fmt.Errorf("recipe rules: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server address must not be empty")
	}
	switch c.Media.Backend {
	case MediaBackendFilesystem:
	case MediaBackendS3:
		if strings.TrimSpace(c.Media.S3.Bucket) == "" {
			return fmt.Errorf("MEDIA_S3_BUCKET is required for the s3 media backend")
		}
	default:
		return fmt.Errorf("unknown media backend: %s", c.Media.Backend)
	}
	if c.Recipes.MinCookingTime < 1 {
		return fmt.Errorf("minimum cooking time must be at least 1")
	}
	if c.Recipes.MinIngredientAmount < 1 {
		return fmt.Errorf("minimum ingredient amount must be at least 1")
	}
	if c.Recipes.PageSize < 1 {
		return fmt.Errorf("page size must be positive")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseFloatWithDefault(value string, def float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
