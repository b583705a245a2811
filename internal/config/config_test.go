package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

// unsetEnv removes variables for the duration of the test; t.Setenv restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"all empty", []string{"", "   "}, ""},
		{"first non empty", []string{"foo", "bar"}, "foo"},
		{"skips whitespace", []string{"   ", "bar"}, "bar"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := firstNonEmpty(tt.values...); got != tt.want {
				t.Fatalf("firstNonEmpty(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseIntWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"blank returns default", "", 7, 7},
		{"invalid returns default", "abc", 3, 3},
		{"valid parses value", "42", 0, 42},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseIntWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseIntWithDefault(%q, %d) = %d, want %d", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestParseDurationWithDefault(t *testing.T) {
	t.Parallel()

	def := 5 * time.Second
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"blank returns default", "", def},
		{"invalid returns default", "nonsense", def},
		{"valid parses", "2m", 2 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseDurationWithDefault(tt.value, def); got != tt.want {
				t.Fatalf("parseDurationWithDefault(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseBoolWithDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"blank returns default", "", true, true},
		{"invalid returns default", "nope", false, false},
		{"valid parses", "true", false, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseBoolWithDefault(tt.value, tt.def); got != tt.want {
				t.Fatalf("parseBoolWithDefault(%q, %t) = %t, want %t", tt.value, tt.def, got, tt.want)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	got := splitList(" http://localhost:3000, ,https://foodgram.example ")
	want := []string{"http://localhost:3000", "https://foodgram.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitList() = %v, want %v", got, want)
	}
}

func TestLoadUsesEnvironmentDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDR", "")
	t.Setenv("ADDR", "")
	t.Setenv("SERVER_TRUST_PROXY", "")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "10")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "100")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "1h")
	t.Setenv("DATABASE_CONN_MAX_IDLE_TIME", "30m")
	t.Setenv("DATABASE_USE_MOCK", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AUTH_TOKEN_LIFETIME", "45m")
	t.Setenv("AUTH_LOGIN_RATE", "0.5")
	t.Setenv("AUTH_LOGIN_BURST", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	t.Setenv("MEDIA_BACKEND", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	unsetEnv(t, "FOODGRAM_MIN_COOKING_TIME", "FOODGRAM_MIN_INGREDIENT_AMOUNT", "FOODGRAM_PAGE_SIZE", "FOODGRAM_MAX_IMAGE_SIDE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Fatalf("Server.ShutdownTimeout = %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.TrustProxy {
		t.Fatal("Server.TrustProxy defaults to false")
	}
	if cfg.Database.URL != "postgres://example" {
		t.Fatalf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.MaxIdleConns != 10 || cfg.Database.MaxOpenConns != 100 {
		t.Fatalf("Database pool = %d/%d", cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour || cfg.Database.ConnMaxIdleTime != 30*time.Minute {
		t.Fatalf("Database lifetimes = %s/%s", cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime)
	}
	if !cfg.Database.UseMock {
		t.Fatalf("Database.UseMock = %t, want true", cfg.Database.UseMock)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Auth.Session.Lifetime != 45*time.Minute {
		t.Fatalf("Auth.Session.Lifetime = %s", cfg.Auth.Session.Lifetime)
	}
	if cfg.Auth.LoginRate != 0.5 || cfg.Auth.LoginBurst != 3 {
		t.Fatalf("Auth login throttle = %v/%d", cfg.Auth.LoginRate, cfg.Auth.LoginBurst)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Media.Backend != MediaBackendFilesystem || cfg.Media.Root != "media" || cfg.Media.BaseURL != "/media/" {
		t.Fatalf("Media = %+v", cfg.Media)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" || cfg.Redis.TTL != 10*time.Minute {
		t.Fatalf("Redis = %+v", cfg.Redis)
	}
	if cfg.Recipes != DefaultRecipeRules() {
		t.Fatalf("Recipes = %+v, want %+v", cfg.Recipes, DefaultRecipeRules())
	}
}

func TestLoadPrefersServerAddr(t *testing.T) {
	unsetEnv(t, "FOODGRAM_MIN_COOKING_TIME", "FOODGRAM_MIN_INGREDIENT_AMOUNT", "FOODGRAM_PAGE_SIZE", "FOODGRAM_MAX_IMAGE_SIDE")
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("SERVER_TRUST_PROXY", "true")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("MEDIA_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("Server.Addr = %q, want %q", cfg.Server.Addr, "127.0.0.1:9000")
	}
	if !cfg.Server.TrustProxy {
		t.Fatal("Server.TrustProxy = false, want true")
	}
}

func TestLoadReadsRecipeRules(t *testing.T) {
	t.Setenv("MEDIA_BACKEND", "")
	t.Setenv("FOODGRAM_MIN_COOKING_TIME", "5")
	t.Setenv("FOODGRAM_MIN_INGREDIENT_AMOUNT", "2")
	t.Setenv("FOODGRAM_PAGE_SIZE", "12")
	t.Setenv("FOODGRAM_MAX_IMAGE_SIDE", "800")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := RecipeRules{MinCookingTime: 5, MinIngredientAmount: 2, PageSize: 12, MaxImageSide: 800}
	if cfg.Recipes != want {
		t.Fatalf("Recipes = %+v, want %+v", cfg.Recipes, want)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown media backend", map[string]string{"MEDIA_BACKEND": "ftp"}},
		{"s3 without bucket", map[string]string{"MEDIA_BACKEND": "s3", "MEDIA_S3_BUCKET": ""}},
		{"zero cooking time", map[string]string{"MEDIA_BACKEND": "", "FOODGRAM_MIN_COOKING_TIME": "0"}},
		{"zero amount", map[string]string{"MEDIA_BACKEND": "", "FOODGRAM_MIN_INGREDIENT_AMOUNT": "0"}},
		{"non numeric page size", map[string]string{"MEDIA_BACKEND": "", "FOODGRAM_PAGE_SIZE": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, "FOODGRAM_MIN_COOKING_TIME", "FOODGRAM_MIN_INGREDIENT_AMOUNT", "FOODGRAM_PAGE_SIZE", "FOODGRAM_MAX_IMAGE_SIDE")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected Load() to fail")
			}
		})
	}
}
