package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL    = "http://localhost:5000/api"
	defaultPublicURL     = "http://localhost:8080"
	defaultQRService     = "https://api.qrserver.com/v1/create-qr-code/"
	defaultDatabaseURL   = "file:winelabel.db"
	defaultTokenTTL      = 24 * time.Hour
	defaultClientTimeout = 15 * time.Second
	defaultCacheTTL      = 5 * time.Minute
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Database DatabaseConfig
	Session  SessionConfig
	Auth     AuthConfig
	Label    LabelConfig
	Log      LogConfig
}

// ServerConfig configures the admin web server.
type ServerConfig struct {
	Addr string
}

// APIConfig configures the backend API listener and the client that talks to it.
type APIConfig struct {
	Addr           string
	BaseURL        string
	Timeout        time.Duration
	AllowedOrigins []string
	CacheTTL       time.Duration
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// UseMock serves the seeded in-memory database instead of URL.
	UseMock         bool
}

// SessionConfig controls the admin web session cookie.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// AuthConfig controls API token issuance and login throttling.
type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	LoginRate   float64
	LoginBurst  int
}

// LabelConfig controls the public label links.
type LabelConfig struct {
	PublicBaseURL string
	QRService     string
	QRSize        int
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string
	Format string
}

// LoadEnvFiles reads KEY=value pairs from the given files (".env" when none are
// given) without overriding variables already present. Missing files are ignored.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load inspects the environment and builds a Config value.
func Load() (Config, error) {
	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(os.Getenv("SERVER_ADDR"), os.Getenv("ADDR"), ":8080"),
	}

	cfg.API = APIConfig{
		Addr:           firstNonEmpty(os.Getenv("API_ADDR"), ":5000"),
		BaseURL:        strings.TrimRight(firstNonEmpty(os.Getenv("WINELABEL_API_URL"), os.Getenv("API_URL"), defaultAPIBaseURL), "/"),
		Timeout:        parseDurationWithDefault(os.Getenv("API_TIMEOUT"), defaultClientTimeout),
		AllowedOrigins: splitList(firstNonEmpty(os.Getenv("API_ALLOWED_ORIGINS"), "http://localhost:8080")),
		CacheTTL:       parseDurationWithDefault(os.Getenv("API_CACHE_TTL"), defaultCacheTTL),
	}

	cfg.Database = DatabaseConfig{
		URL:             firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("DB_URL"), defaultDatabaseURL),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 0),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 0),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), 0),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 0),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Session = SessionConfig{
		Lifetime:     parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour),
		CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "winelabel_session"),
		CookieDomain: os.Getenv("SESSION_COOKIE_DOMAIN"),
		CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), false),
	}

	cfg.Auth = AuthConfig{
		TokenSecret: firstNonEmpty(os.Getenv("AUTH_TOKEN_SECRET"), os.Getenv("JWT_SECRET")),
		TokenTTL:    parseDurationWithDefault(os.Getenv("AUTH_TOKEN_TTL"), defaultTokenTTL),
		LoginRate:   parseFloatWithDefault(os.Getenv("AUTH_LOGIN_RATE"), 1),
		LoginBurst:  parseIntWithDefault(os.Getenv("AUTH_LOGIN_BURST"), 5),
	}

	cfg.Label = LabelConfig{
		PublicBaseURL: strings.TrimRight(firstNonEmpty(os.Getenv("WINELABEL_PUBLIC_URL"), defaultPublicURL), "/"),
		QRService:     firstNonEmpty(os.Getenv("WINELABEL_QR_SERVICE"), defaultQRService),
		QRSize:        parseIntWithDefault(os.Getenv("WINELABEL_QR_SIZE"), 200),
	}

	cfg.Log = LogConfig{
		Level:  firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		Format: firstNonEmpty(os.Getenv("LOG_FORMAT"), "text"),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return Config{}, fmt.Errorf("api base url must be absolute: %q", cfg.API.BaseURL)
	}

	return cfg, nil
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
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
