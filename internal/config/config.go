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
	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable pointing at an optional YAML file.
const FileEnv = "JOBPORTAL_CONFIG"

type Config struct {
	AppPort     string `yaml:"app_port"`
	ServiceName string `yaml:"service_name"`
	LogLevel    string `yaml:"log_level"`

	APIBaseURL string        `yaml:"api_base_url"`
	APITimeout time.Duration `yaml:"api_timeout"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	SessionTTL     time.Duration `yaml:"session_ttl"`
	CookieSecure   bool          `yaml:"cookie_secure"`
	AllowedOrigins []string      `yaml:"allowed_origins"`

	// TokenFile is where the CLI keeps its token. Empty means the user
	// config dir.
	TokenFile string `yaml:"token_file"`
}

func Defaults() Config {
	return Config{
		AppPort:        "8080",
		ServiceName:    "jobportal-gateway",
		LogLevel:       "info",
		APIBaseURL:     "https://s6-1cep.onrender.com",
		APITimeout:     15 * time.Second,
		SessionTTL:     24 * time.Hour,
		CookieSecure:   true,
		AllowedOrigins: []string{"http://localhost:5173"},
	}
}

// Load layers defaults, the YAML file named by JOBPORTAL_CONFIG, and the
// environment (a .env file in the working directory is read first).
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv(FileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.AppPort = readString("APP_PORT", cfg.AppPort)
	cfg.ServiceName = readString("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.LogLevel = readString("LOG_LEVEL", cfg.LogLevel)
	cfg.APIBaseURL = readString("API_BASE_URL", cfg.APIBaseURL)
	cfg.APITimeout = readDuration("API_TIMEOUT", cfg.APITimeout)
	cfg.RedisAddr = readString("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = readString("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.SessionTTL = readDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.CookieSecure = readBool("COOKIE_SECURE", cfg.CookieSecure)
	cfg.AllowedOrigins = readList("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.TokenFile = readString("TOKEN_FILE", cfg.TokenFile)

	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func readString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func readDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare numbers are seconds
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func readBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func readList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
