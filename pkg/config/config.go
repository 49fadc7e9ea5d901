package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGigaChat = "gigachat"
	ProviderGemini   = "gemini"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	LLM      LLMConfig
	Report   ReportConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
	MigrateOnStart bool
}

// DSN returns the connection string in libpq keyword form.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type LLMConfig struct {
	Provider    string
	Model       string
	Temperature float64
	GigaChat    GigaChatConfig
	Gemini      GeminiConfig
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	InsecureSkipVerify bool
}

type GeminiConfig struct {
	APIKey string
}

type ReportConfig struct {
	Currency  string
	ExportDir string
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work too (Docker/K8s)
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	var errs []error
	readTimeout := getEnvInt("SERVER_READ_TIMEOUT", 30, &errs)
	writeTimeout := getEnvInt("SERVER_WRITE_TIMEOUT", 30, &errs)
	bodyLimitMB := getEnvInt("SERVER_BODY_LIMIT_MB", 10, &errs)
	jwtExp := getEnvInt("JWT_EXPIRATION_HOURS", 24, &errs)
	refreshExp := getEnvInt("JWT_REFRESH_EXPIRATION_HOURS", 168, &errs)
	maxConns := getEnvInt("DB_MAX_CONNS", 10, &errs)
	minConns := getEnvInt("DB_MIN_CONNS", 1, &errs)
	connectTimeout := getEnvInt("DB_CONNECT_TIMEOUT", 5, &errs)

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.3"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE: %w", err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGigaChat))
	defaultModel := "GigaChat"
	if provider == ProviderGemini {
		defaultModel = "gemini-2.5-flash"
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			BodyLimit:    bodyLimitMB * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5433"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "statement_analyzer"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       int32(maxConns),
			MinConns:       int32(minConns),
			ConnectTimeout: time.Duration(connectTimeout) * time.Second,
			MigrateOnStart: getEnv("DB_MIGRATE_ON_START", "true") == "true",
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		LLM: LLMConfig{
			Provider:    provider,
			Model:       getEnv("LLM_MODEL", defaultModel),
			Temperature: temperature,
			GigaChat: GigaChatConfig{
				APIKey:             getEnv("GIGACHAT_API_KEY", ""),
				Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
				InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
			},
			Gemini: GeminiConfig{
				APIKey: getEnv("GEMINI_API_KEY", ""),
			},
		},
		Report: ReportConfig{
			Currency:  getEnv("REPORT_CURRENCY", "₹"),
			ExportDir: getEnv("REPORT_EXPORT_DIR", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, errors.New("SERVER_BODY_LIMIT_MB must be positive"))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		errs = append(errs, errors.New("DB_HOST and DB_NAME are required"))
	}
	if c.Database.MaxConns < 0 || c.Database.MinConns < 0 || (c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns) {
		errs = append(errs, errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS"))
	}
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.JWT.Expiration <= 0 || c.JWT.RefreshExp <= 0 {
		errs = append(errs, errors.New("JWT expirations must be positive"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE %.2f out of range [0, 2]", c.LLM.Temperature))
	}

	switch c.LLM.Provider {
	case ProviderGigaChat:
		if c.LLM.GigaChat.APIKey == "" {
			errs = append(errs, errors.New("GIGACHAT_API_KEY is required for the gigachat provider"))
		}
	case ProviderGemini:
		if c.LLM.Gemini.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return v
}
