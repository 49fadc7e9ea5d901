package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*1024*1024, cfg.Server.BodyLimit)
	assert.Equal(t, ProviderGigaChat, cfg.LLM.Provider)
	assert.Equal(t, "GigaChat", cfg.LLM.Model)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_Gemini(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("LLM_TEMPERATURE", "0.7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "soon")
	t.Setenv("LLM_TEMPERATURE", "warm")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_READ_TIMEOUT")
	assert.Contains(t, err.Error(), "LLM_TEMPERATURE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080", BodyLimit: 1024},
			Database: DatabaseConfig{Host: "localhost", DBName: "db"},
			JWT:      JWTConfig{SecretKey: "s", Expiration: time.Hour, RefreshExp: time.Hour},
			LLM: LLMConfig{
				Provider:    ProviderGigaChat,
				Temperature: 0.3,
				GigaChat:    GigaChatConfig{APIKey: "k"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing gigachat key",
			mutate:  func(c *Config) { c.LLM.GigaChat.APIKey = "" },
			wantErr: []string{"GIGACHAT_API_KEY"},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.LLM.Provider = "openai" },
			wantErr: []string{`unknown LLM_PROVIDER "openai"`},
		},
		{
			name: "collects every problem",
			mutate: func(c *Config) {
				c.Server.Port = ""
				c.JWT.SecretKey = ""
				c.LLM.Temperature = 3
				c.Database.MaxConns, c.Database.MinConns = 2, 5
			},
			wantErr: []string{"SERVER_PORT", "JWT_SECRET_KEY", "LLM_TEMPERATURE", "DB_MIN_CONNS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())
}
