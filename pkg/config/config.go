package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Debug bool
	Port  int

	Password string // shared admin password for the chat endpoint

	// Investec API credentials
	ClientID      string
	ClientSecret  string
	APIKey        string
	UseSandbox    bool
	Timeout       int // seconds
	ProductionURL string
	SandboxURL    string

	RedisAddr string
	RedisDB   int
	DBString  string // when set, Postgres is used instead of Redis

	AIProvider      string // anthropic or openai
	AnthropicAPIKey string
	OpenAiAPIKey    string
	StaticToolsPath string
}

func NewConfig() *Config {
	return &Config{
		Debug: getBoolEnvDefault("DEBUG", false),
		Port:  getIntEnvDefault("PORT", 8080),

		Password: getStringEnvDefault("PASSWORD", "test"),

		ClientID:      getStringEnvDefault("INVESTEC_CLIENT_ID", ""),
		ClientSecret:  getStringEnvDefault("INVESTEC_CLIENT_SECRET", ""),
		APIKey:        getStringEnvDefault("INVESTEC_API_KEY", ""),
		UseSandbox:    getBoolEnvDefault("INVESTEC_USE_SANDBOX", false),
		Timeout:       getIntEnvDefault("INVESTEC_TIMEOUT", 30),
		ProductionURL: getStringEnvDefault("INVESTEC_PRODUCTION_URL", "https://openapi.investec.com"),
		SandboxURL:    getStringEnvDefault("INVESTEC_SANDBOX_URL", "https://openapisandbox.investec.com"),

		RedisAddr: getStringEnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getIntEnvDefault("REDIS_DB", 0),
		DBString:  getStringEnvDefault("DB_STRING", ""),

		AIProvider:      getStringEnvDefault("AI_PROVIDER", "anthropic"),
		AnthropicAPIKey: getStringEnvDefault("ANTHROPIC_API_KEY", ""),
		OpenAiAPIKey:    getStringEnvDefault("OPENAI_API_KEY", ""),
		StaticToolsPath: getStringEnvDefault("STATIC_TOOLS_PATH", ""),
	}
}

// BaseURL returns the API base URL for the configured environment.
func (c *Config) BaseURL() string {
	if c.UseSandbox {
		return c.SandboxURL
	}

	return c.ProductionURL
}

// MaskedClientID is safe to log - the first four characters at most.
func (c *Config) MaskedClientID() string {
	if c.ClientID == "" {
		return "not set"
	}

	if len(c.ClientID) <= 4 {
		return "***"
	}

	return c.ClientID[:4] + "..."
}

func getBoolEnvDefault(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}

	fmt.Printf("Using default value for %s\n", key)
	return defaultValue
}

func getStringEnvDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	fmt.Printf("Using default value for %s\n", key)
	return defaultValue
}

func getIntEnvDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	fmt.Printf("Using default value for %s\n", key)
	return defaultValue
}
