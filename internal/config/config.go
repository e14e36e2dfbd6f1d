package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the assistant. Everything has a sane
// default so the binary runs with an empty environment.
type Config struct {
	// LLM collaborator (local Ollama instance).
	OllamaBaseURL string  `yaml:"ollama_base_url"`
	OllamaModel   string  `yaml:"ollama_model"`
	OllamaTimeout int     `yaml:"ollama_timeout_sec"`
	Temperature   float64 `yaml:"temperature"`

	// Quote cache and trade-quote retry policy.
	QuoteTTLSec       int `yaml:"quote_ttl_sec"`
	QuoteFetchDelayMs int `yaml:"quote_fetch_delay_ms"`
	QuoteRetries      int `yaml:"quote_retries"`
	RetryBackoffSec   int `yaml:"retry_backoff_sec"`

	// Conversation context sent to the LLM.
	HistoryPairs int `yaml:"history_pairs"`

	// Persistence and market data.
	DBPath         string `yaml:"db_path"`
	MarketProvider string `yaml:"market_provider"` // yahoo, alpaca or sim

	// Logging.
	LogLevel      string `yaml:"log_level"`
	MaxLogSizeMB  int64  `yaml:"max_log_size_mb"`
	MaxLogBackups int    `yaml:"max_log_backups"`
}

// Load initializes the configuration from the environment.
// A .env file is honored when present but never required.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3.1:8b-instruct-q4_0"),
		OllamaTimeout:     getEnvAsInt("OLLAMA_TIMEOUT_SEC", 120),
		Temperature:       getEnvAsFloat64("OLLAMA_TEMPERATURE", 0.7),
		QuoteTTLSec:       getEnvAsInt("QUOTE_TTL_SEC", 60),
		QuoteFetchDelayMs: getEnvAsInt("QUOTE_FETCH_DELAY_MS", 500),
		QuoteRetries:      getEnvAsInt("QUOTE_RETRIES", 3),
		RetryBackoffSec:   getEnvAsInt("RETRY_BACKOFF_SEC", 1),
		HistoryPairs:      getEnvAsInt("CHAT_HISTORY_PAIRS", 5),
		DBPath:            getEnv("FINANCEGPT_DB", "financegpt.db"),
		MarketProvider:    getEnv("MARKET_PROVIDER", "yahoo"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		MaxLogSizeMB:      int64(getEnvAsInt("MAX_LOG_SIZE_MB", 10)),
		MaxLogBackups:     getEnvAsInt("MAX_LOG_BACKUPS", 3),
	}
}

// ApplyFile overlays values from a YAML config file on top of the current
// configuration. Environment values act as the base, the file wins.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks provider-specific requirements.
func (c *Config) Validate() error {
	if c.MarketProvider == "alpaca" {
		for _, key := range []string{"APCA_API_KEY_ID", "APCA_API_SECRET_KEY"} {
			if os.Getenv(key) == "" {
				return &MissingEnvError{Key: key}
			}
		}
	}
	return nil
}

// MissingEnvError reports a required environment variable that is unset.
type MissingEnvError struct {
	Key string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variable: " + e.Key
}
