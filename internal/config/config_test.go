package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	optionals := []string{
		"OLLAMA_BASE_URL",
		"OLLAMA_MODEL",
		"QUOTE_TTL_SEC",
		"QUOTE_FETCH_DELAY_MS",
		"QUOTE_RETRIES",
		"CHAT_HISTORY_PAIRS",
		"MARKET_PROVIDER",
	}
	for _, k := range optionals {
		os.Unsetenv(k)
	}

	cfg := Load()

	if cfg.OllamaBaseURL != "http://localhost:11434" {
		t.Errorf("Expected default Ollama URL, got %q", cfg.OllamaBaseURL)
	}
	if cfg.QuoteTTLSec != 60 {
		t.Errorf("Expected QuoteTTLSec 60, got %d", cfg.QuoteTTLSec)
	}
	if cfg.QuoteFetchDelayMs != 500 {
		t.Errorf("Expected QuoteFetchDelayMs 500, got %d", cfg.QuoteFetchDelayMs)
	}
	if cfg.QuoteRetries != 3 {
		t.Errorf("Expected QuoteRetries 3, got %d", cfg.QuoteRetries)
	}
	if cfg.RetryBackoffSec != 1 {
		t.Errorf("Expected RetryBackoffSec 1, got %d", cfg.RetryBackoffSec)
	}
	if cfg.HistoryPairs != 5 {
		t.Errorf("Expected HistoryPairs 5, got %d", cfg.HistoryPairs)
	}
	if cfg.MarketProvider != "yahoo" {
		t.Errorf("Expected MarketProvider yahoo, got %q", cfg.MarketProvider)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("QUOTE_TTL_SEC", "120")
	os.Setenv("OLLAMA_MODEL", "mistral")
	defer os.Unsetenv("QUOTE_TTL_SEC")
	defer os.Unsetenv("OLLAMA_MODEL")

	cfg := Load()

	if cfg.QuoteTTLSec != 120 {
		t.Errorf("Expected QuoteTTLSec 120, got %d", cfg.QuoteTTLSec)
	}
	if cfg.OllamaModel != "mistral" {
		t.Errorf("Expected OllamaModel mistral, got %q", cfg.OllamaModel)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Setenv("QUOTE_RETRIES", "three")
	defer os.Unsetenv("QUOTE_RETRIES")

	cfg := Load()

	if cfg.QuoteRetries != 3 {
		t.Errorf("Expected fallback 3, got %d", cfg.QuoteRetries)
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "ollama_model: phi4\nquote_ttl_sec: 30\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("ApplyFile failed: %v", err)
	}

	if cfg.OllamaModel != "phi4" {
		t.Errorf("Expected phi4, got %q", cfg.OllamaModel)
	}
	if cfg.QuoteTTLSec != 30 {
		t.Errorf("Expected 30, got %d", cfg.QuoteTTLSec)
	}
	// Untouched keys keep their env/default values.
	if cfg.HistoryPairs != 5 {
		t.Errorf("Expected HistoryPairs 5, got %d", cfg.HistoryPairs)
	}
}
