package config

import (
	"log/slog"
	"testing"
	"time"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestLoadDefaultsForDevProfile(t *testing.T) {
	cfg, err := Load("lucidata-engine", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8001" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Database.DSN != "" {
		t.Fatalf("Database.DSN = %q, want empty default", cfg.Database.DSN)
	}
	if cfg.AI.Model != "gpt-4" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.1 {
		t.Fatalf("AI.Temperature = %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 500 {
		t.Fatalf("AI.MaxTokens = %d", cfg.AI.MaxTokens)
	}
	if cfg.Router.EngineURL != "http://localhost:8001" {
		t.Fatalf("Router.EngineURL = %q", cfg.Router.EngineURL)
	}
}

func TestLoadDefaultAddressPerService(t *testing.T) {
	cases := map[string]string{
		"lucidata-engine":    ":8001",
		"lucidata-runner":    ":8003",
		"lucidata-formatter": ":8004",
		"lucidata-router":    ":8000",
	}
	for service, want := range cases {
		cfg, err := Load(service, mapLookup(map[string]string{}))
		if err != nil {
			t.Fatalf("Load(%q) error = %v", service, err)
		}
		if cfg.HTTP.Address != want {
			t.Fatalf("Load(%q).HTTP.Address = %q, want %q", service, cfg.HTTP.Address, want)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	cfg, err := Load("lucidata-engine", mapLookup(map[string]string{
		"LUCIDATA_HTTP_ADDR":       ":9999",
		"LUCIDATA_DATABASE_URL":    "postgres://user:pass@db:5432/cars",
		"LUCIDATA_LLM_MODEL":       "gpt-3.5-turbo",
		"LUCIDATA_LLM_API_KEY":     "sk-test",
		"LUCIDATA_LLM_TEMPERATURE": "0.3",
		"LUCIDATA_LLM_MAX_TOKENS":  "800",
		"LUCIDATA_LLM_TIMEOUT":     "45s",
		"LUCIDATA_LOG_LEVEL":       "error",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Database.DSN != "postgres://user:pass@db:5432/cars" {
		t.Fatalf("Database.DSN = %q", cfg.Database.DSN)
	}
	if cfg.AI.Model != "gpt-3.5-turbo" {
		t.Fatalf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.AI.Temperature != 0.3 {
		t.Fatalf("AI.Temperature = %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 800 {
		t.Fatalf("AI.MaxTokens = %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout != 45*time.Second {
		t.Fatalf("AI.Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	_, err := Load("lucidata-engine", mapLookup(map[string]string{
		"LUCIDATA_PROFILE": "staging",
	}))
	if err == nil {
		t.Fatal("Load() expected error for invalid profile")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	_, err := Load("lucidata-engine", mapLookup(map[string]string{
		"LUCIDATA_LLM_TIMEOUT": "soon",
	}))
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
}

func TestLoadTestProfileLowersLogLevel(t *testing.T) {
	cfg, err := Load("lucidata-engine", mapLookup(map[string]string{
		"LUCIDATA_PROFILE": "test",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Observability.LogLevel != slog.LevelWarn {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}
