package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "port: 9090\n"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.Wikipedia.FetchTimeout != 10*time.Second {
		t.Errorf("fetch timeout = %v, want 10s", cfg.Wikipedia.FetchTimeout)
	}
	if cfg.Wikipedia.MaxRedirects != 5 {
		t.Errorf("max redirects = %d, want 5", cfg.Wikipedia.MaxRedirects)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("llm defaults = %q/%q", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.LLM.MaxRetries != 2 || cfg.LLM.RetryBackoff != time.Second {
		t.Errorf("retry defaults = %d/%v", cfg.LLM.MaxRetries, cfg.LLM.RetryBackoff)
	}
	if cfg.Summary.WordCountMax != 500 {
		t.Errorf("word count max = %d, want 500", cfg.Summary.WordCountMax)
	}
	if !cfg.Summary.EnableTranslation {
		t.Error("translation should default to enabled")
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.CreatePerMinute != 30 {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
}

func TestLoadFullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
port: 8081
env: production
allowed_origins:
  - https://app.example.com
database:
  host: db.internal
  port: 5433
  user: wikisum
  password: secret
  name: wikisum
redis:
  url: redis://cache.internal:6379/2
wikipedia:
  user_agent: custom-agent/2.0
  fetch_timeout_seconds: 2.5
  max_redirects: 2
llm:
  provider: anthropic
  api_key: sk-ant-test
  model: claude-sonnet-4-5
  fallback_model: claude-haiku-4-5
  timeout_seconds: 15
  max_retries: 1
summary:
  word_count_max: 300
  enable_translation: false
rate_limit:
  enabled: false
`))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.IsDev() {
		t.Error("production config reported as dev")
	}
	dsn := cfg.Database.DSNValue()
	for _, part := range []string{"host=db.internal", "port=5433", "dbname=wikisum", "user=wikisum", "password=secret"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q missing %q", dsn, part)
		}
	}
	if got := cfg.Redis.URLValue(); got != "redis://cache.internal:6379/2" {
		t.Errorf("redis url = %q", got)
	}
	if cfg.Wikipedia.FetchTimeout != 2500*time.Millisecond {
		t.Errorf("fetch timeout = %v, want 2.5s", cfg.Wikipedia.FetchTimeout)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.FallbackModelValue() != "claude-haiku-4-5" {
		t.Errorf("fallback model = %q", cfg.LLM.FallbackModelValue())
	}
	if cfg.Summary.WordCountMax != 300 || cfg.Summary.EnableTranslation {
		t.Errorf("summary = %+v", cfg.Summary)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limit should be disabled")
	}
}

func TestLoadLegacyAliases(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
node_env: production
database_url: postgres://u:p@host:5432/db
redis_url: cache.internal:6380
openai:
  api_key: sk-legacy
summary:
  enable_portuguese_translation: false
`))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.IsDev() {
		t.Error("node_env alias not honored")
	}
	if cfg.Database.DSNValue() != "postgres://u:p@host:5432/db" {
		t.Errorf("dsn = %q", cfg.Database.DSNValue())
	}
	if got := cfg.Redis.URLValue(); got != "redis://cache.internal:6380" {
		t.Errorf("redis url = %q", got)
	}
	if cfg.LLM.APIKey != "sk-legacy" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.Summary.EnableTranslation {
		t.Error("enable_portuguese_translation alias not honored")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/db")
	t.Setenv("REDIS_URL", "redis://env-cache:6379/0")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("WIKIPEDIA_USER_AGENT", "env-agent/1.0")

	cfg, err := Load(writeConfig(t, "llm:\n  api_key: sk-from-file\n"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Database.DSNValue() != "postgres://env-host/db" {
		t.Errorf("dsn = %q", cfg.Database.DSNValue())
	}
	if cfg.Redis.URLValue() != "redis://env-cache:6379/0" {
		t.Errorf("redis url = %q", cfg.Redis.URLValue())
	}
	if cfg.LLM.APIKey != "sk-from-env" {
		t.Errorf("api key = %q, want env value to win", cfg.LLM.APIKey)
	}
	if cfg.Wikipedia.UserAgent != "env-agent/1.0" {
		t.Errorf("user agent = %q", cfg.Wikipedia.UserAgent)
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != defaultPort {
		t.Errorf("port = %d, want %d", cfg.Port, defaultPort)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("missing explicit config file accepted")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	if _, err := Load(writeConfig(t, "not_a_real_key: true\n")); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "port: 70000\n"},
		{"negative redirects", "wikipedia:\n  max_redirects: -1\n"},
		{"zero content bytes", "wikipedia:\n  max_content_bytes: 0\n"},
		{"zero word count max", "summary:\n  word_count_max: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestCredentialUsable(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"your-openai-api-key", false},
		{"sk-real-key", true},
	}
	for _, tt := range tests {
		cfg := LLMConfig{APIKey: tt.key}
		if got := cfg.CredentialUsable(); got != tt.want {
			t.Errorf("CredentialUsable(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestFallbackModelValue(t *testing.T) {
	if got := (LLMConfig{Model: "a", FallbackModel: "a"}).FallbackModelValue(); got != "" {
		t.Errorf("duplicate fallback = %q, want empty", got)
	}
	if got := (LLMConfig{Model: "a", FallbackModel: "b"}).FallbackModelValue(); got != "b" {
		t.Errorf("fallback = %q, want b", got)
	}
	if got := (LLMConfig{Model: "a"}).FallbackModelValue(); got != "" {
		t.Errorf("absent fallback = %q, want empty", got)
	}
}
