package config

import (
	"bytes"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8080
	defaultEnv        = "development"

	defaultDBHost    = "127.0.0.1"
	defaultDBPort    = 5432
	defaultDBUser    = "postgres"
	defaultDBName    = "summaries"
	defaultDBSSLMode = "disable"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultUserAgent       = "wikisum-core/1.0 (https://github.com/wikisum/core)"
	defaultFetchTimeout    = 10 * time.Second
	defaultMaxRedirects    = 5
	defaultMaxContentBytes = 2_000_000
	defaultMinArticleWords = 50

	defaultLLMProvider     = "openai"
	defaultLLMModel        = "gpt-4o-mini"
	defaultLLMTimeout      = 30 * time.Second
	defaultLLMMaxRetries   = 2
	defaultLLMBackoff      = time.Second
	defaultMaxOutputTokens = 1024

	defaultWordCountMax = 500

	defaultRateLimitPerMinute       = 120
	defaultCreateRateLimitPerMinute = 30
	defaultLookupRateLimitPerMinute = 300
)

// placeholderAPIKeys are values that look configured but are not usable.
var placeholderAPIKeys = map[string]struct{}{
	"your-openai-api-key": {},
}

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int             `yaml:"port"`
	Env            string          `yaml:"env"` // "development" | "production"
	AllowedOrigins []string        `yaml:"allowed_origins"`
	Database       DatabaseConfig  `yaml:"database"`
	Redis          RedisConfig     `yaml:"redis"`
	Wikipedia      WikipediaConfig `yaml:"wikipedia"`
	LLM            LLMConfig       `yaml:"llm"`
	Summary        SummaryConfig   `yaml:"summary"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type WikipediaConfig struct {
	UserAgent       string        `yaml:"user_agent"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	MaxRedirects    int           `yaml:"max_redirects"`
	MaxContentBytes int64         `yaml:"max_content_bytes"`
	MinArticleWords int           `yaml:"min_article_words"`
}

type LLMConfig struct {
	Provider        string        `yaml:"provider"` // "openai" | "anthropic"
	APIKey          string        `yaml:"api_key"`
	Endpoint        string        `yaml:"endpoint"`
	Model           string        `yaml:"model"`
	FallbackModel   string        `yaml:"fallback_model"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
}

type SummaryConfig struct {
	WordCountMax      int  `yaml:"word_count_max"`
	EnableTranslation bool `yaml:"enable_translation"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
	DefaultPerMinute  int  `yaml:"default_per_minute"`
	CreatePerMinute   int  `yaml:"create_per_minute"`
	LookupPerMinute   int  `yaml:"lookup_per_minute"`
}

type rawAppConfig struct {
	Port           int          `yaml:"port"`
	Env            string       `yaml:"env"`
	NodeEnv        string       `yaml:"node_env"`
	AllowedOrigins []string     `yaml:"allowed_origins"`
	DSN            string       `yaml:"dsn"`
	DatabaseURL    string       `yaml:"database_url"`
	Database       rawDatabase  `yaml:"database"`
	RedisURL       string       `yaml:"redis_url"`
	Redis          rawRedis     `yaml:"redis"`
	Wikipedia      rawWikipedia `yaml:"wikipedia"`
	LLM            rawLLM       `yaml:"llm"`
	OpenAI         rawLLM       `yaml:"openai"` // legacy section name
	Summary        rawSummary   `yaml:"summary"`
	RateLimit      rawRateLimit `yaml:"rate_limit"`
}

type rawDatabase struct {
	DSN      string `yaml:"dsn"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"sslmode"`
}

type rawRedis struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawWikipedia struct {
	UserAgent       string   `yaml:"user_agent"`
	FetchTimeout    *float64 `yaml:"fetch_timeout_seconds"`
	MaxRedirects    *int     `yaml:"max_redirects"`
	MaxContentBytes *int64   `yaml:"max_content_bytes"`
	MinArticleWords *int     `yaml:"min_article_words"`
}

type rawLLM struct {
	Provider        string   `yaml:"provider"`
	APIKey          string   `yaml:"api_key"`
	Endpoint        string   `yaml:"endpoint"`
	Model           string   `yaml:"model"`
	FallbackModel   string   `yaml:"fallback_model"`
	Timeout         *float64 `yaml:"timeout_seconds"`
	MaxRetries      *int     `yaml:"max_retries"`
	RetryBackoff    *float64 `yaml:"retry_backoff_seconds"`
	MaxOutputTokens *int     `yaml:"max_output_tokens"`
}

type rawSummary struct {
	WordCountMax      *int  `yaml:"word_count_max"`
	EnableTranslation *bool `yaml:"enable_translation"`
	EnablePortuguese  *bool `yaml:"enable_portuguese_translation"`
}

type rawRateLimit struct {
	Enabled           *bool `yaml:"enabled"`
	TrustProxyHeaders *bool `yaml:"trust_proxy_headers"`
	DefaultPerMinute  *int  `yaml:"default_per_minute"`
	CreatePerMinute   *int  `yaml:"create_per_minute"`
	LookupPerMinute   *int  `yaml:"lookup_per_minute"`
}

// Load reads the YAML config file, applies defaults and environment overrides,
// and validates the result. The returned config is built once here and injected
// into each component; nothing reads it through a global.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case os.IsNotExist(err) && strings.TrimSpace(configPath) == "":
		// No config file at the assumed default path; env fills the gaps.
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.Wikipedia.MaxRedirects < 0 {
		return nil, fmt.Errorf("invalid wikipedia.max_redirects %d, expected >= 0", cfg.Wikipedia.MaxRedirects)
	}
	if cfg.Wikipedia.MaxContentBytes <= 0 {
		return nil, fmt.Errorf("invalid wikipedia.max_content_bytes %d, expected > 0", cfg.Wikipedia.MaxContentBytes)
	}
	if cfg.Summary.WordCountMax < 1 {
		return nil, fmt.Errorf("invalid summary.word_count_max %d, expected >= 1", cfg.Summary.WordCountMax)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseConfig{
			Host:    defaultDBHost,
			Port:    defaultDBPort,
			User:    defaultDBUser,
			Name:    defaultDBName,
			SSLMode: defaultDBSSLMode,
		},
		Redis: RedisConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Wikipedia: WikipediaConfig{
			UserAgent:       defaultUserAgent,
			FetchTimeout:    defaultFetchTimeout,
			MaxRedirects:    defaultMaxRedirects,
			MaxContentBytes: defaultMaxContentBytes,
			MinArticleWords: defaultMinArticleWords,
		},
		LLM: LLMConfig{
			Provider:        defaultLLMProvider,
			Model:           defaultLLMModel,
			Timeout:         defaultLLMTimeout,
			MaxRetries:      defaultLLMMaxRetries,
			RetryBackoff:    defaultLLMBackoff,
			MaxOutputTokens: defaultMaxOutputTokens,
		},
		Summary: SummaryConfig{
			WordCountMax:      defaultWordCountMax,
			EnableTranslation: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			DefaultPerMinute: defaultRateLimitPerMinute,
			CreatePerMinute:  defaultCreateRateLimitPerMinute,
			LookupPerMinute:  defaultLookupRateLimitPerMinute,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}

	db := &cfg.Database
	for _, v := range []string{raw.Database.DSN, raw.Database.URL, raw.DSN, raw.DatabaseURL} {
		if v = strings.TrimSpace(v); v != "" {
			db.DSN = v
		}
	}
	if v := strings.TrimSpace(raw.Database.Host); v != "" {
		db.Host = v
	}
	if raw.Database.Port != 0 {
		db.Port = raw.Database.Port
	}
	if v := strings.TrimSpace(raw.Database.User); v != "" {
		db.User = v
	}
	if v := strings.TrimSpace(raw.Database.Username); v != "" {
		db.User = v
	}
	if v := strings.TrimSpace(raw.Database.Password); v != "" {
		db.Password = v
	}
	if v := strings.TrimSpace(raw.Database.Name); v != "" {
		db.Name = v
	}
	if v := strings.TrimSpace(raw.Database.DBName); v != "" {
		db.Name = v
	}
	if v := strings.TrimSpace(raw.Database.SSLMode); v != "" {
		db.SSLMode = v
	}

	rd := &cfg.Redis
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		rd.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		rd.URL = v
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		rd.Host = v
	}
	if raw.Redis.Port != 0 {
		rd.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		rd.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		rd.Password = v
	}
	if raw.Redis.DB != nil {
		rd.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		rd.TLS = *raw.Redis.TLS
	}

	wiki := &cfg.Wikipedia
	if v := strings.TrimSpace(raw.Wikipedia.UserAgent); v != "" {
		wiki.UserAgent = v
	}
	if raw.Wikipedia.FetchTimeout != nil {
		wiki.FetchTimeout = secondsToDuration(*raw.Wikipedia.FetchTimeout)
	}
	if raw.Wikipedia.MaxRedirects != nil {
		wiki.MaxRedirects = *raw.Wikipedia.MaxRedirects
	}
	if raw.Wikipedia.MaxContentBytes != nil {
		wiki.MaxContentBytes = *raw.Wikipedia.MaxContentBytes
	}
	if raw.Wikipedia.MinArticleWords != nil {
		wiki.MinArticleWords = *raw.Wikipedia.MinArticleWords
	}

	applyRawLLM(&cfg.LLM, raw.OpenAI)
	applyRawLLM(&cfg.LLM, raw.LLM)

	if raw.Summary.WordCountMax != nil {
		cfg.Summary.WordCountMax = *raw.Summary.WordCountMax
	}
	if raw.Summary.EnablePortuguese != nil {
		cfg.Summary.EnableTranslation = *raw.Summary.EnablePortuguese
	}
	if raw.Summary.EnableTranslation != nil {
		cfg.Summary.EnableTranslation = *raw.Summary.EnableTranslation
	}

	rl := &cfg.RateLimit
	if raw.RateLimit.Enabled != nil {
		rl.Enabled = *raw.RateLimit.Enabled
	}
	if raw.RateLimit.TrustProxyHeaders != nil {
		rl.TrustProxyHeaders = *raw.RateLimit.TrustProxyHeaders
	}
	if raw.RateLimit.DefaultPerMinute != nil {
		rl.DefaultPerMinute = *raw.RateLimit.DefaultPerMinute
	}
	if raw.RateLimit.CreatePerMinute != nil {
		rl.CreatePerMinute = *raw.RateLimit.CreatePerMinute
	}
	if raw.RateLimit.LookupPerMinute != nil {
		rl.LookupPerMinute = *raw.RateLimit.LookupPerMinute
	}

	cfg.Env = normalizeEnv(cfg.Env)
}

func applyRawLLM(cfg *LLMConfig, raw rawLLM) {
	if v := strings.TrimSpace(raw.Provider); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.APIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := strings.TrimSpace(raw.Model); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(raw.FallbackModel); v != "" {
		cfg.FallbackModel = v
	}
	if raw.Timeout != nil {
		cfg.Timeout = secondsToDuration(*raw.Timeout)
	}
	if raw.MaxRetries != nil {
		cfg.MaxRetries = *raw.MaxRetries
	}
	if raw.RetryBackoff != nil {
		cfg.RetryBackoff = secondsToDuration(*raw.RetryBackoff)
	}
	if raw.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = *raw.MaxOutputTokens
	}
}

// applyEnvOverrides lets deployment environments inject secrets and endpoints
// without touching the config file.
func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Redis.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" && cfg.LLM.Provider != "anthropic" {
		cfg.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" && cfg.LLM.Provider == "anthropic" {
		cfg.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("WIKIPEDIA_USER_AGENT")); v != "" {
		cfg.Wikipedia.UserAgent = v
	}
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

// DSNValue builds the Postgres DSN from the explicit value or components.
func (c DatabaseConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultDBName
	}
	sslmode := strings.TrimSpace(c.SSLMode)
	if sslmode == "" {
		sslmode = defaultDBSSLMode
	}

	parts := []string{
		"host=" + host,
		"port=" + strconv.Itoa(port),
		"dbname=" + name,
		"sslmode=" + sslmode,
	}
	if user := strings.TrimSpace(c.User); user != "" {
		parts = append(parts, "user="+user)
	}
	if password := strings.TrimSpace(c.Password); password != "" {
		parts = append(parts, "password="+password)
	}
	return strings.Join(parts, " ")
}

// URLValue builds the redis connection URL from the explicit value or components.
func (c RedisConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	db := c.DB
	if db < 0 {
		db = defaultRedisDB
	}

	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(db),
	}
	username := strings.TrimSpace(c.Username)
	password := strings.TrimSpace(c.Password)
	if username != "" {
		if password != "" {
			u.User = neturl.UserPassword(username, password)
		} else {
			u.User = neturl.User(username)
		}
	} else if password != "" {
		u.User = neturl.UserPassword("", password)
	}
	return u.String()
}

// CredentialUsable reports whether a real API key is configured.
// Placeholder values from sample env files count as absent.
func (c LLMConfig) CredentialUsable() bool {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return false
	}
	_, placeholder := placeholderAPIKeys[key]
	return !placeholder
}

// FallbackModelValue returns the fallback model, or "" when none is configured
// or it duplicates the primary model.
func (c LLMConfig) FallbackModelValue() string {
	fallback := strings.TrimSpace(c.FallbackModel)
	if fallback == "" || fallback == strings.TrimSpace(c.Model) {
		return ""
	}
	return fallback
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}
