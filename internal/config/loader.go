package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "botfactory.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "BOTFACTORY_PORT")
	setString(&cfg.Server.CORSOrigin, "BOTFACTORY_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "BOTFACTORY_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "BOTFACTORY_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "BOTFACTORY_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "BOTFACTORY_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "BOTFACTORY_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Telegram.BaseURL, "TELEGRAM_API_URL")
	setDuration(&cfg.Telegram.Timeout, "TELEGRAM_TIMEOUT")
	setString(&cfg.Gemini.BaseURL, "GEMINI_API_URL")
	setString(&cfg.Gemini.APIKey, "GOOGLE_API_KEY")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")
	setInt(&cfg.Gemini.MaxTokens, "GEMINI_MAX_TOKENS")
	setFloat64(&cfg.Gemini.Temperature, "GEMINI_TEMPERATURE")
	setDuration(&cfg.Gemini.Timeout, "GEMINI_TIMEOUT")
	setString(&cfg.Speech.URL, "SPEECH_API_URL")
	setDuration(&cfg.Speech.Timeout, "SPEECH_TIMEOUT")
	setString(&cfg.Logging.Level, "BOTFACTORY_LOG_LEVEL")
	setString(&cfg.Logging.Service, "BOTFACTORY_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "BOTFACTORY_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "BOTFACTORY_BREAKER_TIMEOUT")
	setDuration(&cfg.Poller.PollWait, "BOTFACTORY_POLL_WAIT")
	setDuration(&cfg.Poller.RetryDelay, "BOTFACTORY_POLL_RETRY_DELAY")
	setInt(&cfg.Poller.DedupWindow, "BOTFACTORY_DEDUP_WINDOW")
	setInt(&cfg.Reply.MaxLength, "BOTFACTORY_REPLY_MAX_LENGTH")
	setInt(&cfg.Reply.HistoryDepth, "BOTFACTORY_HISTORY_DEPTH")
	setInt(&cfg.Reply.KnowledgeBudget, "BOTFACTORY_KNOWLEDGE_BUDGET")
	setInt(&cfg.Reply.PromptBudget, "BOTFACTORY_PROMPT_BUDGET")
	setInt(&cfg.Reply.MatchThreshold, "BOTFACTORY_MATCH_THRESHOLD")
	setInt64(&cfg.Cache.MaxSizeMB, "BOTFACTORY_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.KnowledgeTTL, "BOTFACTORY_KNOWLEDGE_TTL")
	setString(&cfg.Secrets.TokenSecret, "BOTFACTORY_TOKEN_SECRET")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Telegram.BaseURL == "" {
		return errors.New("telegram.base_url is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Poller.PollWait <= 0 {
		return errors.New("poller.poll_wait must be positive")
	}
	if cfg.Poller.DedupWindow < 1 {
		return errors.New("poller.dedup_window must be >= 1")
	}
	if cfg.Reply.MaxLength < 10 {
		return errors.New("reply.max_length must be >= 10")
	}
	if cfg.Secrets.TokenSecret == "" {
		return errors.New("secrets.token_secret is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
