// Package config resolves runtime settings from defaults, an optional YAML file,
// a .env file, and the process environment, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the bot.
type Config struct {
	ListenAddr string           `yaml:"listen_addr"`
	Log        LogConfig        `yaml:"log"`
	LINE       LINEConfig       `yaml:"line"`
	Session    SessionConfig    `yaml:"session"`
	Generation GenerationConfig `yaml:"generation"`
	Ledger     LedgerConfig     `yaml:"ledger"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // auto | text | json
}

// LINEConfig holds the Messaging API channel credentials.
type LINEConfig struct {
	ChannelAccessToken string        `yaml:"channel_access_token"`
	ChannelSecret      string        `yaml:"channel_secret"`
	APIBaseURL         string        `yaml:"api_base_url"`
	ReplyWindow        time.Duration `yaml:"reply_window"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
}

// SessionConfig selects and tunes the session store.
// An empty KVURL selects the in-process store.
type SessionConfig struct {
	KVURL         string        `yaml:"kv_url"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
	SerializeTurn bool          `yaml:"serialize_turns"`
	EncryptionKey string        `yaml:"encryption_key"` // base64, 32 bytes
}

type GenerationConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int64         `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LedgerConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		LINE: LINEConfig{
			ReplyWindow:  55 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Session: SessionConfig{
			Prefix: "fortuneAppUserSession",
			TTL:    24 * time.Hour,
		},
		Generation: GenerationConfig{
			Model:       "gpt-4o-mini",
			MaxTokens:   1500,
			Temperature: 0.7,
			Timeout:     25 * time.Second,
		},
		Ledger: LedgerConfig{
			DSN: "file://uranai-requests.jsonl",
		},
	}
}

// Load builds a Config. path may be empty; a missing .env file is not an error.
// Variables already present in the environment take precedence over .env entries.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables read through lookup.
// All malformed values are reported together.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int64) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	// PORT is what most hosting platforms inject; LISTEN_ADDR wins when both are set.
	if port, ok := lookup("PORT"); ok && port != "" {
		c.ListenAddr = ":" + strings.TrimPrefix(port, ":")
	}
	str("LISTEN_ADDR", &c.ListenAddr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	str("CHANNEL_ACCESS_TOKEN", &c.LINE.ChannelAccessToken)
	str("CHANNEL_SECRET", &c.LINE.ChannelSecret)
	str("LINE_API_BASE_URL", &c.LINE.APIBaseURL)
	dur("REPLY_WINDOW", &c.LINE.ReplyWindow)
	integer("MAX_BODY_BYTES", &c.LINE.MaxBodyBytes)

	str("KV_URL", &c.Session.KVURL)
	str("SESSION_PREFIX", &c.Session.Prefix)
	dur("SESSION_TTL", &c.Session.TTL)
	boolean("SERIALIZE_TURNS", &c.Session.SerializeTurn)
	str("SESSION_ENCRYPTION_KEY", &c.Session.EncryptionKey)

	str("OPENAI_API_KEY", &c.Generation.APIKey)
	str("OPENAI_BASE_URL", &c.Generation.BaseURL)
	str("OPENAI_MODEL", &c.Generation.Model)
	integer("OPENAI_MAX_TOKENS", &c.Generation.MaxTokens)
	dur("GENERATION_TIMEOUT", &c.Generation.Timeout)

	str("LEDGER_DSN", &c.Ledger.DSN)

	return errors.Join(errs...)
}

// Validate checks the settings `serve` cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.LINE.ChannelAccessToken == "" {
		errs = append(errs, errors.New("CHANNEL_ACCESS_TOKEN is required"))
	}
	if c.LINE.ChannelSecret == "" {
		errs = append(errs, errors.New("CHANNEL_SECRET is required"))
	}
	if c.Generation.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.Session.Prefix == "" {
		errs = append(errs, errors.New("SESSION_PREFIX must not be empty"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL))
	}
	if c.Generation.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("GENERATION_TIMEOUT must be positive, got %s", c.Generation.Timeout))
	}
	if c.LINE.ReplyWindow <= 0 {
		errs = append(errs, fmt.Errorf("REPLY_WINDOW must be positive, got %s", c.LINE.ReplyWindow))
	}
	return errors.Join(errs...)
}
