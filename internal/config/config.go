// Package config loads runtime settings from an optional YAML file, a .env
// file and BANKTALK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to upper-cased keys to form environment variable names.
const EnvPrefix = "BANKTALK_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds every runtime setting.
type Config struct {
	LogLevel    string   `mapstructure:"log_level"`
	HTTPAddr    string   `mapstructure:"http_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	Store         string        `mapstructure:"store"`
	StoreDir      string        `mapstructure:"store_dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`

	// EncryptionKey is a base64 AES-256 key; when set, stored states are sealed.
	EncryptionKey          string   `mapstructure:"encryption_key"`
	EncryptionFallbackKeys []string `mapstructure:"encryption_fallback_keys"`

	LLMBaseURL string        `mapstructure:"llm_base_url"`
	LLMAPIKey  string        `mapstructure:"llm_api_key"`
	LLMModel   string        `mapstructure:"llm_model"`
	LLMTimeout time.Duration `mapstructure:"llm_timeout"`

	CorpusPath   string `mapstructure:"corpus_path"`
	IndexPath    string `mapstructure:"index_path"`
	RAGTopK      int    `mapstructure:"rag_top_k"`
	RAGCacheSize int    `mapstructure:"rag_cache_size"`

	KeepCompletedOnReset bool `mapstructure:"keep_completed_on_reset"`
	MaxInputSize         int  `mapstructure:"max_input_size"`
}

// Defaults returns the built-in settings as raw values.
func Defaults() map[string]any {
	return map[string]any{
		"log_level":                "info",
		"http_addr":                ":8080",
		"cors_origins":             []string{"*"},
		"store":                    StoreMemory,
		"store_dir":                ".banktalk/sessions",
		"redis_addr":               "localhost:6379",
		"redis_password":           "",
		"redis_db":                 0,
		"redis_prefix":             "banktalk:session:",
		"session_ttl":              "0s",
		"lock_ttl":                 "30s",
		"encryption_key":           "",
		"encryption_fallback_keys": []string{},
		"llm_base_url":             "",
		"llm_api_key":              "",
		"llm_model":                "gpt-4o-mini",
		"llm_timeout":              "30s",
		"corpus_path":              "",
		"index_path":               "",
		"rag_top_k":                4,
		"rag_cache_size":           256,
		"keep_completed_on_reset":  false,
		"max_input_size":           4096,
	}
}

// Load builds the configuration. path may be empty. A missing .env file in the
// working directory is not an error; existing environment variables win over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	raw := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		for k, v := range file {
			raw[k] = v
		}
	}

	for _, key := range Keys() {
		if v, ok := os.LookupEnv(EnvName(key)); ok {
			raw[key] = v
		}
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Keys lists every recognised key in sorted order.
func Keys() []string {
	defaults := Defaults()
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvName maps a key to its environment variable, e.g. http_addr -> BANKTALK_HTTP_ADDR.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid configuration: unknown store %q (want memory, file or redis)", c.Store)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid configuration: unknown log_level %q", c.LogLevel)
	}
	if c.RAGTopK <= 0 {
		return fmt.Errorf("invalid configuration: rag_top_k must be positive, got %d", c.RAGTopK)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("invalid configuration: max_input_size must be positive, got %d", c.MaxInputSize)
	}
	if c.SessionTTL < 0 || c.LockTTL < 0 || c.LLMTimeout < 0 {
		return errors.New("invalid configuration: durations must not be negative")
	}
	return nil
}
