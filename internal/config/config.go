// Package config loads chatmon settings.
//
// Precedence, lowest first: built-in defaults, .chatmon/config.yaml,
// a .env file in the project root, then CHATMON_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/corey/chatmon/internal/logger"
)

// Defaults
const (
	DefaultHTTPAddr       = "127.0.0.1:7420"
	DefaultTypingDelay    = 1100 * time.Millisecond
	DefaultBotName        = "Insta Mon"
	DefaultDatasetTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
)

// Environment variables
const (
	EnvDataset        = "CHATMON_DATASET"
	EnvLogLevel       = "CHATMON_LOG_LEVEL"
	EnvLogFile        = "CHATMON_LOG_FILE"
	EnvHTTPAddr       = "CHATMON_HTTP_ADDR"
	EnvScoreThreshold = "CHATMON_SCORE_THRESHOLD"
	EnvMinTokenLength = "CHATMON_MIN_TOKEN_LENGTH"
	EnvTypingDelay    = "CHATMON_TYPING_DELAY"
	EnvStats          = "CHATMON_STATS"
)

// Config is the full settings tree.
type Config struct {
	// Dataset is a file path or http(s) URL; empty uses the bundled corpus.
	Dataset        string        `yaml:"dataset"`
	DatasetTimeout time.Duration `yaml:"dataset_timeout"`

	// Watch reloads a file dataset when it changes on disk.
	Watch bool `yaml:"watch"`

	// Stats records lookup outcomes in the bbolt store.
	Stats bool `yaml:"stats"`

	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Resolver ResolverConfig `yaml:"resolver"`
	Chat     ChatConfig     `yaml:"chat"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // relative paths resolve against the project root
}

// HTTPConfig configures the daemon's HTTP API.
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ResolverConfig maps onto resolver.Options. Zero values select the
// resolver's own defaults.
type ResolverConfig struct {
	ScoreThreshold  int      `yaml:"score_threshold"`
	MinTokenLength  int      `yaml:"min_token_length"`
	SuggestionLimit int      `yaml:"suggestion_limit"`
	Greetings       []string `yaml:"greetings"`
	GreetingReply   string   `yaml:"greeting_reply"`
	FallbackReply   string   `yaml:"fallback_reply"`
}

// ChatConfig configures the interactive session.
type ChatConfig struct {
	BotName     string        `yaml:"bot_name"`
	TypingDelay time.Duration `yaml:"typing_delay"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DatasetTimeout: DefaultDatasetTimeout,
		Watch:          true,
		Stats:          true,
		Log:            LogConfig{Level: DefaultLogLevel},
		HTTP:           HTTPConfig{Enabled: true, Addr: DefaultHTTPAddr},
		Chat:           ChatConfig{BotName: DefaultBotName, TypingDelay: DefaultTypingDelay},
	}
}

// Load resolves settings for projectRoot. configPath may be empty, in which
// case .chatmon/config.yaml under projectRoot is used if present.
func Load(projectRoot, configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = filepath.Join(projectRoot, ".chatmon", "config.yaml")
	}
	if err := cfg.readFile(configPath); err != nil {
		return nil, err
	}

	// .env never overrides variables already set in the environment.
	envFile := filepath.Join(projectRoot, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.resolvePaths(projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile merges a YAML file into cfg. A missing file is not an error.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvDataset); ok {
		c.Dataset = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v, ok := os.LookupEnv(EnvScoreThreshold); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvScoreThreshold, err)
		}
		c.Resolver.ScoreThreshold = n
	}
	if v, ok := os.LookupEnv(EnvMinTokenLength); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMinTokenLength, err)
		}
		c.Resolver.MinTokenLength = n
	}
	if v, ok := os.LookupEnv(EnvStats); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStats, err)
		}
		c.Stats = b
	}
	if v, ok := os.LookupEnv(EnvTypingDelay); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTypingDelay, err)
		}
		c.Chat.TypingDelay = d
	}
	return nil
}

// resolvePaths anchors relative file paths at projectRoot. URLs and the
// empty dataset are left alone.
func (c *Config) resolvePaths(projectRoot string) {
	if c.Dataset != "" && !isURL(c.Dataset) && !filepath.IsAbs(c.Dataset) {
		c.Dataset = filepath.Join(projectRoot, c.Dataset)
	}
	if c.Log.File != "" && !filepath.IsAbs(c.Log.File) {
		c.Log.File = filepath.Join(projectRoot, c.Log.File)
	}
}

// Validate rejects settings no component can honor.
func (c *Config) Validate() error {
	if c.Resolver.ScoreThreshold < 0 {
		return fmt.Errorf("resolver.score_threshold must be >= 0, got %d", c.Resolver.ScoreThreshold)
	}
	if c.Resolver.MinTokenLength < 0 {
		return fmt.Errorf("resolver.min_token_length must be >= 0, got %d", c.Resolver.MinTokenLength)
	}
	if c.Resolver.SuggestionLimit < 0 {
		return fmt.Errorf("resolver.suggestion_limit must be >= 0, got %d", c.Resolver.SuggestionLimit)
	}
	if c.Chat.TypingDelay < 0 {
		return fmt.Errorf("chat.typing_delay must be >= 0, got %s", c.Chat.TypingDelay)
	}
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// Marshal renders cfg as YAML, for `chatmon config`.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// IsFileDataset reports whether the dataset is a local file, i.e. watchable.
func (c *Config) IsFileDataset() bool {
	return c.Dataset != "" && !isURL(c.Dataset)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
