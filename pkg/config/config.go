package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// DefaultSuggestedQuestions are offered in the sidebar when none are configured
var DefaultSuggestedQuestions = []string{
	"Where can I find vegan pizza?",
	"Where can I find Pad Thai?",
	"How to make Pizza?",
	"Where can I get Pizza with Pineapple?",
}

// Config represents the application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	UI        UIConfig        `mapstructure:"ui"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// APIConfig holds the chat backend connection settings
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"-"`
	TimeoutStr string        `mapstructure:"timeout"` // For parsing string duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile     string `mapstructure:"log_file"`
	HistoryFile string `mapstructure:"history_file"`
	Preserve    bool   `mapstructure:"preserve"`
	Level       string `mapstructure:"level"`
}

// UIConfig holds terminal UI settings
type UIConfig struct {
	MarkdownStyle      string   `mapstructure:"markdown_style"`
	Sidebar            bool     `mapstructure:"sidebar"`
	SuggestedQuestions []string `mapstructure:"suggested_questions"`
}

// DevServerConfig holds settings for the local development backend
type DevServerConfig struct {
	Addr               string          `mapstructure:"addr"`
	LLM                LLMConfig       `mapstructure:"llm"`
	Embedder           EmbedderConfig  `mapstructure:"embedder"`
	TopK               int             `mapstructure:"top_k"`
	RelevanceThreshold float32         `mapstructure:"relevance_threshold"`
	HistoryWindow      int             `mapstructure:"history_window"`
	FeedbackFile       string          `mapstructure:"feedback_file"`
	RateLimit          RateLimitConfig `mapstructure:"rate_limit"`
}

// LLMConfig selects the model used by the development backend
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // fake, ollama
	Model    string `mapstructure:"model"`
	URL      string `mapstructure:"url"`
}

// EmbedderConfig selects the embedding function for source retrieval
type EmbedderConfig struct {
	Provider string `mapstructure:"provider"` // hash, ollama
	Model    string `mapstructure:"model"`
	URL      string `mapstructure:"url"`
}

// RateLimitConfig bounds request throughput on the development backend
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// IsLoaded reports whether Load has completed successfully
func IsLoaded() bool {
	return cfg != nil
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.menudata")
		viper.AddConfigPath(filepath.Join(xdgConfigHome, ".menudata"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("MENUDATA")
	viper.AutomaticEnv()
	bindEnvironmentVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing settings file is fine, a broken one is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := processDurations(loaded); err != nil {
		return nil, fmt.Errorf("failed to process durations: %w", err)
	}

	if len(loaded.UI.SuggestedQuestions) == 0 {
		loaded.UI.SuggestedQuestions = append([]string(nil), DefaultSuggestedQuestions...)
	}

	cfg = loaded
	return cfg, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	// The original front-end proxied /api to this address
	viper.SetDefault("api.base_url", "http://127.0.0.1:8000/api")
	viper.SetDefault("api.timeout", "90s")

	viper.SetDefault("logging.log_file", "./.menudata/system.log")
	viper.SetDefault("logging.history_file", "./.menudata/chat.history")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("ui.markdown_style", "dark")
	viper.SetDefault("ui.sidebar", true)

	viper.SetDefault("devserver.addr", "127.0.0.1:8000")
	viper.SetDefault("devserver.llm.provider", "fake")
	viper.SetDefault("devserver.llm.model", "mistral")
	viper.SetDefault("devserver.llm.url", "http://localhost:11434")
	viper.SetDefault("devserver.embedder.provider", "hash")
	viper.SetDefault("devserver.embedder.model", "nomic-embed-text")
	viper.SetDefault("devserver.embedder.url", "http://localhost:11434")
	viper.SetDefault("devserver.top_k", 3)
	viper.SetDefault("devserver.relevance_threshold", 0.5)
	viper.SetDefault("devserver.history_window", 5)
	viper.SetDefault("devserver.feedback_file", "./.menudata/feedback.json")
	viper.SetDefault("devserver.rate_limit.rps", 5)
	viper.SetDefault("devserver.rate_limit.burst", 10)
}

// bindEnvironmentVariables binds specific environment variables to Viper keys
func bindEnvironmentVariables() {
	viper.BindEnv("api.base_url", "MENUDATA_API_URL")
	viper.BindEnv("api.timeout", "MENUDATA_API_TIMEOUT")
	viper.BindEnv("logging.log_file", "MENUDATA_LOG_FILE")
	viper.BindEnv("logging.level", "MENUDATA_LOG_LEVEL")
	viper.BindEnv("logging.preserve", "MENUDATA_LOG_PRESERVE")
	viper.BindEnv("ui.markdown_style", "MENUDATA_MARKDOWN_STYLE")
	viper.BindEnv("devserver.addr", "MENUDATA_DEVSERVER_ADDR")
	viper.BindEnv("devserver.llm.provider", "MENUDATA_LLM_PROVIDER")
	viper.BindEnv("devserver.llm.model", "MENUDATA_LLM_MODEL")
	viper.BindEnv("devserver.llm.url", "MENUDATA_LLM_URL")
	viper.BindEnv("devserver.embedder.provider", "MENUDATA_EMBEDDER_PROVIDER")
	viper.BindEnv("devserver.feedback_file", "MENUDATA_FEEDBACK_FILE")
}

// processDurations converts string durations to time.Duration
func processDurations(cfg *Config) error {
	if cfg.API.TimeoutStr != "" {
		d, err := time.ParseDuration(cfg.API.TimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid api.timeout: %w", err)
		}
		cfg.API.Timeout = d
	} else if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 90 * time.Second
	}

	return nil
}

// GetConfigFileUsed returns the path to the config file being used
func GetConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
