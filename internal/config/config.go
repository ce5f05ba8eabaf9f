package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewFromFile("")
}

// NewFromFile creates a configuration instance reading the given file, or the
// default search paths when file is empty
func NewFromFile(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/inbox-clusterer/")
		v.AddConfigPath("$HOME/.inbox-clusterer")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("INBOX_CLUSTERER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Clustering defaults
	v.SetDefault("clustering.k", 5)
	v.SetDefault("clustering.seed", 42)
	v.SetDefault("clustering.max_iterations", 300)
	v.SetDefault("clustering.runs", 10)
	v.SetDefault("clustering.remove_stopwords", false)
	v.SetDefault("clustering.workers", 4)

	// Vectorizer defaults
	v.SetDefault("vectorizer.max_df", 0.8)
	v.SetDefault("vectorizer.min_df", 2)
	v.SetDefault("vectorizer.max_features", 1000)

	// Summarizer defaults
	v.SetDefault("summarizer.provider", "extractive")
	v.SetDefault("summarizer.max_input_chars", 1024)
	v.SetDefault("summarizer.min_words", 25)
	v.SetDefault("summarizer.max_words", 100)
	v.SetDefault("summarizer.retry_attempts", 3)
	v.SetDefault("summarizer.retry_wait", "2s")
	v.SetDefault("summarizer.timeout", "60s")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 300)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("openai.top_p", 1.0)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 300)
	v.SetDefault("gemini.temperature", 0.0)
	v.SetDefault("gemini.top_p", 1.0)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 300)
	v.SetDefault("bedrock.temperature", 0.0)
	v.SetDefault("bedrock.top_p", 1.0)

	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model_name", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.max_tokens", 300)
	v.SetDefault("anthropic.temperature", 0.0)

	// Source defaults
	v.SetDefault("source.type", "file")
	v.SetDefault("source.max_emails", 50)
	v.SetDefault("source.exclude_domains", []string{})
	v.SetDefault("source.file.path", "data/emails.json")
	v.SetDefault("source.file.watch", false)
	v.SetDefault("source.imap.address", "imap.gmail.com:993")
	v.SetDefault("source.imap.username", "")
	v.SetDefault("source.imap.password", "")
	v.SetDefault("source.imap.mailbox", "INBOX")
	v.SetDefault("source.imap.oauth_token_file", "")
	v.SetDefault("source.imap.oauth_client_file", "")
	v.SetDefault("source.smtp.listen_address", "0.0.0.0:2525")
	v.SetDefault("source.smtp.domain", "localhost")
	v.SetDefault("source.smtp.buffer_size", 1000)

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.sqlite_path", "/data/inbox_clusters.db")
	v.SetDefault("storage.mysql_dsn", "user:password@tcp(localhost:3306)/inbox_clusterer?parseTime=true")
	v.SetDefault("storage.retention", "0s")
	v.SetDefault("storage.cleanup_frequency", "1h")

	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.session_ttl", "24h")

	// Schedule defaults
	v.SetDefault("schedule.cron", "")
	v.SetDefault("schedule.user_email", "")
	v.SetDefault("schedule.lookback", "24h")

	// Notification defaults
	v.SetDefault("notify.slack.token", "")
	v.SetDefault("notify.slack.channel", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
