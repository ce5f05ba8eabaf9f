package config

import (
	"fmt"
	"time"
)

// ClusteringConfig represents the clustering pipeline configuration
type ClusteringConfig struct {
	K               int
	Seed            int64
	MaxIterations   int
	Runs            int
	RemoveStopwords bool
	Workers         int
}

// VectorizerConfig represents the TF-IDF configuration
type VectorizerConfig struct {
	MaxDF       float64
	MinDF       int
	MaxFeatures int
}

// SummarizerConfig represents the summarization configuration
type SummarizerConfig struct {
	Provider      string
	MaxInputChars int
	MinWords      int
	MaxWords      int
	RetryAttempts int
	RetryWait     time.Duration
	Timeout       time.Duration
}

// ModelConfig represents the configuration of a hosted model provider
type ModelConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// SourceConfig represents the email source configuration
type SourceConfig struct {
	Type           string
	MaxEmails      int
	ExcludeDomains []string
	File           FileSourceConfig
	IMAP           IMAPSourceConfig
	SMTP           SMTPSourceConfig
}

// FileSourceConfig represents the JSON file source configuration
type FileSourceConfig struct {
	Path  string
	Watch bool
}

// IMAPSourceConfig represents the IMAP source configuration
type IMAPSourceConfig struct {
	Address         string
	Username        string
	Password        string
	Mailbox         string
	OAuthTokenFile  string
	OAuthClientFile string
}

// SMTPSourceConfig represents the SMTP intake configuration
type SMTPSourceConfig struct {
	ListenAddress string
	Domain        string
	BufferSize    int
}

// StorageConfig represents the persistence configuration
type StorageConfig struct {
	Type             string
	SQLitePath       string
	MySQLDSN         string
	Retention        time.Duration
	CleanupFrequency time.Duration
}

// ServerConfig represents the web server configuration
type ServerConfig struct {
	ListenAddress string
	SessionTTL    time.Duration
}

// ScheduleConfig represents the scheduled run configuration
type ScheduleConfig struct {
	Cron      string
	UserEmail string
	Lookback  time.Duration
}

// SlackConfig represents the Slack notification configuration
type SlackConfig struct {
	Token   string
	Channel string
}

// GetClustering returns the clustering configuration
func (c *Config) GetClustering() ClusteringConfig {
	return ClusteringConfig{
		K:               c.GetInt("clustering.k"),
		Seed:            c.GetInt64("clustering.seed"),
		MaxIterations:   c.GetInt("clustering.max_iterations"),
		Runs:            c.GetInt("clustering.runs"),
		RemoveStopwords: c.GetBool("clustering.remove_stopwords"),
		Workers:         c.GetInt("clustering.workers"),
	}
}

// GetVectorizer returns the vectorizer configuration
func (c *Config) GetVectorizer() VectorizerConfig {
	return VectorizerConfig{
		MaxDF:       c.GetFloat64("vectorizer.max_df"),
		MinDF:       c.GetInt("vectorizer.min_df"),
		MaxFeatures: c.GetInt("vectorizer.max_features"),
	}
}

// GetSummarizer returns the summarizer configuration
func (c *Config) GetSummarizer() (SummarizerConfig, error) {
	retryWait, err := c.GetDuration("summarizer.retry_wait")
	if err != nil {
		return SummarizerConfig{}, fmt.Errorf("invalid summarizer retry wait: %w", err)
	}
	timeout, err := c.GetDuration("summarizer.timeout")
	if err != nil {
		return SummarizerConfig{}, fmt.Errorf("invalid summarizer timeout: %w", err)
	}
	minWords := c.GetInt("summarizer.min_words")
	maxWords := c.GetInt("summarizer.max_words")
	if minWords > maxWords {
		return SummarizerConfig{}, fmt.Errorf("summarizer min words (%d) exceeds max words (%d)", minWords, maxWords)
	}
	return SummarizerConfig{
		Provider:      c.GetString("summarizer.provider"),
		MaxInputChars: c.GetInt("summarizer.max_input_chars"),
		MinWords:      minWords,
		MaxWords:      maxWords,
		RetryAttempts: c.GetInt("summarizer.retry_attempts"),
		RetryWait:     retryWait,
		Timeout:       timeout,
	}, nil
}

// GetModel returns the configuration of a hosted model provider (openai, gemini, anthropic)
func (c *Config) GetModel(provider string) ModelConfig {
	return ModelConfig{
		APIKey:      c.GetString(provider + ".api_key"),
		ModelName:   c.GetString(provider + ".model_name"),
		MaxTokens:   c.GetInt(provider + ".max_tokens"),
		Temperature: float32(c.GetFloat64(provider + ".temperature")),
		TopP:        float32(c.GetFloat64(provider + ".top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() ModelConfig {
	return c.GetModel("openai")
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() ModelConfig {
	return c.GetModel("gemini")
}

// GetAnthropic returns the Anthropic configuration
func (c *Config) GetAnthropic() ModelConfig {
	return c.GetModel("anthropic")
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetSource returns the email source configuration
func (c *Config) GetSource() SourceConfig {
	return SourceConfig{
		Type:           c.GetString("source.type"),
		MaxEmails:      c.GetInt("source.max_emails"),
		ExcludeDomains: c.GetStringSlice("source.exclude_domains"),
		File: FileSourceConfig{
			Path:  c.GetString("source.file.path"),
			Watch: c.GetBool("source.file.watch"),
		},
		IMAP: IMAPSourceConfig{
			Address:         c.GetString("source.imap.address"),
			Username:        c.GetString("source.imap.username"),
			Password:        c.GetString("source.imap.password"),
			Mailbox:         c.GetString("source.imap.mailbox"),
			OAuthTokenFile:  c.GetString("source.imap.oauth_token_file"),
			OAuthClientFile: c.GetString("source.imap.oauth_client_file"),
		},
		SMTP: SMTPSourceConfig{
			ListenAddress: c.GetString("source.smtp.listen_address"),
			Domain:        c.GetString("source.smtp.domain"),
			BufferSize:    c.GetInt("source.smtp.buffer_size"),
		},
	}
}

// GetStorage returns the storage configuration
func (c *Config) GetStorage() (StorageConfig, error) {
	retention, err := c.GetDuration("storage.retention")
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid storage retention: %w", err)
	}
	cleanupFreq, err := c.GetDuration("storage.cleanup_frequency")
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid storage cleanup frequency: %w", err)
	}
	return StorageConfig{
		Type:             c.GetString("storage.type"),
		SQLitePath:       c.GetString("storage.sqlite_path"),
		MySQLDSN:         c.GetString("storage.mysql_dsn"),
		Retention:        retention,
		CleanupFrequency: cleanupFreq,
	}, nil
}

// GetServer returns the web server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	ttl, err := c.GetDuration("server.session_ttl")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid session ttl: %w", err)
	}
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		SessionTTL:    ttl,
	}, nil
}

// GetSchedule returns the scheduled run configuration
func (c *Config) GetSchedule() (ScheduleConfig, error) {
	lookback, err := c.GetDuration("schedule.lookback")
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("invalid schedule lookback: %w", err)
	}
	return ScheduleConfig{
		Cron:      c.GetString("schedule.cron"),
		UserEmail: c.GetString("schedule.user_email"),
		Lookback:  lookback,
	}, nil
}

// GetSlack returns the Slack notification configuration
func (c *Config) GetSlack() SlackConfig {
	return SlackConfig{
		Token:   c.GetString("notify.slack.token"),
		Channel: c.GetString("notify.slack.channel"),
	}
}
