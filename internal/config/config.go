package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/api/option"

	"opsconsole/internal/extraction"
	"opsconsole/internal/logger"
	"opsconsole/internal/resilience"
)

type Config struct {
	// Google Cloud Configuration
	GoogleProjectID            string
	GoogleLocation             string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string
	DocumentAITimeout          time.Duration
	GoogleCredentials          string // inline service account JSON
	GoogleCredentialsFile      string

	// OpenAI Configuration
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAITemperature float32
	OpenAIMaxRetries  int

	// Google Sheets Configuration
	GoogleSheetURL         string
	ProjectsWorksheet      string
	BeneficiariesWorksheet string
	ResultsWorksheet       string

	DatabaseURL string

	// Store resilience
	StoreRetryMaxAttempts    int
	StoreRetryInitialBackoff time.Duration
	StoreRetryMaxBackoff     time.Duration
	StoreBreakerEnabled      bool
	StoreBreakerOpenTimeout  time.Duration

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment. Values from a .env file
// are expected to be loaded into the environment beforehand.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{
		GoogleProjectID:            firstString(v, "GOOGLE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
		GoogleLocation:             firstString(v, "GOOGLE_LOCATION", "GOOGLE_CLOUD_LOCATION"),
		DocumentAIProcessorID:      firstString(v, "GOOGLE_PROCESSOR_ID", "DOCUMENT_AI_PROCESSOR_ID"),
		DocumentAIProcessorVersion: v.GetString("DOCUMENT_AI_PROCESSOR_VERSION"),
		DocumentAITimeout:          v.GetDuration("DOCUMENT_AI_TIMEOUT"),
		GoogleCredentials:          v.GetString("GOOGLE_CREDENTIALS"),
		GoogleCredentialsFile:      v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		OpenAIAPIKey:               v.GetString("OPENAI_API_KEY"),
		OpenAIModel:                v.GetString("OPENAI_MODEL"),
		OpenAITemperature:          float32(v.GetFloat64("OPENAI_TEMPERATURE")),
		OpenAIMaxRetries:           v.GetInt("OPENAI_MAX_RETRIES"),
		GoogleSheetURL:             v.GetString("GOOGLE_SHEET_URL"),
		ProjectsWorksheet:          v.GetString("SHEET_PROJECTS"),
		BeneficiariesWorksheet:     v.GetString("SHEET_BENEFICIARIES"),
		ResultsWorksheet:           v.GetString("SHEET_RESULTS"),
		DatabaseURL:                v.GetString("DATABASE_URL"),
		StoreRetryMaxAttempts:      v.GetInt("STORE_RETRY_MAX_ATTEMPTS"),
		StoreRetryInitialBackoff:   v.GetDuration("STORE_RETRY_INITIAL_BACKOFF"),
		StoreRetryMaxBackoff:       v.GetDuration("STORE_RETRY_MAX_BACKOFF"),
		StoreBreakerEnabled:        v.GetBool("STORE_BREAKER_ENABLED"),
		StoreBreakerOpenTimeout:    v.GetDuration("STORE_BREAKER_OPEN_TIMEOUT"),
		LogLevel:                   v.GetString("LOG_LEVEL"),
		LogFormat:                  v.GetString("LOG_FORMAT"),
		LogTimeFormat:              v.GetString("LOG_TIME_FORMAT"),
		LogOutput:                  v.GetString("LOG_OUTPUT"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GOOGLE_LOCATION", "us")
	v.SetDefault("DOCUMENT_AI_TIMEOUT", 60*time.Second)
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TEMPERATURE", 0.1)
	v.SetDefault("OPENAI_MAX_RETRIES", 3)
	v.SetDefault("SHEET_PROJECTS", "Projekte")
	v.SetDefault("SHEET_BENEFICIARIES", "Empfänger")
	v.SetDefault("SHEET_RESULTS", "Abgleich")

	store := resilience.DefaultConfig()
	v.SetDefault("STORE_RETRY_MAX_ATTEMPTS", store.RetryMaxAttempts)
	v.SetDefault("STORE_RETRY_INITIAL_BACKOFF", store.RetryInitialBackoff)
	v.SetDefault("STORE_RETRY_MAX_BACKOFF", store.RetryMaxBackoff)
	v.SetDefault("STORE_BREAKER_ENABLED", store.BreakerEnabled)
	v.SetDefault("STORE_BREAKER_OPEN_TIMEOUT", store.BreakerOpenTimeout)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_TIME_FORMAT", time.RFC3339)
	v.SetDefault("LOG_OUTPUT", "stderr")
}

// validate only rejects malformed values. Missing credentials are reported by
// the commands that need them.
func (c *Config) validate() error {
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2, got %v", c.OpenAITemperature)
	}
	if c.StoreRetryMaxAttempts < 1 {
		return fmt.Errorf("STORE_RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.StoreRetryMaxAttempts)
	}
	if c.DocumentAITimeout <= 0 {
		return fmt.Errorf("DOCUMENT_AI_TIMEOUT must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetDocumentAIConfig returns the Document AI processor settings.
func (c *Config) GetDocumentAIConfig() extraction.DocumentAIConfig {
	return extraction.DocumentAIConfig{
		ProjectID:        c.GoogleProjectID,
		Location:         c.GoogleLocation,
		ProcessorID:      c.DocumentAIProcessorID,
		ProcessorVersion: c.DocumentAIProcessorVersion,
		Timeout:          c.DocumentAITimeout,
	}
}

// GetCompletionConfig returns the OpenAI completion settings.
func (c *Config) GetCompletionConfig() extraction.CompletionConfig {
	config := extraction.DefaultCompletionConfig()
	config.Model = c.OpenAIModel
	config.Temperature = c.OpenAITemperature
	config.MaxRetries = c.OpenAIMaxRetries
	return config
}

// GetResilienceConfig returns the retry and breaker settings for store calls.
func (c *Config) GetResilienceConfig() resilience.Config {
	config := resilience.DefaultConfig()
	config.RetryMaxAttempts = c.StoreRetryMaxAttempts
	config.RetryInitialBackoff = c.StoreRetryInitialBackoff
	config.RetryMaxBackoff = c.StoreRetryMaxBackoff
	config.BreakerEnabled = c.StoreBreakerEnabled
	config.BreakerOpenTimeout = c.StoreBreakerOpenTimeout
	return config
}

// GoogleClientOptions returns the credential options for Google API clients.
// Without explicit credentials the client libraries use application default credentials.
func (c *Config) GoogleClientOptions() []option.ClientOption {
	switch {
	case c.GoogleCredentials != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.GoogleCredentials))}
	case c.GoogleCredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(c.GoogleCredentialsFile)}
	default:
		return nil
	}
}

func firstString(v *viper.Viper, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(v.GetString(key)); value != "" {
			return value
		}
	}
	return ""
}
