package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting for the API server and the chat relay.
// Values come from the process environment, optionally seeded from a .env file.
type Config struct {
	// Server
	Port        string `envconfig:"PORT" default:"8000"`
	RelayPort   string `envconfig:"RELAY_PORT" default:"8080"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"*"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// AWS (credentials are resolved by the SDK default chain)
	AWSRegion         string        `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSConnectTimeout time.Duration `envconfig:"AWS_CONNECT_TIMEOUT" default:"2s"`

	// LLM
	LLMProvider    string        `envconfig:"LLM_PROVIDER" default:"bedrock"`
	BedrockModelID string        `envconfig:"BEDROCK_MODEL_ID" default:"anthropic.claude-3-haiku-20240307-v1:0"`
	OpenAIAPIKey   string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel    string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	LLMTimeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"15s"`

	// Guardrails
	GuardrailID      string        `envconfig:"BEDROCK_GUARDRAIL_ID"`
	GuardrailVersion string        `envconfig:"BEDROCK_GUARDRAIL_VERSION" default:"DRAFT"`
	GuardrailTimeout time.Duration `envconfig:"GUARDRAIL_TIMEOUT" default:"3s"`

	// Translation / transcription
	TranslateTimeout      time.Duration `envconfig:"TRANSLATE_TIMEOUT" default:"5s"`
	LibreTranslateURL     string        `envconfig:"LIBRETRANSLATE_URL"`
	LibreTranslateAPIKey  string        `envconfig:"LIBRETRANSLATE_API_KEY"`
	TranscribeBucket      string        `envconfig:"TRANSCRIBE_BUCKET"`
	TranscribePollTimeout time.Duration `envconfig:"TRANSCRIBE_POLL_TIMEOUT" default:"30s"`

	// Storage
	StoreDriver             string `envconfig:"STORE_DRIVER" default:"dynamodb"`
	MongoURI                string `envconfig:"MONGODB_URI"`
	MongoDatabase           string `envconfig:"DB_NAME" default:"culturechat"`
	DynamoChatsTable        string `envconfig:"DYNAMO_CHATS_TABLE" default:"Chats"`
	DynamoMessagesTable     string `envconfig:"DYNAMO_MESSAGES_TABLE" default:"Messages"`
	DynamoUsersTable        string `envconfig:"DYNAMO_USERS_TABLE" default:"Users"`
	DynamoChatRequestsTable string `envconfig:"DYNAMO_CHAT_REQUESTS_TABLE" default:"ChatRequests"`

	// Analysis cache and retry policy
	AnalysisCacheTTL  time.Duration `envconfig:"ANALYSIS_CACHE_TTL" default:"5m"`
	AnalysisCacheSize int           `envconfig:"ANALYSIS_CACHE_SIZE" default:"100"`
	RetryMax          int           `envconfig:"RETRY_MAX" default:"2"`
	RetryBaseDelay    time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
}

// IsProduction reports whether APP_ENV is production. Stack traces and the
// startup banner are off in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GuardrailConfigured reports whether the managed guardrail can be called.
func (c *Config) GuardrailConfigured() bool {
	return strings.TrimSpace(c.GuardrailID) != ""
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.LLMProvider {
	case "bedrock":
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of: bedrock, openai (got: %s)", c.LLMProvider))
	}

	switch c.StoreDriver {
	case "dynamodb", "memory":
	case "mongo":
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_DRIVER=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of: dynamodb, mongo, memory (got: %s)", c.StoreDriver))
	}

	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Environment))
	}

	if c.AnalysisCacheSize < 1 {
		errs = append(errs, errors.New("ANALYSIS_CACHE_SIZE must be positive"))
	}
	if c.RetryMax < 0 {
		errs = append(errs, errors.New("RETRY_MAX must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}
	return nil
}

