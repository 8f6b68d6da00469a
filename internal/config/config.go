package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Render   RenderConfig   `mapstructure:"render"   validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains the provider selection and per-provider credentials.
// Exactly one provider is active, chosen at startup; missing credentials for
// the selected provider put the client in offline fallback mode rather than
// failing startup.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=openai nvidia gemini"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`

	NvidiaAPIKey  string `mapstructure:"nvidia_api_key"`
	NvidiaModel   string `mapstructure:"nvidia_model"`
	NvidiaBaseURL string `mapstructure:"nvidia_base_url"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	MaxTokens         int `mapstructure:"max_tokens"          validate:"required,gt=0,lte=4096"`
	MaxPromptLength   int `mapstructure:"max_prompt_length"   validate:"required,gt=0,lte=10000"`
	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
	TimeoutSeconds    int `mapstructure:"timeout_seconds"     validate:"gt=0,lte=300"`
}

// RenderConfig contains the render backend endpoints and limits.
type RenderConfig struct {
	PlantUMLServerURL      string `mapstructure:"plantuml_server_url"      validate:"required,url"`
	MermaidInkURL          string `mapstructure:"mermaid_ink_url"          validate:"required,url"`
	GraphvizTimeoutSeconds int    `mapstructure:"graphviz_timeout_seconds" validate:"gt=0,lte=300"`
	MermaidTimeoutSeconds  int    `mapstructure:"mermaid_timeout_seconds"  validate:"gt=0,lte=300"`
	PlantUMLTimeoutSeconds int    `mapstructure:"plantuml_timeout_seconds" validate:"gt=0,lte=600"`
	MaxSourceLength        int    `mapstructure:"max_source_length"        validate:"required,gt=0,lte=100000"`
}

// CacheConfig controls fingerprint-based artifact caching.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TaskConfig controls the background retention sweeper.
type TaskConfig struct {
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gte=0,lte=1440"`
	DiagramRetentionDays int `mapstructure:"diagram_retention_days" validate:"gte=0,lte=3650"`
	LogRetentionDays     int `mapstructure:"log_retention_days"     validate:"gte=0,lte=3650"`
}
