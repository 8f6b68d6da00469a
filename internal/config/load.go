package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// DIAGRAMGPT_SERVER_PORT or DIAGRAMGPT_LLM_OPENAI_API_KEY.
const envPrefix = "DIAGRAMGPT"

// Load reads configuration from an optional config file and environment
// variables. Environment variables take precedence over values from the
// config file, which takes precedence over defaults.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Keys without a meaningful default still need to be registered so that
	// AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("database.url", "")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.nvidia_api_key", "")
	v.SetDefault("llm.nvidia_model", "meta/llama-3.1-70b-instruct")
	v.SetDefault("llm.nvidia_base_url", "https://integrate.api.nvidia.com/v1")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.max_prompt_length", 2000)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 1)
	v.SetDefault("llm.timeout_seconds", 30)

	v.SetDefault("render.plantuml_server_url", "https://www.plantuml.com/plantuml")
	v.SetDefault("render.mermaid_ink_url", "https://mermaid.ink")
	v.SetDefault("render.graphviz_timeout_seconds", 30)
	v.SetDefault("render.mermaid_timeout_seconds", 30)
	v.SetDefault("render.plantuml_timeout_seconds", 60)
	v.SetDefault("render.max_source_length", 50000)

	v.SetDefault("cache.enabled", true)

	v.SetDefault("task.sweep_interval_minutes", 60)
	v.SetDefault("task.diagram_retention_days", 30)
	v.SetDefault("task.log_retention_days", 90)
}
