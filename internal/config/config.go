package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrMissingAPIKey   = errors.New("missing api key")
)

type Config struct {
	Port            string
	Provider        string
	Profile         string
	UpstreamTimeout time.Duration
	APIVersion      string
	MetricsAddr     string

	Gemini GeminiConfig
	OpenAI OpenAIConfig
	Log    LogConfig
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // opcional; vacío => api.openai.com
}

type LogConfig struct {
	Level  string
	Format string
	App    string
}

// Load lee .env (si existe) y luego variables de entorno.
// Las variables ya presentes en el proceso tienen prioridad sobre el archivo.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %q: %w", envFile, err)
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("llm_provider", ProviderGemini)
	v.SetDefault("analysis_profile", "brief")
	v.SetDefault("upstream_timeout", "30s")
	v.SetDefault("api_version", "1.0.2")
	v.SetDefault("metrics_addr", "")

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-1.5-flash-latest")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com")

	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_base_url", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("app_name", "vet-notes-ai")
}

// FromViper arma Config desde una instancia ya poblada (env, Set en tests, etc).
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:            strings.TrimSpace(v.GetString("port")),
		Provider:        strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
		Profile:         strings.ToLower(strings.TrimSpace(v.GetString("analysis_profile"))),
		UpstreamTimeout: v.GetDuration("upstream_timeout"),
		APIVersion:      strings.TrimSpace(v.GetString("api_version")),
		MetricsAddr:     strings.TrimSpace(v.GetString("metrics_addr")),
		Gemini: GeminiConfig{
			APIKey:  strings.TrimSpace(v.GetString("gemini_api_key")),
			Model:   strings.TrimSpace(v.GetString("gemini_model")),
			BaseURL: strings.TrimSpace(v.GetString("gemini_base_url")),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(v.GetString("openai_api_key")),
			Model:   strings.TrimSpace(v.GetString("openai_model")),
			BaseURL: strings.TrimSpace(v.GetString("openai_base_url")),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
			App:    v.GetString("app_name"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("upstream_timeout must be positive")
	}
	return nil
}

// Addr devuelve la dirección de escucha (":PORT").
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}
