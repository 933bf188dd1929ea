package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level cardwatch.yaml configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Scorer    ScorerConfig    `yaml:"scorer"`
	Explainer ExplainerConfig `yaml:"explainer"`
	Review    ReviewConfig    `yaml:"review"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
}

// DataConfig locates the transaction source.
type DataConfig struct {
	Transactions string `yaml:"transactions"`
	Format       string `yaml:"format"` // importer format name, e.g. "kaggle"
}

// ScorerConfig points at the fraud-scoring endpoint.
type ScorerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Explainer providers.
const (
	ProviderTemplate = "template"
	ProviderChat     = "chat"
	ProviderGemini   = "gemini"
)

// ExplainerConfig selects the LLM that explains ambiguous scores.
type ExplainerConfig struct {
	Provider  string        `yaml:"provider"`
	URL       string        `yaml:"url,omitempty"` // chat provider only
	Model     string        `yaml:"model,omitempty"`
	APIKeyEnv string        `yaml:"api_key_env,omitempty"`
	Timeout   time.Duration `yaml:"timeout"`

	// APIKey is resolved from APIKeyEnv at load time and never written out.
	APIKey string `yaml:"-"`
}

// ReviewConfig controls the decision flow.
type ReviewConfig struct {
	EscalateWhen string `yaml:"escalate_when"` // govaluate expression
	LogDir       string `yaml:"log_dir"`
}

// CacheConfig enables the explanation cache. Empty RedisAddr disables it.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr,omitempty"`
	TTL       time.Duration `yaml:"ttl"`
}

// ServerConfig controls the dashboard server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Environment variables that override file settings.
const (
	EnvScorerURL       = "CARDWATCH_SCORER_URL"
	EnvExplainerAPIKey = "CARDWATCH_EXPLAINER_API_KEY"
	EnvRedisAddr       = "CARDWATCH_REDIS_ADDR"
	EnvServerAddr      = "CARDWATCH_SERVER_ADDR"
)

// Load reads a cardwatch.yaml file from disk, fills unset fields from
// Default and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Transactions: "data/transactions.csv",
			Format:       "kaggle",
		},
		Scorer: ScorerConfig{
			URL:     "http://localhost:81/predict",
			Timeout: 10 * time.Second,
		},
		Explainer: ExplainerConfig{
			Provider: ProviderTemplate,
			Timeout:  30 * time.Second,
		},
		Review: ReviewConfig{
			EscalateWhen: "probability >= 0.3 && probability <= 0.7",
			LogDir:       "logs",
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Validate checks fields that have no usable zero value.
func (c *Config) Validate() error {
	if c.Scorer.URL == "" {
		return errors.New("config: scorer.url is required")
	}
	switch c.Explainer.Provider {
	case ProviderTemplate:
	case ProviderChat:
		if c.Explainer.URL == "" || c.Explainer.Model == "" {
			return errors.New("config: explainer.url and explainer.model are required for the chat provider")
		}
	case ProviderGemini:
		if c.Explainer.Model == "" {
			return errors.New("config: explainer.model is required for the gemini provider")
		}
	default:
		return fmt.Errorf("config: unknown explainer provider %q", c.Explainer.Provider)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := getEnv(EnvScorerURL); v != "" {
		c.Scorer.URL = v
	}
	if v := getEnv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := getEnv(EnvServerAddr); v != "" {
		c.Server.Addr = v
	}
	c.Explainer.APIKey = getEnv(EnvExplainerAPIKey)
	if c.Explainer.APIKey == "" && c.Explainer.APIKeyEnv != "" {
		c.Explainer.APIKey = getEnv(c.Explainer.APIKeyEnv)
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
