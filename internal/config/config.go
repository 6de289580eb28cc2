package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/eyecrackcodes/agentsummary/internal/analytics"
)

// envPrefix namespaces the environment overrides, e.g.
// AGENTSUMMARY_SERVER_PORT=9090.
const envPrefix = "AGENTSUMMARY"

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"gt=0"`

	// MaxUploadBytes caps the multipart dataset upload size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
}

// SecurityConfig contains CORS and rate limiting configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout stderr"`

	// AddSource includes source file positions in log records.
	AddSource bool `yaml:"add_source" envconfig:"ADD_SOURCE"`
}

// WebSocketConfig contains refresh-channel configuration.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" validate:"gt=0"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" validate:"gt=0"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" validate:"gt=0"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" validate:"gt=0"`
	WriteWait       time.Duration `yaml:"write_wait" envconfig:"WRITE_WAIT" validate:"gt=0"`
	SendBufferSize  int           `yaml:"send_buffer_size" envconfig:"SEND_BUFFER_SIZE" validate:"gt=0"`
}

// AnalyticsConfig carries the pipeline thresholds and scales. Zero slices
// fall back to the pipeline defaults so a partial YAML block stays valid.
type AnalyticsConfig struct {
	MinTotalQuotes float64 `yaml:"min_total_quotes" envconfig:"MIN_TOTAL_QUOTES"`
	MinSubmissions float64 `yaml:"min_submissions" envconfig:"MIN_SUBMISSIONS"`
	MinWeeksActive int     `yaml:"min_weeks_active" envconfig:"MIN_WEEKS_ACTIVE"`

	QualityTierEdges  []float64 `yaml:"quality_tier_edges" envconfig:"QUALITY_TIER_EDGES"`
	QualityTierLabels []string  `yaml:"quality_tier_labels" envconfig:"QUALITY_TIER_LABELS"`
	RiskProfileEdges  []float64 `yaml:"risk_profile_edges" envconfig:"RISK_PROFILE_EDGES"`
	RiskProfileLabels []string  `yaml:"risk_profile_labels" envconfig:"RISK_PROFILE_LABELS"`

	MediumRiskScore   int `yaml:"medium_risk_score" envconfig:"MEDIUM_RISK_SCORE"`
	HighRiskScore     int `yaml:"high_risk_score" envconfig:"HIGH_RISK_SCORE"`
	TopPerformerLimit int `yaml:"top_performer_limit" envconfig:"TOP_PERFORMER_LIMIT"`
}

// Pipeline converts the block into the analytics package's configuration,
// substituting pipeline defaults for unset scale fields.
func (a AnalyticsConfig) Pipeline() analytics.Config {
	cfg := analytics.Config{
		MinTotalQuotes:    a.MinTotalQuotes,
		MinSubmissions:    a.MinSubmissions,
		MinWeeksActive:    a.MinWeeksActive,
		QualityTierEdges:  a.QualityTierEdges,
		QualityTierLabels: a.QualityTierLabels,
		RiskProfileEdges:  a.RiskProfileEdges,
		RiskProfileLabels: a.RiskProfileLabels,
		MediumRiskScore:   a.MediumRiskScore,
		HighRiskScore:     a.HighRiskScore,
		TopPerformerLimit: a.TopPerformerLimit,
	}

	defaults := analytics.DefaultConfig()
	if len(cfg.QualityTierEdges) == 0 {
		cfg.QualityTierEdges = defaults.QualityTierEdges
	}
	if len(cfg.QualityTierLabels) == 0 {
		cfg.QualityTierLabels = defaults.QualityTierLabels
	}
	if len(cfg.RiskProfileEdges) == 0 {
		cfg.RiskProfileEdges = defaults.RiskProfileEdges
	}
	if len(cfg.RiskProfileLabels) == 0 {
		cfg.RiskProfileLabels = defaults.RiskProfileLabels
	}
	return cfg
}

// Default returns the compiled-in configuration.
func Default() *Config {
	pipeline := analytics.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxHeaderBytes:  1 << 20,
			MaxUploadBytes:  32 << 20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     10,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Output:    "stdout",
			AddSource: false,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
			WriteWait:       10 * time.Second,
			SendBufferSize:  64,
		},
		Analytics: AnalyticsConfig{
			MinTotalQuotes:    pipeline.MinTotalQuotes,
			MinSubmissions:    pipeline.MinSubmissions,
			MinWeeksActive:    pipeline.MinWeeksActive,
			QualityTierEdges:  pipeline.QualityTierEdges,
			QualityTierLabels: pipeline.QualityTierLabels,
			RiskProfileEdges:  pipeline.RiskProfileEdges,
			RiskProfileLabels: pipeline.RiskProfileLabels,
			MediumRiskScore:   pipeline.MediumRiskScore,
			HighRiskScore:     pipeline.HighRiskScore,
			TopPerformerLimit: pipeline.TopPerformerLimit,
		},
	}
}

// Load assembles the configuration: defaults, then the YAML file (the first
// of path, ./config.yaml, ./configs/config.yaml that exists; path empty
// skips the explicit file), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := resolveConfigFile(path)
	if file != "" {
		if err := loadFromFile(file, cfg); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", file, err)
		}
	} else if path != "" {
		return nil, fmt.Errorf("config file %q not found", path)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints and the analytics cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if err := c.Analytics.Pipeline().Validate(); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	if c.WebSocket.PongWait <= c.WebSocket.PingPeriod {
		return fmt.Errorf("websocket pong_wait (%s) must exceed ping_period (%s)",
			c.WebSocket.PongWait, c.WebSocket.PingPeriod)
	}
	return nil
}

func resolveConfigFile(path string) string {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, candidate := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
