package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

// PaperSize is a page size in inches.
type PaperSize struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            string        `yaml:"port" env:"PORT"`
	Prefork         bool          `yaml:"prefork" env:"PREFORK"`
	BodyLimit       int           `yaml:"body_limit" env:"BODY_LIMIT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type LoggerConfig struct {
	File       string `yaml:"file" env:"FILE"`
	Level      string `yaml:"level" env:"LEVEL"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type RateLimiterConfig struct {
	UserLimit int           `yaml:"user_limit" env:"USER_LIMIT"`
	Interval  time.Duration `yaml:"interval" env:"INTERVAL"`
}

type RedisConfig struct {
	Addr        string `yaml:"addr" env:"ADDR"`
	RateLimitDB int    `yaml:"rate_limit_db" env:"RATE_LIMIT_DB"`
}

type PDFConfig struct {
	Engine          string               `yaml:"engine" env:"ENGINE"`
	DefaultPaper    string               `yaml:"default_paper" env:"DEFAULT_PAPER"`
	PaperSizes      map[string]PaperSize `yaml:"paper_sizes"`
	Margin          float64              `yaml:"margin" env:"MARGIN"`
	TimeoutSecs     int                  `yaml:"timeout_secs" env:"TIMEOUT_SECS"`
	ChromePath      string               `yaml:"chrome_path" env:"CHROME_PATH"`
	ChromeNoSandbox bool                 `yaml:"chrome_no_sandbox" env:"CHROME_NO_SANDBOX"`
}

type PackConfig struct {
	ScratchDir                 string `yaml:"scratch_dir" env:"SCRATCH_DIR"`
	StrictValidation           bool   `yaml:"strict_validation" env:"STRICT_VALIDATION"`
	ChecklistReflectsDocuments bool   `yaml:"checklist_reflects_documents" env:"CHECKLIST_REFLECTS_DOCUMENTS"`
}

type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH"`
}

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" envPrefix:"SERVER_"`
	Logger      LoggerConfig      `yaml:"logger" envPrefix:"LOG_"`
	RateLimiter RateLimiterConfig `yaml:"rate_limiter" envPrefix:"RATE_"`
	Redis       RedisConfig       `yaml:"redis" envPrefix:"REDIS_"`
	PDF         PDFConfig         `yaml:"pdf" envPrefix:"PDF_"`
	Pack        PackConfig        `yaml:"pack" envPrefix:"PACK_"`
	Metrics     MetricsConfig     `yaml:"metrics" envPrefix:"METRICS_"`
}

// Strict reports whether every schema violation, including the wizard's
// format rules, is rejected before rendering. Off by default: only missing
// fields and wrong section types fail, as a 500.
func (c Config) Strict() bool {
	return c.Pack.StrictValidation
}

// MetricsEnabled reports whether the prometheus endpoint is mounted.
func (c Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// Paper returns the configured default paper size.
func (c Config) Paper() PaperSize {
	return c.PDF.PaperSizes[c.PDF.DefaultPaper]
}

// Load reads the file named by CONFIG_PATH, or config/config.yaml.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFrom(path)
}

// LoadFrom parses the YAML file at path, overlays TENANCYPACK_* environment
// variables, applies defaults and validates the result. It panics when the
// configuration cannot be used.
func LoadFrom(path string) Config {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TENANCYPACK_"}); err != nil {
		panic(fmt.Sprintf("config: environment: %v", err))
	}
	// Common container convention for the browser binary.
	if cfg.PDF.ChromePath == "" {
		cfg.PDF.ChromePath = os.Getenv("CHROME_BIN")
	}

	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = 1 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.RateLimiter.Interval == 0 {
		cfg.RateLimiter.Interval = time.Minute
	}
	if cfg.PDF.Engine == "" {
		cfg.PDF.Engine = EngineFPDF
	}
	cfg.PDF.Engine = strings.ToLower(cfg.PDF.Engine)
	if len(cfg.PDF.PaperSizes) == 0 {
		cfg.PDF.PaperSizes = map[string]PaperSize{
			"A4":     {Width: 8.27, Height: 11.69},
			"LETTER": {Width: 8.5, Height: 11},
		}
	}
	if cfg.PDF.DefaultPaper == "" {
		cfg.PDF.DefaultPaper = "A4"
	}
	cfg.PDF.DefaultPaper = strings.ToUpper(cfg.PDF.DefaultPaper)
	if cfg.PDF.Margin == 0 {
		cfg.PDF.Margin = 0.75
	}
	if cfg.PDF.TimeoutSecs == 0 {
		cfg.PDF.TimeoutSecs = 30
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

const (
	EngineFPDF   = "fpdf"
	EngineChrome = "chrome"
)

// Validate checks values that would otherwise fail at request time.
func Validate(cfg Config) error {
	if cfg.RateLimiter.Interval <= 0 {
		return fmt.Errorf("rate_limiter.interval must be positive")
	}
	if cfg.RateLimiter.UserLimit < 0 {
		return fmt.Errorf("rate_limiter.user_limit must not be negative")
	}
	if cfg.PDF.Engine != EngineFPDF && cfg.PDF.Engine != EngineChrome {
		return fmt.Errorf("pdf.engine %q is not supported", cfg.PDF.Engine)
	}
	paper, ok := cfg.PDF.PaperSizes[cfg.PDF.DefaultPaper]
	if !ok {
		return fmt.Errorf("pdf.default_paper %q is not in pdf.paper_sizes", cfg.PDF.DefaultPaper)
	}
	if paper.Width <= 0 || paper.Height <= 0 {
		return fmt.Errorf("pdf.paper_sizes.%s must have positive dimensions", cfg.PDF.DefaultPaper)
	}
	if cfg.PDF.Margin < 0 || cfg.PDF.Margin > 2 {
		return fmt.Errorf("pdf.margin must be between 0 and 2 inches")
	}
	if cfg.PDF.TimeoutSecs <= 0 {
		return fmt.Errorf("pdf.timeout_secs must be positive")
	}
	if cfg.Server.BodyLimit < 0 {
		return fmt.Errorf("server.body_limit must not be negative")
	}
	return nil
}
