package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"

	"github.com/quarrydev/quarry/analysis"
	"github.com/quarrydev/quarry/dialect"
)

// Config is the top-level engine configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Query    QueryConfig    `yaml:"query"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig describes the backing store connection.
type DatabaseConfig struct {
	// Dialect is one of "mysql", "postgres" or "sqlite".
	Dialect  string `yaml:"dialect"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Name     string `yaml:"name,omitempty"`

	// Path is the database file for the sqlite dialect.
	Path string `yaml:"path,omitempty"`

	// Params holds extra driver parameters, for example sslmode for
	// postgres.
	Params map[string]string `yaml:"params,omitempty"`
}

// QueryConfig tunes the query interpreter.
type QueryConfig struct {
	// CacheTTL bounds how long cached query results stay valid. Zero
	// disables caching.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// MaxResults caps result set sizes for unbounded listings.
	MaxResults int `yaml:"max_results"`
}

// AnalysisConfig tunes the similarity and complexity engine.
type AnalysisConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	WindowSize          int     `yaml:"window_size"`
	MinSnippetLength    int     `yaml:"min_snippet_length"`
	ComplexityThreshold int     `yaml:"complexity_threshold"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file overrides
// are present.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect: dialect.SQLite,
			Path:    "quarry.db",
		},
		Query: QueryConfig{
			CacheTTL:   5 * time.Minute,
			MaxResults: 1000,
		},
		Analysis: AnalysisConfig{
			SimilarityThreshold: analysis.DefaultSimilarityThreshold,
			WindowSize:          analysis.DefaultWindowSize,
			MinSnippetLength:    analysis.DefaultMinSnippetLength,
			ComplexityThreshold: analysis.DefaultComplexityThreshold,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile reads a YAML configuration file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch c.Database.Dialect {
	case dialect.MySQL, dialect.Postgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for dialect %q", c.Database.Dialect)
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required for dialect %q", c.Database.Dialect)
		}
	case dialect.SQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for dialect %q", c.Database.Dialect)
		}
	default:
		return fmt.Errorf("unsupported database.dialect %q", c.Database.Dialect)
	}

	if c.Query.CacheTTL < 0 {
		return fmt.Errorf("query.cache_ttl must not be negative, got %s", c.Query.CacheTTL)
	}
	if c.Query.MaxResults < 0 {
		return fmt.Errorf("query.max_results must not be negative, got %d", c.Query.MaxResults)
	}

	if t := c.Analysis.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("analysis.similarity_threshold must be in (0, 1], got %g", t)
	}
	if c.Analysis.WindowSize < 1 {
		return fmt.Errorf("analysis.window_size must be at least 1, got %d", c.Analysis.WindowSize)
	}
	if c.Analysis.MinSnippetLength < 0 {
		return fmt.Errorf("analysis.min_snippet_length must not be negative, got %d", c.Analysis.MinSnippetLength)
	}
	if c.Analysis.ComplexityThreshold < 1 {
		return fmt.Errorf("analysis.complexity_threshold must be at least 1, got %d", c.Analysis.ComplexityThreshold)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported logging.format %q", c.Logging.Format)
	}

	return nil
}

// DSN assembles the driver source name for the configured dialect.
func (d DatabaseConfig) DSN() string {
	switch d.Dialect {
	case dialect.MySQL:
		cfg := mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.portOr(3306))
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.DBName = d.Name
		cfg.ParseTime = true
		if len(d.Params) > 0 {
			cfg.Params = make(map[string]string, len(d.Params))
			for k, v := range d.Params {
				cfg.Params[k] = v
			}
		}
		return cfg.FormatDSN()

	case dialect.Postgres:
		dsn := fmt.Sprintf("host=%s port=%d dbname=%s", d.Host, d.portOr(5432), d.Name)
		if d.User != "" {
			dsn += " user=" + d.User
		}
		if d.Password != "" {
			dsn += " password=" + d.Password
		}
		sslmode := d.Params["sslmode"]
		if sslmode == "" {
			sslmode = "disable"
		}
		return dsn + " sslmode=" + sslmode

	case dialect.SQLite:
		dsn := "file:" + d.Path
		if cache := d.Params["cache"]; cache != "" {
			dsn += "?cache=" + cache
		}
		return dsn

	default:
		return ""
	}
}

func (d DatabaseConfig) portOr(def int) int {
	if d.Port > 0 {
		return d.Port
	}
	return def
}

// LogLevel maps the configured level onto slog. Unknown levels fall
// back to info.
func (l LoggingConfig) LogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
