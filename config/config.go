// Package config loads runtime settings from YAML files and environment
// variables via viper. Every knob has a safe default so the runtime starts
// with no configuration at all.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested config keys to env var segments, so
// engine.max_retries resolves from TASKMESH_ENGINE_MAX_RETRIES.
var envKeyReplacer = strings.NewReplacer(".", "_")

// EngineSettings tunes tool execution.
type EngineSettings struct {
	// MaxRetries is the per-call retry budget for tool batches.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// FailFast halts a batch on the first failure.
	FailFast bool `mapstructure:"fail_fast" yaml:"fail_fast"`
	// Backoff selects the retry delay strategy: "none" or "exponential".
	Backoff string `mapstructure:"backoff" yaml:"backoff"`
	// BackoffBase is the first retry delay for the exponential strategy.
	BackoffBase time.Duration `mapstructure:"backoff_base" yaml:"backoff_base"`
	// BackoffMax caps exponential delays. Zero means no cap.
	BackoffMax time.Duration `mapstructure:"backoff_max" yaml:"backoff_max"`
}

// PlannerSettings tunes task classification.
type PlannerSettings struct {
	// Keywords extends the built-in classification keyword set.
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
	// RetrievalTopK bounds knowledge retrieval during planning.
	RetrievalTopK int `mapstructure:"retrieval_top_k" yaml:"retrieval_top_k"`
}

// HistorySettings configures run-history persistence.
type HistorySettings struct {
	// Driver is "memory" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`
	// DSN is the postgres connection string when Driver is "postgres".
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// KnowledgeSettings configures the retrieval collaborator.
type KnowledgeSettings struct {
	// RedisAddr enables the redis-backed retrieval cache when non-empty.
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	// CacheTTL bounds how long cached retrievals stay valid.
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// LoggingSettings configures the structured logger.
type LoggingSettings struct {
	// Level is DEBUG, INFO, WARN or ERROR.
	Level string `mapstructure:"level" yaml:"level"`
	// Format is "json" or "text".
	Format string `mapstructure:"format" yaml:"format"`
}

// Settings is the full runtime configuration.
type Settings struct {
	Engine    EngineSettings    `mapstructure:"engine" yaml:"engine"`
	Planner   PlannerSettings   `mapstructure:"planner" yaml:"planner"`
	History   HistorySettings   `mapstructure:"history" yaml:"history"`
	Knowledge KnowledgeSettings `mapstructure:"knowledge" yaml:"knowledge"`
	Logging   LoggingSettings   `mapstructure:"logging" yaml:"logging"`
}

// Default returns the settings used when no file or environment overrides
// are present.
func Default() *Settings {
	return &Settings{
		Engine: EngineSettings{
			MaxRetries:  0,
			FailFast:    true,
			Backoff:     "none",
			BackoffBase: 100 * time.Millisecond,
			BackoffMax:  5 * time.Second,
		},
		Planner: PlannerSettings{
			RetrievalTopK: 3,
		},
		History: HistorySettings{
			Driver: "memory",
		},
		Knowledge: KnowledgeSettings{
			CacheTTL: 5 * time.Minute,
		},
		Logging: LoggingSettings{
			Level:  "INFO",
			Format: "json",
		},
	}
}

// Load reads settings from the YAML file at path, layered over defaults and
// under TASKMESH_* environment overrides (e.g. TASKMESH_ENGINE_MAX_RETRIES).
// An empty path skips file loading.
func Load(path string) (*Settings, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("engine.max_retries", defaults.Engine.MaxRetries)
	v.SetDefault("engine.fail_fast", defaults.Engine.FailFast)
	v.SetDefault("engine.backoff", defaults.Engine.Backoff)
	v.SetDefault("engine.backoff_base", defaults.Engine.BackoffBase)
	v.SetDefault("engine.backoff_max", defaults.Engine.BackoffMax)
	v.SetDefault("planner.keywords", defaults.Planner.Keywords)
	v.SetDefault("planner.retrieval_top_k", defaults.Planner.RetrievalTopK)
	v.SetDefault("history.driver", defaults.History.Driver)
	v.SetDefault("history.dsn", defaults.History.DSN)
	v.SetDefault("knowledge.redis_addr", defaults.Knowledge.RedisAddr)
	v.SetDefault("knowledge.cache_ttl", defaults.Knowledge.CacheTTL)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetEnvPrefix("TASKMESH")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks value ranges and enumerations.
func (s *Settings) Validate() error {
	if s.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine.max_retries must be >= 0, got %d", s.Engine.MaxRetries)
	}
	switch s.Engine.Backoff {
	case "none", "exponential":
	default:
		return fmt.Errorf("engine.backoff must be \"none\" or \"exponential\", got %q", s.Engine.Backoff)
	}
	switch s.History.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("history.driver must be \"memory\" or \"postgres\", got %q", s.History.Driver)
	}
	if s.History.Driver == "postgres" && s.History.DSN == "" {
		return fmt.Errorf("history.dsn is required when history.driver is \"postgres\"")
	}
	if s.Planner.RetrievalTopK < 0 {
		return fmt.Errorf("planner.retrieval_top_k must be >= 0, got %d", s.Planner.RetrievalTopK)
	}
	return nil
}
