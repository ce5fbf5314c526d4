package formlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-formlist/rule"
	"github.com/rs/zerolog"
)

// DefaultInvalidItemError is reported by a list when any item is invalid.
const DefaultInvalidItemError = "Some list items contain errors."

// EnvPrefix prefixes every variable read by LoadConfig.
const EnvPrefix = "FORMLIST_"

// Config holds process level defaults, usually loaded from the environment.
type Config struct {
	InvalidItemError string  `env:"INVALID_ITEM_ERROR" envDefault:"Some list items contain errors."`
	Trigger          Trigger `env:"VALIDATE_ON" envDefault:"change"`
	RuleEngine       string  `env:"RULE_ENGINE" envDefault:"expr"`
	ActivityEnabled  bool    `env:"ACTIVITY_ENABLED" envDefault:"false"`
	ActivityChannel  string  `env:"ACTIVITY_CHANNEL" envDefault:"formlist"`
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		InvalidItemError: DefaultInvalidItemError,
		Trigger:          TriggerChange,
		RuleEngine:       rule.EngineExpr,
		ActivityChannel:  "formlist",
		LogLevel:         "info",
	}
}

// LoadConfig reads FORMLIST_* variables.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{Prefix: EnvPrefix})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("formlist: parse env: %w", err)
	}
	return cfg, nil
}

// Logger builds a zerolog logger writing to w at the configured level.
// Unknown levels fall back to info.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("component", "formlist").Logger()
}

// Evaluator constructs the configured rule engine.
func (c Config) Evaluator(cache rule.ProgramCache, registry *rule.FunctionRegistry) (rule.Evaluator, error) {
	engine := c.RuleEngine
	if engine == "" {
		engine = rule.EngineExpr
	}
	return rule.NewEvaluator(engine, cache, registry)
}
