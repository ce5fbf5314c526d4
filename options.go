package formlist

import (
	"github.com/goliatone/go-formlist/pkg/activity"
	"github.com/goliatone/go-formlist/pkg/cell"
	"github.com/rs/zerolog"
)

// Option configures a List.
type Option func(*listConfig)

type listConfig struct {
	name             string
	validator        Validator
	invalidItemError string
	trigger          Trigger
	defaultValue     any
	hasDefault       bool
	store            *cell.Store
	logger           zerolog.Logger
	hooks            activity.Hooks
	activity         activity.Config
	actorID          string
}

func defaultListConfig() listConfig {
	cfg := listConfig{logger: zerolog.Nop()}
	applyConfig(&cfg, DefaultConfig())
	return cfg
}

func applyConfig(cfg *listConfig, c Config) {
	cfg.invalidItemError = c.InvalidItemError
	if c.Trigger != "" {
		cfg.trigger = c.Trigger
	}
	cfg.activity = activity.Config{Enabled: c.ActivityEnabled, Channel: c.ActivityChannel}
}

// WithConfig applies process defaults. Options listed after it override them.
func WithConfig(c Config) Option {
	return func(cfg *listConfig) {
		applyConfig(cfg, c)
	}
}

// WithName sets the list's own name segment, e.g. "recipients".
func WithName(name string) Option {
	return func(cfg *listConfig) {
		cfg.name = name
	}
}

// WithValidator validates the item array as a whole, e.g. "at least one".
func WithValidator(validator Validator) Option {
	return func(cfg *listConfig) {
		cfg.validator = validator
	}
}

// WithInvalidItemError sets the message shown while any item is invalid. An
// empty message disables it.
func WithInvalidItemError(message string) Option {
	return func(cfg *listConfig) {
		cfg.invalidItemError = message
	}
}

// WithTrigger selects whether structural changes re-run the list validator.
func WithTrigger(trigger Trigger) Option {
	return func(cfg *listConfig) {
		if trigger != "" {
			cfg.trigger = trigger
		}
	}
}

// WithDefaultValue sets the value Add hands to the builder. Map values given
// to AddValue are merged over it.
func WithDefaultValue(value any) Option {
	return func(cfg *listConfig) {
		cfg.defaultValue = value
		cfg.hasDefault = true
	}
}

// WithStore shares an existing store, typically the owning form's.
func WithStore(store *cell.Store) Option {
	return func(cfg *listConfig) {
		cfg.store = store
	}
}

// WithLogger sets the logger used for mutation traces and hook failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *listConfig) {
		cfg.logger = logger
	}
}

// WithActivityHooks attaches activity hooks. Nil hooks are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *listConfig) {
		cfg.hooks = normalized
	}
}

// WithActivityConfig controls whether hooks receive events and on which channel.
func WithActivityConfig(c activity.Config) Option {
	return func(cfg *listConfig) {
		cfg.activity = c
	}
}

// WithActor stamps emitted events with actorID.
func WithActor(actorID string) Option {
	return func(cfg *listConfig) {
		cfg.actorID = actorID
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make(activity.Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			normalized = append(normalized, hook)
		}
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
