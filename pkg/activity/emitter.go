package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that do not name a channel.
const DefaultChannel = "formlist"

// Config switches list activity on and names the channel events go to.
// Emission stays off unless Enabled is set, even when hooks are registered.
type Config struct {
	Enabled bool
	Channel string
}

func (c Config) channel() string {
	if channel := strings.TrimSpace(c.Channel); channel != "" {
		return channel
	}
	return DefaultChannel
}

// Emitter delivers list events to hooks on behalf of one list.
type Emitter struct {
	hooks   Hooks
	channel string
}

// NewEmitter drops nil hooks and returns an emitter that is only enabled
// when cfg.Enabled is set and at least one hook remains.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{channel: cfg.channel()}
	if !cfg.Enabled {
		return e
	}
	for _, hook := range hooks {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
	return e
}

func (e *Emitter) Enabled() bool {
	return e != nil && e.hooks.Enabled()
}

// Channel reports the channel applied to events without one.
func (e *Emitter) Channel() string {
	if e == nil {
		return DefaultChannel
	}
	return e.channel
}

func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
