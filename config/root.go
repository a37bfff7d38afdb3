package config

import "context"

// ConfigSource supplies one layer of configuration: the generated base
// bundler config, an overlay fragment, a settings file, the environment or
// command-line flags.
//
// Load must be safe for concurrent use. Watch is optional and may return nil
// immediately when the source cannot report changes.
type ConfigSource interface {
	// Load retrieves configuration data from this source as a string-keyed map.
	// The returned map may contain nested maps and slices.
	//
	// Implementations should return ctx.Err() if the context is cancelled
	// and must return a copy of their data, never shared state.
	Load(ctx context.Context) (map[string]any, error)

	// Watch monitors this source for changes and sends an Event on ch for
	// each one. It must not close ch. When ctx is cancelled Watch releases
	// its resources and returns.
	//
	// Sources that don't support watching return nil immediately.
	Watch(ctx context.Context, ch chan<- Event) error

	// Name returns a human-readable identifier for this source, used in
	// error messages and logs. Examples: "file", "env", "cli", "document".
	Name() string
}

// Event is a change notification sent to Manager subscribers after a reload
// that changed the bound configuration.
type Event struct {
	// ChangedKeys lists the top-level keys whose values differ between
	// OldConfig and NewConfig, using `config` tag names where present.
	//
	// Example: if only build.profile changed, ChangedKeys is ["build"].
	ChangedKeys []string

	// OldConfig is the configuration value before the change.
	OldConfig any

	// NewConfig is the configuration value after the change.
	NewConfig any
}
