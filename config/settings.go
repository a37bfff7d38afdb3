package config

import "time"

// Profile names understood by the resolver.
const (
	ProfileProduction  = "production"
	ProfileDevelopment = "development"
)

type AppInfo struct {
	Name    string `config:"name" validate:"required"`
	Version string `config:"version" validate:"required"`
}

// BuildSettings selects what gets merged and where the result goes.
type BuildSettings struct {
	// BaseConfig is the JSON or YAML file written by the upstream generator.
	BaseConfig string `config:"baseConfig" validate:"required"`

	// Profile picks the built-in overlay. "production" adds the minifier.
	Profile string `config:"profile" validate:"required,oneof=production development"`

	// Overlays are extra fragment files merged after the built-in overlay,
	// in order.
	Overlays []string `config:"overlays"`

	// Output is where resolve writes the merged configuration. "-" is stdout.
	Output string `config:"output" validate:"required"`

	// Format of the written configuration.
	Format string `config:"format" validate:"required,oneof=json yaml"`
}

// BundleSettings controls the bundling engine run by the build command.
type BundleSettings struct {
	// Write emits files to disk; when false the engine only reports them.
	Write bool `config:"write"`

	// Outdir is used when the merged configuration has no output.path.
	Outdir string `config:"outdir"`
}

type MetricsConfig struct {
	Enabled bool   `config:"enabled"`
	Path    string `config:"path"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `config:"metrics"`
}

type ActuatorConfig struct {
	BasePath string `config:"basePath" validate:"required"`
}

type ServerConfig struct {
	Addr         string        `config:"addr" validate:"required"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

type LogConfig struct {
	Level  string `config:"level" validate:"required,oneof=trace debug info warn error"`
	Format string `config:"format" validate:"required,oneof=json console"`
}

// Settings is the tool's own configuration, loaded by a Manager from
// application.yaml, BUNDLECFG_* environment variables and dotted flags.
type Settings struct {
	App           AppInfo             `config:"app"`
	Build         BuildSettings       `config:"build"`
	Bundle        BundleSettings      `config:"bundle"`
	Server        ServerConfig        `config:"server"`
	Observability ObservabilityConfig `config:"observability"`
	Actuator      ActuatorConfig      `config:"actuator"`
	Log           LogConfig           `config:"log"`
}

// DefaultSettings returns the values used for anything left unset.
// build.baseConfig has no default.
func DefaultSettings() Settings {
	return Settings{
		App: AppInfo{
			Name:    "bundlecfg",
			Version: "dev",
		},
		Build: BuildSettings{
			Profile: ProfileProduction,
			Output:  "-",
			Format:  "json",
		},
		Bundle: BundleSettings{
			Outdir: "dist",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{Path: "/metrics"},
		},
		Actuator: ActuatorConfig{
			BasePath: "/actuator",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
