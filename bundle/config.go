// Package bundle turns a merged bundler configuration into an esbuild build
// and runs it.
package bundle

import (
	"fmt"

	"github.com/skekre98/bundlecfg/config"
)

// Plugin kinds the engine understands. Anything else is skipped with a
// warning.
const (
	KindMinifier = "minifier"
	KindDefine   = "define"
	KindBanner   = "banner"
)

// Plugin is one entry of the plugins sequence.
type Plugin struct {
	Kind    string         `config:"kind" validate:"required"`
	Options map[string]any `config:"options"`
}

// Output names where bundles are written.
type Output struct {
	Path     string `config:"path"`
	Filename string `config:"filename"`
}

// Config is the typed view of a merged configuration. Keys it does not
// name are ignored.
type Config struct {
	// Mode is development, production or none.
	Mode string `config:"mode" validate:"omitempty,oneof=development production none"`

	// Context is the directory entry paths are relative to.
	Context string `config:"context"`

	// Entry is a path, a list of paths, or a map of output name to a path
	// or a one-element list.
	Entry any `config:"entry"`

	Output  Output   `config:"output"`
	Devtool string   `config:"devtool"`
	Plugins []Plugin `config:"plugins" validate:"dive"`
}

// Decode binds a merged configuration into a Config.
func Decode(merged config.Mapping) (Config, error) {
	var cfg Config
	if err := config.NewBinder().Bind(merged.ToMap(), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode bundler config: %w", err)
	}
	return cfg, nil
}
