package source

import (
	"context"
	"os"
	"strings"

	"github.com/skekre98/bundlecfg/config"
)

// EnvPrefix is the default prefix for environment variables.
// Only variables starting with the prefix are loaded.
const EnvPrefix = "BUNDLECFG_"

// EnvSource loads configuration from environment variables.
//
// EnvSource filters environment variables by prefix and converts them into
// a nested map structure using underscores as delimiters.
//
// Environment variable format:
//   - Must start with Prefix ("BUNDLECFG_" by default)
//   - Remaining parts are split by underscores and lowercased
//   - Each part becomes one level of nesting
//
// Examples:
//
//	BUNDLECFG_BUILD_PROFILE=development
//	  -> {build: {profile: "development"}}
//
//	BUNDLECFG_BUILD_BASECONFIG=target/scalajs.webpack.config.json
//	  -> {build: {baseconfig: "target/scalajs.webpack.config.json"}}
//
// Key matching during binding is case-insensitive, so "baseconfig" binds to
// the baseConfig field. All values are strings; conversion happens during
// binding.
//
// If a leaf value already exists, nested values cannot be created at that
// path: with both BUNDLECFG_LOG=x and BUNDLECFG_LOG_LEVEL=debug, whichever
// is seen first is kept.
type EnvSource struct {
	// Prefix overrides EnvPrefix.
	Prefix string
}

// Name returns the identifier for this source.
func (e *EnvSource) Name() string { return "env" }

// Load reads all environment variables with the configured prefix.
// It only fails when ctx is already done.
func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := e.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}
	return loadEnvVars(os.Environ(), prefix), nil
}

// Watch is not implemented for EnvSource and returns nil immediately.
func (e *EnvSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func loadEnvVars(environ []string, prefix string) map[string]any {
	result := make(map[string]any)

	for _, env := range environ {
		key, value, found := parseEnvLine(env)
		if !found {
			continue
		}

		if !strings.HasPrefix(key, prefix) {
			continue
		}

		key = strings.TrimPrefix(key, prefix)
		key = strings.ToLower(key)

		segments := strings.Split(key, "_")
		if len(segments) == 0 {
			continue
		}

		setNestedValue(result, segments, value)
	}

	return result
}

func parseEnvLine(env string) (string, string, bool) {
	return strings.Cut(env, "=")
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		if existing, exists := current[segment]; exists {
			if nested, ok := existing.(map[string]any); ok {
				current = nested
			} else {
				// a leaf already owns this path
				return
			}
		} else {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
		}
	}
}
