package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skekre98/bundlecfg/config"
	"github.com/spf13/pflag"
)

// CLISource loads configuration from command-line flags.
//
// CLISource parses flags using dot notation to create nested configuration:
//
// Flag format:
//   - Use dots to indicate nesting: --http.port=8080
//   - Supports both --flag=value and --flag value formats
//   - Supports single-dash for long flags: -http.port=8080
//   - Empty values are ignored
//   - Non-flag arguments are ignored
//
// Examples:
//
//	--build.baseConfig=target/scalajs.webpack.config.json
//	  -> {build: {baseConfig: "target/scalajs.webpack.config.json"}}
//
//	--build.profile development --log.level debug
//	  -> {build: {profile: "development"}, log: {level: "debug"}}
//
//	-server.addr=:9090
//	  -> {server: {addr: ":9090"}}
//
// All values are returned as strings. Type conversion happens during binding.
//
// CLISource should be the last source in the precedence chain so flags
// override every other source.
type CLISource struct {
	// Args to parse, without the program name. Nil means os.Args[1:].
	Args []string
}

// Name returns the identifier for this source.
func (c *CLISource) Name() string { return "cli" }

// Load parses the flags into a nested map. Invalid flags are ignored; the
// only error is a cancelled context.
func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args := c.Args
	if args == nil {
		args = os.Args[1:]
	}
	return parseCliFlags(args), nil
}

// Watch returns nil immediately; arguments are fixed for the process lifetime.
func (c *CLISource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func parseCliFlags(rawArgs []string) map[string]any {
	result := make(map[string]any)
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	registeredFlags := make(map[string]bool)
	args := normalizeArgs(rawArgs)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !strings.HasPrefix(arg, "-") {
			continue
		}

		flagName := extractFlagName(arg)
		if flagName == "" {
			continue
		}

		if !registeredFlags[flagName] {
			fs.String(flagName, "", fmt.Sprintf("Config value for %s", flagName))
			registeredFlags[flagName] = true
		}

		if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	_ = fs.Parse(args)

	fs.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			return
		}

		value := flag.Value.String()
		if value == "" {
			return
		}

		segments := strings.Split(flag.Name, ".")
		if len(segments) == 0 {
			return
		}

		setNestedValue(result, segments, value)
	})

	return result
}

// normalizeArgs converts single-dash long flags to double-dash for pflag.
func normalizeArgs(args []string) []string {
	normalized := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			withoutDash := strings.TrimPrefix(arg, "-")
			if len(withoutDash) > 1 && withoutDash[0] != '=' {
				normalized[i] = "-" + arg
			} else {
				normalized[i] = arg
			}
		} else {
			normalized[i] = arg
		}
	}
	return normalized
}

// extractFlagName extracts the flag name, removing dashes and handling --flag=value format.
func extractFlagName(arg string) string {
	arg = strings.TrimLeft(arg, "-")
	if arg == "" {
		return ""
	}

	if idx := strings.Index(arg, "="); idx != -1 {
		return arg[:idx]
	}

	return arg
}
