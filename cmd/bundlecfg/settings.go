package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/skekre98/bundlecfg/config"
	"github.com/skekre98/bundlecfg/config/source"
	"github.com/skekre98/bundlecfg/logging"
)

const defaultConfigDir = "configs"

// session bundles what every command needs.
type session struct {
	settings *config.Settings
	manager  *config.Manager
	logger   zerolog.Logger
}

// load reads settings from the config directory, the environment and args,
// and builds the logger they describe. args never falls back to os.Args.
func load(ctx context.Context, args []string, logOut io.Writer) (*session, error) {
	if args == nil {
		args = []string{}
	}
	cli := &source.CLISource{Args: args}

	var s config.Settings
	mgr, err := config.NewManager(&s, config.Options{Defaults: config.DefaultSettings()},
		&source.FileSource{
			BasePath: configDir(ctx, cli),
			Profile:  os.Getenv(source.EnvPrefix + "PROFILE"),
			Optional: true,
		},
		&source.EnvSource{},
		cli,
	)
	if err != nil {
		return nil, err
	}

	l := logging.ForApp(logging.New(logOut, s.Log), s.App)
	return &session{settings: &s, manager: mgr, logger: l}, nil
}

// configDir returns --config.dir when given, else BUNDLECFG_CONFIG_DIR, else
// the default.
func configDir(ctx context.Context, cli *source.CLISource) string {
	if flags, err := cli.Load(ctx); err == nil {
		if c, ok := flags["config"].(map[string]any); ok {
			if dir, ok := c["dir"].(string); ok && dir != "" {
				return dir
			}
		}
	}
	if dir := os.Getenv(source.EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir
	}
	return defaultConfigDir
}
