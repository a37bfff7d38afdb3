package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skekre98/bundlecfg/actuator"
	"github.com/skekre98/bundlecfg/api"
	"github.com/skekre98/bundlecfg/config"
	"github.com/skekre98/bundlecfg/core"
	"github.com/skekre98/bundlecfg/web"
)

func newServeCommand() *cobra.Command {
	return settingsCommand("serve", "Serve the merge API, actuator endpoints and metrics over HTTP", runServe)
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := load(cmd.Context(), args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer sess.manager.Close()

	current := func() config.Settings {
		var s config.Settings
		sess.manager.View(func() { s = *sess.settings })
		return s
	}

	app := core.NewApp(
		sess.logger,
		web.Module(),
		actuator.Module(actuator.Check{
			Name: "baseConfig",
			Run:  baseConfigReadable(current),
		}),
		api.Module(current),
	)

	core.Put(app.Container, current())
	core.Put(app.Container, sess.logger)

	return app.Run(cmd.Context())
}

func baseConfigReadable(current api.SettingsFunc) func(context.Context) error {
	return func(context.Context) error {
		path := current().Build.BaseConfig
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("base configuration: %w", err)
		}
		return nil
	}
}
