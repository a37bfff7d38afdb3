package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skekre98/bundlecfg/bundle"
)

func newBuildCommand() *cobra.Command {
	return settingsCommand("build", "Resolve the configuration and run esbuild with it", runBuild)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := load(ctx, args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	merged, err := resolve(ctx, sess)
	if err != nil {
		return err
	}

	res, err := bundle.NewEngine(sess.settings.Bundle, sess.logger).Build(ctx, merged)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, f := range res.Files {
		fmt.Fprintf(tw, "%s\t%d\n", f.Path, f.Size)
	}
	return tw.Flush()
}
