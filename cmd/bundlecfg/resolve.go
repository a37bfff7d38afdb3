package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/skekre98/bundlecfg/bundle"
	"github.com/skekre98/bundlecfg/config"
	"github.com/skekre98/bundlecfg/overlay"
)

func newResolveCommand() *cobra.Command {
	return settingsCommand("resolve", "Print the merged bundler configuration for the build profile", runResolve)
}

func newPlanCommand() *cobra.Command {
	return settingsCommand("plan", "Show the esbuild options the merged configuration produces", runPlan)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := load(ctx, args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	merged, err := resolve(ctx, sess)
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), sess.settings.Build.Output, func(w io.Writer) error {
		return overlay.Encode(w, merged, sess.settings.Build.Format)
	})
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := load(ctx, args, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	merged, err := resolve(ctx, sess)
	if err != nil {
		return err
	}

	opts, err := bundle.NewEngine(sess.settings.Bundle, sess.logger).Options(merged)
	if err != nil {
		return err
	}
	return overlay.EncodeValue(cmd.OutOrStdout(), bundle.Describe(opts), sess.settings.Build.Format)
}

func resolve(ctx context.Context, sess *session) (config.Mapping, error) {
	b := sess.settings.Build
	r, err := overlay.FromSettings(b)
	if err != nil {
		return nil, err
	}
	r.Logger = sess.logger

	merged, err := r.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve %s configuration: %w", b.Profile, err)
	}
	sess.logger.Debug().
		Str("profile", b.Profile).
		Strs("overlays", b.Overlays).
		Int("keys", len(merged)).
		Msg("configuration resolved")
	return merged, nil
}

// writeOutput runs write against stdout for "-" and against the named file
// otherwise.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
