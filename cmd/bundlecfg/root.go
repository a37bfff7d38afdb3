package main

import (
	"slices"

	"github.com/spf13/cobra"
)

const settingsHelp = `
Settings come from configs/application.yaml (override the directory with
--config.dir), BUNDLECFG_* environment variables and dotted flags, in
increasing precedence:

  --build.baseConfig=PATH   generated bundler configuration (required)
  --build.profile=NAME      production (default) or development
  --build.overlays=A,B      extra overlay files merged after the profile
  --build.output=PATH       where resolve writes the result, - for stdout
  --build.format=FORMAT     json (default) or yaml
  --bundle.write=BOOL       build: write output files to disk
  --bundle.outdir=DIR       build: output directory when none is configured
  --log.level=LEVEL         trace, debug, info, warn or error
  --log.format=FORMAT       json or console`

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "bundlecfg",
		Short: "Resolve and run web bundler configurations per build profile",
		Long: `bundlecfg merges overlay fragments onto a generated bundler configuration
and hands the result to esbuild. Mappings merge recursively, sequences are
concatenated base first, and for anything else the overlay wins.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		newResolveCommand(),
		newPlanCommand(),
		newBuildCommand(),
		newServeCommand(),
	)
	return root
}

// settingsCommand returns a command whose flags are all settings keys. Flag
// parsing is left to the settings loader.
func settingsCommand(use, short string, run func(cmd *cobra.Command, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:                use + " [--key.path=value ...]",
		Short:              short,
		Long:               short + ".\n" + settingsHelp,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if slices.Contains(args, "--help") || slices.Contains(args, "-h") {
				return cmd.Help()
			}
			return run(cmd, args)
		},
	}
}
