package main

import (
	"github.com/spf13/cobra"

	"pixbatch/internal/manifest"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "run <manifest.yaml>",
		Short: "Convert the batch described by a YAML manifest",
		Long: "Run loads a manifest listing inputs, settings, and export overrides. " +
			"Flags given on the command line take precedence over the manifest.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			base, err := m.Patch()
			if err != nil {
				return err
			}
			override, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			cfg, err = flags.applyExport(cmd, m.ApplyExport(cfg))
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return executeRun(cmd, cfg, logger, m.Inputs, mergePatch(base, override), &flags)
		},
	}
	flags.register(cmd)
	return cmd
}
