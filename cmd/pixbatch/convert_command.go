package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"pixbatch/internal/config"
	"pixbatch/internal/convert"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "convert <file|dir>...",
		Short: "Convert images and deliver the results",
		Long: "Convert loads the given files (directories are expanded one level), " +
			"converts each accepted image with the shared settings, and writes the " +
			"results to the output directory. Up to --threshold results are written " +
			"as individual files; larger batches are bundled into one zip archive.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			patch, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			cfg, err = flags.applyExport(cmd, cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return executeRun(cmd, cfg, logger, args, patch, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// executeRun runs a batch and renders the response as JSON or tables. The
// batch error is returned after rendering so partial results are visible.
func executeRun(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, paths []string, patch convert.SettingsPatch, flags *settingsFlags) error {
	opts := runOptions{patch: patch, noExport: flags.noExport}
	if !flags.jsonOutput && shouldColorize(cmd.ErrOrStderr()) {
		opts.progress = cmd.ErrOrStderr()
	}

	resp, runErr := runBatch(cmd.Context(), cfg, logger, paths, opts)
	if flags.jsonOutput {
		if err := writeJSON(cmd, resp); err != nil {
			return err
		}
		return runErr
	}
	printRunResponse(cmd.OutOrStdout(), resp, shouldColorize(cmd.OutOrStdout()))
	return runErr
}
