package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pixbatch/internal/config"
	"pixbatch/internal/logging"
	"pixbatch/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert images as they appear in a directory",
		Long: "Watch converts each group of image files written into dir once the " +
			"directory has been quiet for watch.debounce_millis. Every group is its " +
			"own batch. Stop with Ctrl+C.",
		Args: cobra.ExactArgs(1),
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
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			if !flags.noExport {
				if err := watch.CheckOutputDir(dir, cfg.Export.OutputDir); err != nil {
					return fmt.Errorf("%w; pass --output with another directory or --no-export", err)
				}
			}

			w, err := watch.NewFromConfig(cfg, dir, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			opts := runOptions{patch: patch, noExport: flags.noExport, skipMissing: true}
			return w.Run(runCtx, func(ctx context.Context, paths []string) {
				resp, err := runBatch(ctx, cfg, logger, paths, opts)
				if err == nil && len(resp.Items) == 0 {
					return
				}
				if flags.jsonOutput {
					if encErr := writeJSON(cmd, resp); encErr != nil {
						logger.Warn("encode batch result", logging.Error(encErr))
					}
				} else {
					printRunResponse(out, resp, colorize)
				}
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			})
		},
	}
	flags.register(cmd)
	return cmd
}
