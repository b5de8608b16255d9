package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"conveyor/internal/logtail"
)

func newLogsCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		follow bool
		lines  int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon log output",
		Long:  "Show recent lines from the daemon log, optionally following new output as it is written.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			return streamLogs(cmd, cfg.LogPath(), lines, follow)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep streaming new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "number of recent lines to show first (0 shows the whole file)")

	return cmd
}

func streamLogs(cmd *cobra.Command, path string, lines int, follow bool) error {
	out := cmd.OutOrStdout()

	opts := logtail.Options{Offset: -1, Limit: lines}
	if lines <= 0 {
		opts.Offset = 0
		opts.Limit = 0
	}

	printed := false
	for {
		opts.Follow = follow
		if follow {
			opts.Wait = time.Second
		}

		result, err := logtail.Tail(cmd.Context(), path, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, line := range result.Lines {
			fmt.Fprintln(out, line)
			printed = true
		}

		opts.Offset = result.Offset
		opts.Limit = 0
		if !follow {
			break
		}
	}

	if !printed {
		fmt.Fprintln(out, "No log entries available")
	}
	return nil
}
