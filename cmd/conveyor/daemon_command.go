package main

import (
	"github.com/spf13/cobra"

	"conveyor/internal/daemonrun"
)

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var development bool
	cmd := &cobra.Command{
		Use:          "daemon",
		Short:        "Run the conveyor daemon (internal)",
		Hidden:       true,
		Annotations:  map[string]string{"skipConfigLoad": "true"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    ctx.resolvedLogLevel(cfg),
				Development: development,
			})
		},
	}
	cmd.Flags().BoolVar(&development, "log-development", false, "Log in console format for foreground debugging")
	return cmd
}
