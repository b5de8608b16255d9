package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"conveyor/internal/api"
	"conveyor/internal/ipc"
	"conveyor/internal/journal"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show the latest health probe results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(client *ipc.Client, j *journal.Journal) error {
				var probes []api.ProbeView

				if client != nil {
					resp, err := client.Health()
					if err != nil {
						return err
					}
					probes = resp.Targets
				} else {
					records, err := j.LatestProbes(cmd.Context())
					if err != nil {
						return err
					}
					probes = api.FromProbeRecords(records)
				}

				if jsonOut {
					return writeJSON(cmd, ipc.HealthResponse{Targets: probes})
				}

				out := cmd.OutOrStdout()
				if len(probes) == 0 {
					fmt.Fprintln(out, "No health targets configured")
					return nil
				}
				if client == nil {
					fmt.Fprintln(out, "Daemon is not running; showing last journaled probe sweep")
				}
				table := renderTable(
					[]string{"Target", "Status", "Code", "Latency", "Checked", "Detail"},
					buildProbeRows(probes),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit probe results as JSON")
	return cmd
}
