package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"conveyor/internal/api"
	"conveyor/internal/ipc"
	"conveyor/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently finished work items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withJournal(func(client *ipc.Client, j *journal.Journal) error {
				var outcomes []api.OutcomeView
				var stats map[string]int

				if client != nil {
					resp, err := client.History(limit)
					if err != nil {
						return err
					}
					outcomes = resp.Outcomes
					stats = resp.Stats
				} else {
					recent, err := j.ListRecent(cmd.Context(), limit)
					if err != nil {
						return err
					}
					rawStats, err := j.Stats(cmd.Context())
					if err != nil {
						return err
					}
					outcomes = api.FromOutcomes(recent)
					stats = api.MergeOutcomeStats(rawStats)
				}

				if jsonOut {
					return writeJSON(cmd, ipc.HistoryResponse{Outcomes: outcomes, Stats: stats})
				}

				out := cmd.OutOrStdout()
				if len(outcomes) == 0 {
					fmt.Fprintln(out, "No outcomes recorded")
					return nil
				}
				table := renderTable(
					[]string{"Item", "Kind", "Worker", "Status", "Duration", "Finished", "Detail"},
					buildOutcomeRows(outcomes),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				if summary := formatStatsSummary(stats); summary != "" {
					fmt.Fprintf(out, "Totals: %s\n", summary)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum outcomes to display")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit history as JSON")
	return cmd
}
