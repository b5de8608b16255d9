package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"conveyor/internal/daemonctl"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and component status",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), ctx.configValue())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, snapshot)
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			st := snapshot.Status

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if snapshot.Online {
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d, up %s)", st.PID, formatDuration(st.UptimeMS)), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Workers", poolStatusKind(st.Pool.State), fmt.Sprintf("%s (%d consumers)", formatStatusLabel(st.Pool.State), st.Pool.Consumers), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Queue", statusInfo, fmt.Sprintf("%d waiting, %d in flight, %d processed, %d failed, %d accepted", st.QueueDepth, st.Pool.InFlight, st.Pool.Processed, st.Pool.Failed, st.QueueAccepted), colorize))
				if st.Watcher != nil {
					fmt.Fprintln(stdout, renderStatusLine("Watcher", statusOK, fmt.Sprintf("%d events seen, %d items enqueued, %d settling", st.Watcher.EventsSeen, st.Watcher.ItemsEnqueued, st.Watcher.PendingSettles), colorize))
				} else {
					fmt.Fprintln(stdout, renderStatusLine("Watcher", statusInfo, "Disabled", colorize))
				}
			} else {
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusError, "Not running", colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, st.SocketPath, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Journal", statusInfo, st.JournalPath, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Log file", statusInfo, st.LogPath, colorize))

			if len(snapshot.Checks) > 0 {
				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, check := range snapshot.Checks {
					fmt.Fprintln(stdout, renderStatusLine(check.Name, checkStatusKind(check.Passed), check.Detail, colorize))
				}
			}

			if snapshot.Online && len(st.Health) > 0 {
				fmt.Fprintln(stdout)
				for _, line := range renderSectionHeader("Health Targets", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, probe := range st.Health {
					fmt.Fprintln(stdout, renderStatusLine(probe.Name, probeStatusKind(probe.Status), probeDetail(probe), colorize))
				}
			}

			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Outcomes", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := buildStatsRows(snapshot.Stats)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No outcomes recorded")
				return nil
			}
			table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			fmt.Fprintln(stdout, table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the status snapshot as JSON")
	return cmd
}
