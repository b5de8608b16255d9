package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"conveyor/internal/ingest"
	"conveyor/internal/ipc"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var payload string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a work item to the daemon queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload = strings.TrimSpace(payload)
			if payload == "" {
				return errors.New("--payload is required")
			}

			if kind == ingest.Kind {
				absPath, err := filepath.Abs(payload)
				if err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}
				info, err := os.Stat(absPath)
				if err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("file does not exist: %s", absPath)
					}
					return fmt.Errorf("inspect file: %w", err)
				}
				if info.IsDir() {
					return fmt.Errorf("%s is a directory", absPath)
				}
				payload = absPath
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Submit(kind, payload)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s item %s (%s)\n", kind, shortItemID(resp.ItemID), filepath.Base(payload))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", ingest.Kind, "Work kind to enqueue")
	cmd.Flags().StringVarP(&payload, "payload", "p", "", "Work payload (file path for the ingest kind)")
	return cmd
}
