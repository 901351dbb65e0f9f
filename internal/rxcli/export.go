package rxcli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/rxclient"
	"github.com/tOgg1/rxconsole/internal/rxexport"
)

func (a *app) exportCommand() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch once and write the message list to CSV",
		Long: `Run a single poll cycle and write the returned messages to
rx_messages_<timestamp>.csv. Nothing is written when the list is empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closeLog, err := a.setupLogging(false)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			snap, err := a.fetchOnce(ctx)
			if err != nil {
				return err
			}

			dir := a.cfg.Export.Dir
			if outDir != "" {
				dir = outDir
			}
			result, ok, err := rxexport.NewExporter(dir).Export(snap.Messages)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "no messages")
				return nil
			}
			fmt.Fprintln(out, result.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for the CSV file (default export.dir)")
	return cmd
}

// fetchOnce runs one poll cycle outside the scheduler.
func (a *app) fetchOnce(ctx context.Context) (rxclient.Snapshot, error) {
	client, err := a.newClient()
	if err != nil {
		return rxclient.Snapshot{}, err
	}
	snap, err := client.Fetch(ctx, a.cfg.Query())
	if err != nil {
		logger := logging.Component("cli")
		logger.Debug().Str("error", logging.Redact(err.Error())).Msg("poll cycle failed")
		return rxclient.Snapshot{}, fmt.Errorf("poll cycle failed: %w", err)
	}
	return snap, nil
}
