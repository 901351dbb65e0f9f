package rxcli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/rxsync"
	"github.com/tOgg1/rxconsole/internal/rxtui"
)

func (a *app) tailCommand() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Poll live and print one line per update",
		Long: `Run live polling without the terminal UI. Every completed poll cycle
prints the message count, arrival rate and stats counters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTail(cmd, count)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after this many updates (0 runs until interrupted)")
	return cmd
}

func (a *app) runTail(cmd *cobra.Command, count int) error {
	closeLog, err := a.setupLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := logging.Component("cli")

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	changes, cancel := eng.store.Changes()
	defer cancel()

	a.serveMetrics(ctx, logger)
	eng.scheduler.Enable()
	logger.Info().
		Str("api", logging.RedactURL(a.cfg.API.BaseURL)).
		Int("limit", a.cfg.Sync.Limit).
		Dur("interval", a.cfg.Sync.Interval).
		Msg("tailing")

	out := cmd.OutOrStdout()
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			view := eng.store.Snapshot()
			writeTailLine(out, view, time.Now())
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}

func writeTailLine(w io.Writer, view rxsync.View, now time.Time) {
	d := rxsync.Derive(view, now)
	fmt.Fprintf(w, "%s messages=%d rate=%d/min today=%s total=%s last=%q\n",
		now.Format("15:04:05"),
		len(view.Messages),
		d.RatePerMinute,
		rxtui.FormatCount(d.Today),
		rxtui.FormatCount(d.Total),
		strings.ReplaceAll(d.LastPreview, "\n", " "),
	)
}
