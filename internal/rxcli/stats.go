package rxcli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/rxconsole/internal/rxsync"
	"github.com/tOgg1/rxconsole/internal/rxtui"
)

// StatsReport is the payload printed by `rxconsole stats --json`.
type StatsReport struct {
	CycleID       string             `json:"cycle_id"`
	FetchedAt     time.Time          `json:"fetched_at"`
	Messages      int                `json:"messages"`
	RatePerMinute int                `json:"rate_per_minute"`
	Today         float64            `json:"today"`
	Total         float64            `json:"total"`
	LastPreview   string             `json:"last_preview"`
	Stats         map[string]float64 `json:"stats"`
}

func (a *app) statsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch once and print stats with derived counters",
		Args:  cobra.NoArgs,
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

			view := rxsync.View{Messages: snap.Messages, Stats: snap.Stats, CycleID: snap.CycleID, UpdatedAt: snap.FetchedAt}
			d := rxsync.Derive(view, time.Now())
			report := StatsReport{
				CycleID:       snap.CycleID,
				FetchedAt:     snap.FetchedAt,
				Messages:      len(snap.Messages),
				RatePerMinute: d.RatePerMinute,
				Today:         d.Today,
				Total:         d.Total,
				LastPreview:   d.LastPreview,
				Stats:         snap.Stats.Map(),
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			writer := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			fmt.Fprintf(writer, "Messages:\t%d\n", report.Messages)
			fmt.Fprintf(writer, "Rate:\t%d/min\n", report.RatePerMinute)
			fmt.Fprintf(writer, "Today:\t%s\n", rxtui.FormatCount(report.Today))
			fmt.Fprintf(writer, "Total:\t%s\n", rxtui.FormatCount(report.Total))
			fmt.Fprintf(writer, "Last:\t%s\n", report.LastPreview)
			for _, name := range snap.Stats.Names() {
				fmt.Fprintf(writer, "%s:\t%s\n", name, rxtui.FormatCount(snap.Stats.Get(name)))
			}
			return writer.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
