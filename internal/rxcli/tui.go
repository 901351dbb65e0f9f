package rxcli

import (
	"github.com/spf13/cobra"

	"github.com/tOgg1/rxconsole/internal/logging"
	"github.com/tOgg1/rxconsole/internal/rxexport"
	"github.com/tOgg1/rxconsole/internal/rxtui"
)

func (a *app) runTUI(cmd *cobra.Command) error {
	closeLog, err := a.setupLogging(true)
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

	model, err := rxtui.NewModel(rxtui.Options{
		Controller: eng.scheduler,
		Source:     eng.store,
		Exporter:   rxexport.NewExporter(a.cfg.Export.Dir),
		Clipboard:  rxexport.NewTerminalClipboard(),
		Theme:      a.cfg.TUI.Theme,
	})
	if err != nil {
		return err
	}

	a.serveMetrics(ctx, logger)
	if a.cfg.Sync.StartPaused {
		eng.scheduler.RefreshOnce()
	} else {
		eng.scheduler.Enable()
	}

	logger.Info().Str("version", a.build.Version).Msg("tui started")
	return rxtui.Run(ctx, model)
}
