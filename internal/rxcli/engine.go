package rxcli

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tOgg1/rxconsole/internal/metrics"
	"github.com/tOgg1/rxconsole/internal/rxclient"
	"github.com/tOgg1/rxconsole/internal/rxsync"
)

// engine is the client, store and scheduler for one session.
type engine struct {
	client    *rxclient.Client
	store     *rxsync.Store
	scheduler *rxsync.Scheduler
}

func (a *app) newClient() (*rxclient.Client, error) {
	return rxclient.New(rxclient.Config{
		BaseURL: a.cfg.API.BaseURL,
		Token:   a.cfg.API.Token,
		Timeout: a.cfg.API.Timeout,
	})
}

func (a *app) newEngine() (*engine, error) {
	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	store := rxsync.NewStore()
	scheduler, err := rxsync.NewScheduler(client, store, rxsync.Options{
		Interval: a.cfg.Sync.Interval,
		Query:    a.cfg.Query(),
	})
	if err != nil {
		return nil, err
	}
	return &engine{client: client, store: store, scheduler: scheduler}, nil
}

func (e *engine) Close() {
	e.scheduler.Close()
}

// serveMetrics exposes /metrics in the background when an address is set.
func (a *app) serveMetrics(ctx context.Context, logger zerolog.Logger) {
	addr := a.cfg.Metrics.Addr
	if addr == "" {
		return
	}
	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := metrics.Serve(ctx, addr); err != nil {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
}
