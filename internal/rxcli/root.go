// Package rxcli wires configuration, logging and the sync engine into the
// rxconsole commands.
package rxcli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/rxconsole/internal/config"
	"github.com/tOgg1/rxconsole/internal/logging"
)

// BuildInfo is stamped at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type globalFlags struct {
	configFile  string
	apiBase     string
	role        string
	limit       int
	logLevel    string
	logFormat   string
	metricsAddr string
	paused      bool
}

// app carries state shared by every command of one invocation.
type app struct {
	build BuildInfo
	flags globalFlags

	cfg        *config.Config
	configUsed string

	isTerminal func() bool
	stderr     io.Writer
}

// Execute runs the rxconsole command line.
func Execute(build BuildInfo) error {
	return newRootCmd(build).Execute()
}

func newRootCmd(build BuildInfo) *cobra.Command {
	a := &app{
		build:      build,
		isTerminal: hasTTY,
		stderr:     os.Stderr,
	}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rxconsole",
		Short: "Live console for the RX message stream",
		Long: `rxconsole polls the message backend and shows the latest RX messages
with live counters. Without a terminal it falls back to 'rxconsole tail'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       a.build.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.isTerminal() {
				return a.runTUI(cmd)
			}
			return a.runTail(cmd, 0)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "config file (default is $HOME/.config/rxconsole/config.yaml)")
	flags.StringVar(&a.flags.apiBase, "api-base", "", "backend base URL")
	flags.StringVar(&a.flags.role, "role", "", "message role to read")
	flags.IntVar(&a.flags.limit, "limit", 0, "messages per poll: 20, 50, 100 or 200")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	flags.StringVar(&a.flags.logFormat, "log-format", "", "override logging format (json, console)")
	flags.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.BoolVar(&a.flags.paused, "paused", false, "start with live polling paused")

	cmd.AddCommand(a.tailCommand())
	cmd.AddCommand(a.exportCommand())
	cmd.AddCommand(a.statsCommand())
	cmd.AddCommand(a.configCommand())
	cmd.AddCommand(a.versionCommand())
	return cmd
}

// loadConfig resolves defaults < file < env < flags.
func (a *app) loadConfig(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if a.flags.configFile != "" {
		loader.SetConfigFile(a.flags.configFile)
	}

	flags := cmd.Flags()
	if flags.Changed("api-base") {
		loader.Set("api.base_url", a.flags.apiBase)
	}
	if flags.Changed("role") {
		loader.Set("api.role", a.flags.role)
	}
	if flags.Changed("limit") {
		loader.Set("sync.limit", a.flags.limit)
	}
	if flags.Changed("log-level") {
		loader.Set("logging.level", a.flags.logLevel)
	}
	if flags.Changed("log-format") {
		loader.Set("logging.format", a.flags.logFormat)
	}
	if flags.Changed("metrics-addr") {
		loader.Set("metrics.addr", a.flags.metricsAddr)
	}
	if flags.Changed("paused") {
		loader.Set("sync.start_paused", a.flags.paused)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.configUsed = loader.ConfigFileUsed()
	return nil
}

// setupLogging points the global logger at the log file, stderr, or nowhere
// when a full-screen UI owns the terminal and no file is configured.
func (a *app) setupLogging(fullScreen bool) (func(), error) {
	cfg := a.cfg.Logging
	logCfg := logging.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		EnableCaller: cfg.EnableCaller,
		Output:       a.stderr,
	}

	closer := func() {}
	switch {
	case cfg.File != "":
		if err := a.cfg.EnsureDirectories(); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logCfg.Output = f
		logCfg.NoColor = true
		closer = func() { _ = f.Close() }
	case fullScreen:
		logging.Discard()
		return closer, nil
	}

	logging.Init(logCfg)
	if a.configUsed != "" {
		logger := logging.Component("cli")
		logger.Debug().Str("config_file", a.configUsed).Msg("loaded config file")
	}
	return closer, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
