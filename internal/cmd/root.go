// Package cmd wires the command line.
package cmd

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/graphtime/internal/app"
	"github.com/llehouerou/graphtime/internal/bus"
	"github.com/llehouerou/graphtime/internal/config"
	"github.com/llehouerou/graphtime/internal/errmsg"
	"github.com/llehouerou/graphtime/internal/logging"
	"github.com/llehouerou/graphtime/internal/notify"
	"github.com/llehouerou/graphtime/internal/settings"
)

type rootOptions struct {
	configPath string
	logLevel   string
	ephemeral  bool
}

// NewRootCmd builds the graphtime command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "graphtime",
		Short: "Scrub simulated timelines in the terminal",
		Long: `graphtime plays one or more simulated date ranges as timeline scrubbers.
Each timeline shows its play state, speed, position and the current date.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default is $HOME/.config/graphtime/config.toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "keep display settings in memory only")

	root.AddCommand(newSettingsCmd(opts))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads the config files and applies flag overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openSettings opens the sqlite settings store, or an in-memory one.
func openSettings(cfg *config.Config, ephemeral bool, log zerolog.Logger) (settings.Interface, error) {
	if ephemeral {
		return settings.NewMemory(), nil
	}
	path := cfg.SettingsDB
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	store, err := settings.Open(path, log)
	if err != nil {
		return nil, errors.Wrap(err, string(errmsg.OpSettingsLoad))
	}
	return store, nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, closer, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := openSettings(cfg, opts.ephemeral, log)
	if err != nil {
		return err
	}
	defer store.Close()

	timelines, err := cfg.ResolveTimelines(time.Now())
	if err != nil {
		return err
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NotificationsEnabled() {
		if notifier, err = notify.New(); err != nil {
			log.Warn().Err(err).Msg("notifications unavailable")
			notifier = notify.Nop{}
		}
	}

	broker := bus.NewBroker(bus.WithLogger(log))
	defer broker.Close()

	m, err := app.New(app.Deps{
		Config:    cfg,
		Timelines: timelines,
		Broker:    broker,
		Settings:  store,
		Notifier:  notifier,
		Logger:    log,
	})
	if err != nil {
		return errors.Wrap(err, string(errmsg.OpInitialize))
	}
	log.Info().Int("timelines", len(timelines)).Msg("starting")

	ctx, cancel := context.WithCancel(ctx)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	wait := m.Start(ctx, p.Send)

	final, runErr := p.Run()
	cancel()
	wait()

	if fm, ok := final.(app.Model); ok {
		fm.Shutdown()
	} else {
		m.Shutdown()
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return errors.Wrap(runErr, "run program")
	}
	return nil
}
