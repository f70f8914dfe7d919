package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/llehouerou/graphtime/internal/errmsg"
	"github.com/llehouerou/graphtime/internal/logging"
	"github.com/llehouerou/graphtime/internal/settings"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "settings",
		Short: "View or modify per-graph display settings",
		Long: `View or modify the display settings stored per storage key.

Examples:
  graphtime settings get graph-a
  graphtime settings set graph-a --visible=false`,
	}

	get := &cobra.Command{
		Use:   "get <storage-key>",
		Short: "Show the display settings of a storage key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, done, err := offlineStore(opts)
			if err != nil {
				return err
			}
			defer done()

			d, _, err := store.Lookup(args[0])
			if err != nil {
				return errors.Wrap(err, string(errmsg.OpSettingsLoad))
			}
			printDisplay(cmd, args[0], d)
			return nil
		},
	}

	var visible bool
	set := &cobra.Command{
		Use:   "set <storage-key>",
		Short: "Change the display settings of a storage key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("visible") {
				return errors.New("nothing to set: pass --visible=true|false")
			}
			store, done, err := offlineStore(opts)
			if err != nil {
				return err
			}
			defer done()

			d, _, err := store.Lookup(args[0])
			if err != nil {
				return errors.Wrap(err, string(errmsg.OpSettingsLoad))
			}
			d.TimelineVisible = visible
			if err := store.Set(args[0], d); err != nil {
				return errors.Wrap(err, string(errmsg.OpSettingsSave))
			}
			printDisplay(cmd, args[0], d)
			return nil
		},
	}
	set.Flags().BoolVar(&visible, "visible", true, "show the timeline")

	c.AddCommand(get, set)
	return c
}

// offlineStore opens the settings store with a console logger.
func offlineStore(opts *rootOptions) (settings.Interface, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	log, closer, err := logging.New(logging.Config{Level: cfg.LogLevel, Output: logging.OutputStderr})
	if err != nil {
		return nil, nil, err
	}
	store, err := openSettings(cfg, opts.ephemeral, log)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return store, func() {
		_ = store.Close()
		_ = closer.Close()
	}, nil
}

func printDisplay(cmd *cobra.Command, key string, d settings.Display) {
	state := "visible"
	if !d.TimelineVisible {
		state = "hidden"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: timeline %s\n", key, state)
}
