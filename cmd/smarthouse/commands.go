package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// options holds flags shared by every command.
type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "smarthouse",
		Short: "SmartHouse Core device registry",
		Long: `SmartHouse Core keeps track of the smart sockets and temperature sensors
installed in a house, keyed by location and name, and renders a report of
their state. Measurements are only shown while a device reports a
trustworthy state; otherwise they are replaced with "?".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # Print the report for the configured house
  smarthouse report --config configs/config.yaml

  # Include device state saved by a previous run
  smarthouse report --db

  # Serve the house over MQTT and HTTP
  smarthouse run`,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", getConfigPath(),
		"Path to the config file (env SMARTHOUSE_CONFIG)")

	root.AddCommand(newReportCmd(opts), newRunCmd(opts), newVersionCmd())
	return root
}

func newReportCmd(opts *options) *cobra.Command {
	var useDB bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the house report",
		Long: `Build the house declared in the config file and print one line per
device, ordered by location and then name.

With --db, device state saved in the database by 'smarthouse run' replaces
the freshly declared devices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), opts.configPath, useDB, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&useDB, "db", false, "Load saved device state from the database")
	return cmd
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve the house until interrupted",
		Long: `Load the house, apply device readings received over MQTT, publish the
report every house.report_interval seconds and save device state to the
database on shutdown.

Without MQTT, sockets switch through a simulated driver. With api.enabled,
the house is also served over HTTP and the report is streamed to WebSocket
subscribers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts.configPath)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "smarthouse %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
