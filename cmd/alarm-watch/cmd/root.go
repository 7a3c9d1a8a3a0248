package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/wakeup-alarm/internal/config"
	"github.com/oshokin/wakeup-alarm/internal/service/watcher"
	"github.com/oshokin/wakeup-alarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// interval between state checks.
	interval time.Duration
	// untilDisarmed stops watching once the alarm has been disarmed.
	untilDisarmed bool
	// asJSON prints each observed state as JSON.
	asJSON bool

	// rootCmd represents the base command for watching alarm state.
	rootCmd = &cobra.Command{
		Use:   "alarm-watch [status-address]",
		Short: "Follow the wake-up alarm state.",
		Long: `Polls the controller's status API and logs every alarm transition.

Each arm cycle is logged with its target room, cycle id and the last room reported
by the scanner. With --until-disarmed the watcher exits once an armed alarm has
been switched off. Status address can be provided as argument or loaded from
configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use status address argument if provided, otherwise rely on config.
			var statusAddress string
			if len(args) > 0 {
				statusAddress = args[0]
			}

			watcherOptions := &watcher.Options{
				ConfigPath:    configPath,
				StatusAddress: statusAddress,
				PollInterval:  interval,
				UntilDisarmed: untilDisarmed,
				JSON:          asJSON,
			}

			return watcher.Run(ctx, watcherOptions)
		},
	}
)

// Execute runs the alarm-watch CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		DurationVarP(&interval, "interval", "i", watcher.DefaultPollInterval, "interval between state checks")
	rootCmd.Flags().BoolVarP(&untilDisarmed, "until-disarmed", "u", false, "exit once the alarm has been disarmed")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "log each observed state as JSON")
}
