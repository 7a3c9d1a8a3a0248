package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/wakeup-alarm/internal/config"
	"github.com/oshokin/wakeup-alarm/internal/service/clock"
	"github.com/oshokin/wakeup-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// triggerDelay overrides the configured delay before the alarm sounds.
	triggerDelay time.Duration
	// dryRun logs buzzer commands instead of driving the PWM device.
	dryRun bool

	// rootCmd represents the base command for running the alarm controller.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock [status-address]",
		Short: "Run the wake-up alarm controller.",
		Long: `Connects to the MQTT broker, sounds the buzzer and announces a random target room.

The alarm stays on until the room scanner publishes the target room to esp32/location.
Reports of any other room are shown but keep the alarm sounding.
The alarm is triggered once, after trigger_delay from the configuration file.

When a status address is configured (or given as argument, e.g. :9090) the controller
also serves the status API used by alarm-trigger and alarm-watch.`,
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

			options := &clock.Options{
				ConfigPath:    configPath,
				StatusAddress: statusAddress,
				TriggerDelay:  triggerDelay,
				DryRun:        dryRun,
			}

			return clock.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
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
	rootCmd.Flags().DurationVarP(&triggerDelay, "trigger-delay", "t", 0, "delay before the alarm sounds (overrides config)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log buzzer commands instead of driving the PWM device")
}
