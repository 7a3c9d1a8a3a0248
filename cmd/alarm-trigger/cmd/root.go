package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/wakeup-alarm/internal/config"
	"github.com/oshokin/wakeup-alarm/internal/service/trigger"
	"github.com/oshokin/wakeup-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string

	// rootCmd represents the base command for arming the alarm remotely.
	rootCmd = &cobra.Command{
		Use:   "alarm-trigger [status-address]",
		Short: "Sound the wake-up alarm now.",
		Long: `Arms the wake-up alarm through the controller's status API.

Sends trigger requests continuously until the controller confirms the alarm is armed.
If the alarm is already sounding it is re-armed with a fresh target room.
Status address can be provided as argument or loaded from configuration file.`,
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

			return trigger.Run(ctx, &trigger.Options{
				ConfigPath:    cfgPath,
				StatusAddress: statusAddress,
			})
		},
	}
)

// Execute runs the alarm-trigger CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
