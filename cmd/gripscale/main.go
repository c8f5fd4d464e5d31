package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mprt/gripscale/pkg/config"
	"github.com/mprt/gripscale/pkg/scale"
)

var (
	logLevel   = "info"
	configPath = "gripscale.yaml"
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.Kitchen,
	})

	return nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gripscale",
		Short: "gripscale records and calibrates a strain-gauge climbing scale",
		Long: `gripscale is the desktop companion for a strain-gauge climbing scale.
The scale's MCU streams raw digitizer counts over a serial link; gripscale
records sessions, manages calibrations mapping raw counts to force, and
exports or plots calibrated force series.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	cmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", logLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&configPath, "config", configPath, "Configuration file path")

	cmd.AddCommand(
		NewPortsCommand(),
		NewLiveCommand(),
		NewRecordCommand(),
		NewCalibrateCommand(),
		NewExportCommand(),
		NewPlotCommand(),
	)

	return cmd
}

// loadConfig loads the configuration file and applies common overrides.
func loadConfig(portOverride string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if portOverride != "" {
		cfg.Serial.Port = portOverride
	}
	return cfg, nil
}

// openScale builds the configured stream source: the serial scale, or the
// mocked one when hardware isn't around.
func openScale(cfg *config.Config, mock bool) scale.Scale {
	if mock {
		return scale.NewMock(&cfg.Mock)
	}
	return scale.New(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Serial.BufferSize)
}
