package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mprt/gripscale/pkg/session"
)

func NewRecordCommand() *cobra.Command {
	var (
		port     string
		mock     bool
		output   string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a session to a CSV file",
		Long: `Record raw readings from the scale until interrupted (or for the given
duration) and save the session as a two-column CSV of timestamp and raw count.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(port)
			if err != nil {
				return err
			}

			sess := session.New(cfg)
			if err := sess.Attach(openScale(cfg, mock)); err != nil {
				return errors.Wrap(err, "failed to open scale")
			}

			if duration > 0 {
				logrus.Infof("recording for %s", duration)
				waitForInterruptOrTimeout(duration)
			} else {
				logrus.Info("recording, press ctrl-c to stop")
				waitForInterrupt()
			}

			if err := sess.Detach(); err != nil {
				logrus.Warnf("error closing scale: %v", err)
			}

			n := sess.Recording().Len()
			if n == 0 {
				return errors.New("no samples recorded")
			}
			if err := sess.SaveRecording(output); err != nil {
				return errors.Wrap(err, "failed to save recording")
			}
			logrus.Infof("saved %d samples to %s", n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use mocked scale instead of serial port")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output recording file (required)")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Stop after this long (default: until interrupted)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func waitForInterruptOrTimeout(d time.Duration) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
	case <-time.After(d):
	}
}
