package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mprt/gripscale/pkg/calibration"
	"github.com/mprt/gripscale/pkg/recording"
	"github.com/mprt/gripscale/pkg/session"
)

func NewLiveCommand() *cobra.Command {
	var (
		port     string
		mock     bool
		calPath  string
		unitFlag string
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream readings from the scale to stdout",
		Long: `Stream readings from the scale to stdout until interrupted.
With a calibration file the converted force is printed next to the raw count.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(port)
			if err != nil {
				return err
			}
			if unitFlag == "" {
				unitFlag = cfg.Display.Unit
			}
			unit, err := calibration.ParseUnit(unitFlag)
			if err != nil {
				return err
			}

			sess := session.New(cfg)
			if calPath != "" {
				if err := sess.LoadCalibration(calPath); err != nil {
					return errors.Wrap(err, "failed to load calibration")
				}
				logrus.Infof("calibration loaded from %s (%d points)", calPath, sess.Calibration().Len())
			}

			sess.OnUpdate(func(samples []recording.Sample) {
				if len(samples) == 0 {
					return
				}
				last := samples[len(samples)-1]
				cal := sess.Calibration()
				if force, err := cal.ConvertIn(last.Raw, unit); err == nil {
					fmt.Printf("%.3f\t%.0f\t%.2f %s\n", float64(last.Timestamp.UnixNano())/1e9, last.Raw, force, unit)
				} else {
					fmt.Printf("%.3f\t%.0f\n", float64(last.Timestamp.UnixNano())/1e9, last.Raw)
				}
			})

			if err := sess.Attach(openScale(cfg, mock)); err != nil {
				return errors.Wrap(err, "failed to open scale")
			}
			logrus.Info("streaming, press ctrl-c to stop")

			waitForInterrupt()
			return sess.Detach()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use mocked scale instead of serial port")
	cmd.Flags().StringVarP(&calPath, "calibration", "c", "", "Calibration file to convert readings with")
	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "Force unit to display (N, kg, lbs)")

	return cmd
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	signal.Stop(sig)
}
