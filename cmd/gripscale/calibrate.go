package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mprt/gripscale/pkg/calibration"
	"github.com/mprt/gripscale/pkg/session"
)

func NewCalibrateCommand() *cobra.Command {
	var (
		port     string
		mock     bool
		output   string
		extend   string
		unitFlag string
	)

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Interactively build a calibration from known weights",
		Long: `Build a calibration by hanging known weights on the scale. For each
weight, let the reading settle and enter the weight's value; the current raw
reading (averaged over the capture window) is paired with it. An unloaded
"0" point is a perfectly good first point. At least two points with distinct
raw readings are needed for a usable calibration.`,
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
			if extend != "" {
				if err := sess.LoadCalibration(extend); err != nil {
					return errors.Wrap(err, "failed to load calibration to extend")
				}
				logrus.Infof("extending calibration from %s (%d points)", extend, sess.Calibration().Len())
			}

			if err := sess.Attach(openScale(cfg, mock)); err != nil {
				return errors.Wrap(err, "failed to open scale")
			}
			defer sess.Detach() //nolint:errcheck

			// Give the stream a moment so the capture window has readings.
			time.Sleep(time.Second)

			stdin := bufio.NewScanner(os.Stdin)
			for {
				fmt.Printf("Applied weight in %s (empty to finish): ", unit)
				if !stdin.Scan() {
					break
				}
				text := strings.TrimSpace(stdin.Text())
				if text == "" {
					break
				}
				value, err := strconv.ParseFloat(text, 64)
				if err != nil {
					fmt.Printf("Not a number: %q\n", text)
					continue
				}

				if err := sess.CapturePoint(value, unit); err != nil {
					logrus.Errorf("failed to capture point: %v", err)
					continue
				}

				cal := sess.Calibration()
				pts := cal.Points()
				last := pts[len(pts)-1]
				fmt.Printf("Captured point (raw %.1f, %.3f N), %d total\n", last.Raw, last.Newtons, len(pts))

				if slope, intercept, err := cal.Fit(); err == nil {
					fmt.Printf("Current fit: force = %.6g * raw + %.6g\n", slope, intercept)
				}
			}

			cal := sess.Calibration()
			if cal.Len() == 0 {
				return errors.New("no calibration points captured")
			}
			if err := cal.SaveFile(output); err != nil {
				return errors.Wrap(err, "failed to save calibration")
			}
			logrus.Infof("saved %d calibration points to %s", cal.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use mocked scale instead of serial port")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output calibration file (required)")
	cmd.Flags().StringVar(&extend, "extend", "", "Existing calibration file to add points to")
	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "Unit the weights are entered in (N, kg, lbs)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
