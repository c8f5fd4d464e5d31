package main

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mprt/gripscale/pkg/calibration"
	"github.com/mprt/gripscale/pkg/recording"
)

func NewPlotCommand() *cobra.Command {
	var (
		recPath  string
		calPath  string
		output   string
		unitFlag string
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a recorded session to a PNG plot",
		Long: `Render a recorded session as a time-series plot. Without a calibration
the raw counts are plotted; with one, the calibrated force is.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig("")
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

			rec, err := recording.LoadFile(recPath)
			if err != nil {
				return errors.Wrap(err, "failed to load recording")
			}

			samples := recording.Downsample(nil, rec.Samples(), cfg.Display.MaxPoints)
			if len(samples) == 0 {
				return errors.New("recording is empty")
			}
			start := samples[0].Timestamp

			p := plot.New()
			p.Title.Text = "gripscale session"
			p.X.Label.Text = "time (s)"

			xys := make(plotter.XYs, len(samples))
			label := "raw reading"

			if calPath != "" {
				cal, err := calibration.LoadFile(calPath)
				if err != nil {
					return errors.Wrap(err, "failed to load calibration")
				}
				slope, intercept, err := cal.Fit()
				if err != nil {
					return errors.Wrap(err, "calibration is unusable")
				}
				for i, s := range samples {
					force, err := calibration.ConvertBetween(slope*s.Raw+intercept, calibration.Newtons, unit)
					if err != nil {
						return err
					}
					xys[i].X = s.Timestamp.Sub(start).Seconds()
					xys[i].Y = force
				}
				label = "force (" + string(unit) + ")"
			} else {
				for i, s := range samples {
					xys[i].X = s.Timestamp.Sub(start).Seconds()
					xys[i].Y = s.Raw
				}
			}
			p.Y.Label.Text = label

			if err := plotutil.AddLines(p, label, xys); err != nil {
				return errors.Wrap(err, "failed to build plot")
			}
			if err := p.Save(10*vg.Inch, 4*vg.Inch, output); err != nil {
				return errors.Wrap(err, "failed to save plot")
			}

			logrus.Infof("plotted %d points to %s", len(xys), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&recPath, "recording", "r", "", "Recording file to plot (required)")
	cmd.Flags().StringVarP(&calPath, "calibration", "c", "", "Calibration file to convert with")
	cmd.Flags().StringVarP(&output, "output", "o", "session.png", "Output image file")
	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "Force unit to plot (N, kg, lbs)")
	_ = cmd.MarkFlagRequired("recording")

	return cmd
}
