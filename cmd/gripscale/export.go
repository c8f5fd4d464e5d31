package main

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mprt/gripscale/pkg/calibration"
	"github.com/mprt/gripscale/pkg/recording"
)

func NewExportCommand() *cobra.Command {
	var (
		recPath  string
		calPath  string
		output   string
		unitFlag string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a recorded session to a force CSV",
		Long: `Apply a calibration to a recorded session and write the force series as
a two-column CSV of timestamp and force in the chosen unit.`,
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
			cal, err := calibration.LoadFile(calPath)
			if err != nil {
				return errors.Wrap(err, "failed to load calibration")
			}

			series, err := rec.ForceSeries(cal)
			if err != nil {
				return errors.Wrap(err, "failed to convert recording")
			}

			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "failed to create output file")
			}
			defer f.Close()

			cw := csv.NewWriter(f)
			if err := cw.Write([]string{"time", "force (" + string(unit) + ")"}); err != nil {
				return errors.Wrap(err, "failed to write force series")
			}
			for _, p := range series {
				force, err := calibration.ConvertBetween(p.Newtons, calibration.Newtons, unit)
				if err != nil {
					return err
				}
				row := []string{
					strconv.FormatFloat(float64(p.Timestamp.UnixNano())/1e9, 'f', 6, 64),
					strconv.FormatFloat(force, 'g', -1, 64),
				}
				if err := cw.Write(row); err != nil {
					return errors.Wrap(err, "failed to write force series")
				}
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return errors.Wrap(err, "failed to write force series")
			}
			if err := f.Close(); err != nil {
				return errors.Wrap(err, "failed to write force series")
			}

			logrus.Infof("exported %d points to %s", len(series), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&recPath, "recording", "r", "", "Recording file to convert (required)")
	cmd.Flags().StringVarP(&calPath, "calibration", "c", "", "Calibration file to convert with (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file (required)")
	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "Force unit to export (N, kg, lbs)")
	_ = cmd.MarkFlagRequired("recording")
	_ = cmd.MarkFlagRequired("calibration")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
