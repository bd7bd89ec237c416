package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvcompare/core/model"
)

var (
	peakAzimuth float64
	peakTilt    string
)

var peakCmd = &cobra.Command{
	Use:   "peak <technology>",
	Short: "Print the peak power of a technology under every normalization mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeak,
}

func init() {
	peakCmd.Flags().Float64Var(&peakAzimuth, "azimuth", 180, "surface azimuth in degrees, 180 = south")
	peakCmd.Flags().StringVar(&peakTilt, "tilt", model.OptimalTiltLabel, "surface tilt in degrees or \"optimal\"")
	rootCmd.AddCommand(peakCmd)
}

func runPeak(cmd *cobra.Command, args []string) error {
	tilt, err := model.ParseTiltSpec(peakTilt)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	o := model.Orientation{Azimuth: peakAzimuth, Tilt: tilt.Resolve(svc.Site().Location.Latitude)}
	lines, err := svc.Peaks(cmd.Context(), args[0], o)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s at %s\n", args[0], o)
	for _, l := range lines {
		if l.Err != nil {
			fmt.Fprintf(tw, "%s\tunavailable\t%v\n", l.Mode, l.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.2f W\n", l.Mode, l.PeakW)
	}
	return tw.Flush()
}
