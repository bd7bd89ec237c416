package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pvcompare/core/model"
)

var tiltCmd = &cobra.Command{
	Use:   "tilt <latitude>",
	Short: "Print the optimal tilt for a latitude",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("latitude: %w", err)
		}
		if err := (model.Location{Latitude: lat}).Validate(); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%g\n", model.OptimalTilt(lat))
		return err
	},
}

func init() {
	rootCmd.AddCommand(tiltCmd)
}
