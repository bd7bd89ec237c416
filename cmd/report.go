package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/kilianp07/pvcompare/core/scenario"
)

func printReport(out io.Writer, rep scenario.Report) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s\n", rep.RunID)
	fmt.Fprintln(tw, "LABEL\tSURFACE\tFILE\tCACHED\tPEAK_W\tAREA_M2\tCEILING_KWP\tANNUAL_YIELD")
	for _, r := range rep.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%.2f\t%.1f\t%.2f\t%.3f\n",
			r.Label, r.SurfaceType, r.Key.FileName(), r.CacheHit, r.PeakW, r.AreaM2, r.Ceiling.KWp(), r.AnnualYield)
	}
	labels := make([]string, 0, len(rep.Errors))
	for l := range rep.Errors {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(tw, "%s\tFAILED\t%v\n", l, rep.Errors[l])
	}
	return tw.Flush()
}
